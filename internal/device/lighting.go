package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
)

// LightGroup is a bank of lights sharing one power connection.
type LightGroup struct {
	power.Supply

	id string
	// active is the requested on/off state; lights shine only when also powered.
	active bool
}

// NewLightGroup creates an inactive light group.
func NewLightGroup(id string, requiredPower float64) *LightGroup {
	return &LightGroup{Supply: power.NewSupply(requiredPower), id: id}
}

// ID returns the group identifier.
func (g *LightGroup) ID() string { return g.id }

// Kind returns KindLightGroup.
func (g *LightGroup) Kind() Kind { return KindLightGroup }

// Start is a no-op; light groups are driven by a LightManager.
func (g *LightGroup) Start(context.Context) {}

// Activate switches the group on or off.
func (g *LightGroup) Activate(active bool) { g.active = active }

// Active reports the requested state.
func (g *LightGroup) Active() bool { return g.active }

// Lit reports whether the lights are actually shining.
func (g *LightGroup) Lit() bool { return g.active && g.HasPower() }

// State reports the light group state.
func (g *LightGroup) State() map[string]any {
	state := poweredState(g)
	state["active"] = g.active
	state["lit"] = g.Lit()

	return state
}

// LightManager swaps standard lighting for alarm lighting on breach.
type LightManager struct {
	breachLink

	standard []*LightGroup
	alarm    []*LightGroup
}

// NewLightManager creates a manager for the given groups.
func NewLightManager(latch *breach.Latch, standard, alarm []*LightGroup) *LightManager {
	return &LightManager{
		breachLink: newBreachLink("light-manager", latch),
		standard:   standard,
		alarm:      alarm,
	}
}

// Start turns standard lighting on and alarm lighting off, then waits for the breach.
// Nothing is switched unless both sets are configured.
func (m *LightManager) Start(ctx context.Context) {
	m.switchTo(ctx, false)

	m.register(false, func(ctx context.Context) {
		m.switchTo(ctx, true)
	})
}

func (m *LightManager) switchTo(ctx context.Context, alarm bool) {
	if len(m.standard) == 0 || len(m.alarm) == 0 {
		return
	}

	for _, g := range m.standard {
		g.Activate(!alarm)
	}

	for _, g := range m.alarm {
		g.Activate(alarm)
	}

	logger.DebugKV(ctx, "Lighting switched", "alarm", alarm)
}
