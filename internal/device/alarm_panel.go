package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
)

// AlarmPanel raises the breach when pressed.
type AlarmPanel struct {
	power.Supply
	breachLink
}

// NewAlarmPanel creates an alarm panel.
func NewAlarmPanel(id string, latch *breach.Latch, requiredPower float64) *AlarmPanel {
	return &AlarmPanel{
		Supply:     power.NewSupply(requiredPower),
		breachLink: newBreachLink(id, latch),
	}
}

// ID returns the panel identifier.
func (p *AlarmPanel) ID() string { return p.id }

// Kind returns KindAlarmPanel.
func (p *AlarmPanel) Kind() Kind { return KindAlarmPanel }

// Start joins the breach protocol.
func (p *AlarmPanel) Start(context.Context) {
	p.register(true, nil)
}

// Interact presses the panel. An unpowered panel is dead.
func (p *AlarmPanel) Interact(ctx context.Context) bool {
	if !p.HasPower() {
		return false
	}

	p.request(ctx)

	return true
}

// State reports the panel state.
func (p *AlarmPanel) State() map[string]any {
	state := poweredState(p)
	state["forwarding"] = p.Forwarding()

	return state
}
