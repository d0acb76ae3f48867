package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
)

// Turret is armed by the breach and fires only while powered.
type Turret struct {
	power.Supply
	breachLink

	armed bool
}

// NewTurret creates a disarmed turret.
func NewTurret(id string, latch *breach.Latch, requiredPower float64) *Turret {
	return &Turret{
		Supply:     power.NewSupply(requiredPower),
		breachLink: newBreachLink(id, latch),
	}
}

// ID returns the turret identifier.
func (t *Turret) ID() string { return t.id }

// Kind returns KindTurret.
func (t *Turret) Kind() Kind { return KindTurret }

// Start subscribes the arming reaction.
func (t *Turret) Start(context.Context) {
	t.register(false, func(context.Context) {
		t.armed = true
	})
}

// Armed reports whether the breach has armed the turret.
func (t *Turret) Armed() bool { return t.armed }

// Firing reports whether the turret is armed and powered.
func (t *Turret) Firing() bool { return t.armed && t.HasPower() }

// State reports the turret state.
func (t *Turret) State() map[string]any {
	state := poweredState(t)
	state["armed"] = t.armed
	state["firing"] = t.Firing()

	return state
}
