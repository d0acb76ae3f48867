package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
)

// Terminal is a powered workstation. Its applications are outside the core;
// the core only decides whether it can be used.
type Terminal struct {
	power.Supply

	id       string
	sessions int
}

// NewTerminal creates a terminal.
func NewTerminal(id string, requiredPower float64) *Terminal {
	return &Terminal{Supply: power.NewSupply(requiredPower), id: id}
}

// ID returns the terminal identifier.
func (t *Terminal) ID() string { return t.id }

// Kind returns KindTerminal.
func (t *Terminal) Kind() Kind { return KindTerminal }

// Start is a no-op for terminals.
func (t *Terminal) Start(context.Context) {}

// Use opens a session when the terminal is powered.
func (t *Terminal) Use(ctx context.Context) bool {
	if !t.HasPower() {
		logger.DebugKV(ctx, "Terminal has no power", "device", t.id)

		return false
	}

	t.sessions++

	return true
}

// State reports the terminal state.
func (t *Terminal) State() map[string]any {
	state := poweredState(t)
	state["sessions"] = t.sessions

	return state
}
