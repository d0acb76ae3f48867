package power

import (
	"context"

	"github.com/oshokin/facility-breach/internal/logger"
)

// Grid groups subsystems that are switched together.
type Grid struct {
	// id is unique within the network.
	id string
	// active mirrors the last grid-level toggle.
	active bool
	// subsystems are kept in declaration order.
	subsystems []*Subsystem
	// observer receives grid toggle events.
	observer Observer
}

// NewGrid creates an inactive grid owning the given subsystems.
func NewGrid(id string, subsystems []*Subsystem, observer Observer) *Grid {
	return &Grid{
		id:         id,
		subsystems: subsystems,
		observer:   observerOrNop(observer),
	}
}

// ID returns the grid identifier.
func (g *Grid) ID() string { return g.id }

// Active reports the grid-level state.
func (g *Grid) Active() bool { return g.active }

// Subsystems returns the subsystems in declaration order.
func (g *Grid) Subsystems() []*Subsystem {
	out := make([]*Subsystem, len(g.subsystems))
	copy(out, g.subsystems)

	return out
}

// Toggle switches the grid and every subsystem whose state differs from target.
// It returns false, touching nothing, when the grid is already in the target state.
func (g *Grid) Toggle(ctx context.Context, target bool) bool {
	if g.active == target {
		return false
	}

	for _, sub := range g.subsystems {
		if sub.Active() != target {
			sub.Toggle(ctx, target)
		}
	}

	g.active = target

	logger.InfoKV(ctx, "Grid state changed", "grid", g.id, "active", g.active)
	g.observer.GridToggled(g.id, g.active)

	return true
}

// ToggleSubsystem toggles one subsystem by id. It fails only when the id is unknown.
func (g *Grid) ToggleSubsystem(ctx context.Context, id string, target bool) bool {
	sub, ok := g.Subsystem(id)
	if !ok {
		return false
	}

	sub.Toggle(ctx, target)

	return true
}

// Subsystem looks up a subsystem by id.
func (g *Grid) Subsystem(id string) (*Subsystem, bool) {
	for _, sub := range g.subsystems {
		if sub.ID() == id {
			return sub, true
		}
	}

	return nil, false
}
