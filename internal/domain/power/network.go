package power

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/facility-breach/internal/logger"
)

// ErrDuplicateGrid is returned when two templates share an identifier.
var ErrDuplicateGrid = errors.New("duplicate grid id")

// Network is the registry of every grid in the facility. It is constructed
// once at start-up and passed explicitly to whoever needs it.
type Network struct {
	// grids indexes runtime grids by id.
	grids map[string]*Grid
	// order keeps declaration order for start-up activation and listings.
	order []string
}

// NetworkOption configures NewNetwork.
type NetworkOption func(*networkOptions)

type networkOptions struct {
	observer Observer
}

// WithObserver forwards power events of every grid to o.
func WithObserver(o Observer) NetworkOption {
	return func(opts *networkOptions) {
		opts.observer = o
	}
}

// NewNetwork instantiates every template into an independent runtime grid.
// The grids stay inactive until Start is called.
func NewNetwork(
	ctx context.Context,
	templates []GridTemplate,
	resolve Resolver,
	opts ...NetworkOption,
) (*Network, error) {
	var options networkOptions
	for _, opt := range opts {
		opt(&options)
	}

	n := &Network{
		grids: make(map[string]*Grid, len(templates)),
		order: make([]string, 0, len(templates)),
	}

	for i := range templates {
		tmpl := &templates[i]
		if _, exists := n.grids[tmpl.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGrid, tmpl.ID)
		}

		grid, err := tmpl.Instantiate(ctx, resolve, options.observer)
		if err != nil {
			return nil, err
		}

		n.grids[tmpl.ID] = grid
		n.order = append(n.order, tmpl.ID)
	}

	return n, nil
}

// Start activates every grid once, in declaration order.
func (n *Network) Start(ctx context.Context) {
	for _, id := range n.order {
		n.ActivateGrid(ctx, id)
	}
}

// ActivateGrid switches the grid on. It returns false when the grid is
// unknown or already active.
func (n *Network) ActivateGrid(ctx context.Context, id string) bool {
	return n.toggleGrid(ctx, id, true)
}

// DeactivateGrid switches the grid off. It returns false when the grid is
// unknown or already inactive.
func (n *Network) DeactivateGrid(ctx context.Context, id string) bool {
	return n.toggleGrid(ctx, id, false)
}

// Grid looks up a grid by id.
func (n *Network) Grid(id string) (*Grid, bool) {
	grid, ok := n.grids[id]

	return grid, ok
}

// Grids returns the grids in declaration order.
func (n *Network) Grids() []*Grid {
	out := make([]*Grid, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.grids[id])
	}

	return out
}

// ToggleTarget flips a whole grid or a single subsystem to the opposite of
// its current state, the way a wall switch does. found is false when the
// target does not resolve.
func (n *Network) ToggleTarget(ctx context.Context, t Target) (changed, found bool) {
	grid, ok := n.Grid(t.Grid)
	if !ok {
		logger.WarnKV(ctx, "Power grid not found", "target", t.String())

		return false, false
	}

	if !t.HasSubsystem() {
		return grid.Toggle(ctx, !grid.Active()), true
	}

	sub, ok := grid.Subsystem(t.Subsystem)
	if !ok {
		logger.WarnKV(ctx, "Power subsystem not found", "target", t.String())

		return false, false
	}

	return sub.Toggle(ctx, !sub.Active()), true
}

func (n *Network) toggleGrid(ctx context.Context, id string, target bool) bool {
	grid, ok := n.grids[id]
	if !ok {
		logger.WarnKV(ctx, "Power grid not found", "grid", id)

		return false
	}

	return grid.Toggle(ctx, target)
}
