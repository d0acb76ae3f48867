package power

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGrid(obs Observer) (*Grid, *Subsystem, *Subsystem) {
	security := NewSubsystem("A", "security", 50, obs)
	lights := NewSubsystem("A", "lights", 10, obs)

	return NewGrid("A", []*Subsystem{security, lights}, obs), security, lights
}

// TestGrid_ToggleCascadesAndIsIdempotent checks the grid-level toggle contract.
func TestGrid_ToggleCascadesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	obs := new(recordingObserver)
	grid, security, lights := newTestGrid(obs)

	require.False(t, grid.Toggle(ctx, false))
	require.Empty(t, obs.events)

	require.True(t, grid.Toggle(ctx, true))
	require.True(t, grid.Active())
	require.True(t, security.Active())
	require.True(t, lights.Active())

	require.False(t, grid.Toggle(ctx, true))
	require.Equal(t, []string{
		"subsystem A/security true 0/50",
		"subsystem A/lights true 0/10",
		"grid A true",
	}, obs.events)
}

// TestGrid_ToggleSkipsSubsystemsAlreadyInState ensures subsystems already at target are untouched.
func TestGrid_ToggleSkipsSubsystemsAlreadyInState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	obs := new(recordingObserver)
	grid, security, lights := newTestGrid(obs)

	// A direct subsystem toggle is legal while the grid is inactive.
	require.True(t, grid.ToggleSubsystem(ctx, "lights", true))
	require.True(t, lights.Active())
	require.False(t, grid.Active())

	obs.events = nil

	require.True(t, grid.Toggle(ctx, true))
	require.True(t, security.Active())
	require.Equal(t, []string{"subsystem A/security true 0/50", "grid A true"}, obs.events)
}

// TestGrid_SubsystemLookup covers lookup and unknown ids.
func TestGrid_SubsystemLookup(t *testing.T) {
	t.Parallel()

	grid, security, _ := newTestGrid(nil)

	got, ok := grid.Subsystem("security")
	require.True(t, ok)
	require.Same(t, security, got)

	_, ok = grid.Subsystem("missing")
	require.False(t, ok)
	require.False(t, grid.ToggleSubsystem(context.Background(), "missing", true))
	require.Len(t, grid.Subsystems(), 2)
}
