package power

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSubsystem_ConnectWhileActive grants power while capacity allows.
func TestSubsystem_ConnectWhileActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "security", 50, nil)
	require.True(t, sub.Toggle(ctx, true))

	a := newEntity("a", 30)
	require.True(t, sub.Connect(ctx, a))
	require.True(t, a.HasPower())
	require.InDelta(t, 30, sub.Usage(), 0)

	// Duplicate connections are rejected.
	require.False(t, sub.Connect(ctx, a))
	require.Len(t, sub.Entities(), 1)
	require.InDelta(t, 30, a.ProvidedPower(), 0)
}

// TestSubsystem_OverloadShutsDownEverything covers the capacity=50, 30+30 scenario.
func TestSubsystem_OverloadShutsDownEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	obs := new(recordingObserver)
	sub := NewSubsystem("A", "security", 50, obs)
	sub.Toggle(ctx, true)

	a, b := newEntity("a", 30), newEntity("b", 30)
	require.True(t, sub.Connect(ctx, a))

	// The overloading connect still reports success.
	require.True(t, sub.Connect(ctx, b))

	require.False(t, sub.Active())
	require.False(t, a.HasPower())
	require.False(t, b.HasPower())
	require.Zero(t, sub.Usage())
	require.Equal(t, []Entity{a, b}, sub.Entities())
	require.Contains(t, obs.events, "overload A/security")
}

// TestSubsystem_ConnectWhileInactive registers without powering.
func TestSubsystem_ConnectWhileInactive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "security", 10, nil)

	a := newEntity("a", 5)
	require.True(t, sub.Connect(ctx, a))
	require.False(t, a.HasPower())
	require.Zero(t, sub.Usage())

	require.True(t, sub.Toggle(ctx, true))
	require.True(t, a.HasPower())
	require.InDelta(t, 5, sub.Usage(), 0)
}

// TestSubsystem_ActivationStopsAtCapacity verifies partial activation in roster order.
func TestSubsystem_ActivationStopsAtCapacity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "lab", 50, nil)

	a, b, c := newEntity("a", 30), newEntity("b", 30), newEntity("c", 10)
	for _, e := range []*namedEntity{a, b, c} {
		require.True(t, sub.Connect(ctx, e))
	}

	require.True(t, sub.Toggle(ctx, true))

	require.True(t, a.HasPower())
	// b does not fit, and c after it is skipped as well even though it would fit.
	require.False(t, b.HasPower())
	require.False(t, c.HasPower())
	require.InDelta(t, 30, sub.Usage(), 0)
	require.LessOrEqual(t, sub.Usage(), sub.Capacity())
}

// TestSubsystem_ToggleIsIdempotent verifies repeated toggles return false and change nothing.
func TestSubsystem_ToggleIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	obs := new(recordingObserver)
	sub := NewSubsystem("A", "lab", 50, obs)
	a := newEntity("a", 20)
	sub.Connect(ctx, a)

	require.False(t, sub.Toggle(ctx, false))
	require.True(t, sub.Toggle(ctx, true))
	require.False(t, sub.Toggle(ctx, true))

	require.InDelta(t, 20, a.ProvidedPower(), 0)
	require.Len(t, obs.events, 1)

	require.True(t, sub.Toggle(ctx, false))
	require.Zero(t, a.ProvidedPower())
	require.Zero(t, sub.Usage())
}

// TestSubsystem_Disconnect removes from the roster and revokes power.
func TestSubsystem_Disconnect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "lab", 50, nil)
	sub.Toggle(ctx, true)

	a, b := newEntity("a", 20), newEntity("b", 20)
	sub.Connect(ctx, a)
	sub.Connect(ctx, b)

	require.True(t, sub.Disconnect(ctx, a))
	require.False(t, a.HasPower())
	require.Zero(t, a.ProvidedPower())
	require.InDelta(t, 20, sub.Usage(), 0)
	require.Equal(t, []Entity{b}, sub.Entities())

	require.False(t, sub.Disconnect(ctx, a))
}

// TestSubsystem_DisconnectUnpoweredEntity does not push provided power negative.
func TestSubsystem_DisconnectUnpoweredEntity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "lab", 50, nil)

	a := newEntity("a", 20)
	sub.Connect(ctx, a)

	require.True(t, sub.Disconnect(ctx, a))
	require.Zero(t, a.ProvidedPower())
}

// TestSubsystem_ToggleEntityPower covers single-entity grants, revokes and refusals.
func TestSubsystem_ToggleEntityPower(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "lab", 50, nil)

	a, b := newEntity("a", 30), newEntity("b", 30)
	stranger := newEntity("x", 1)
	sub.Connect(ctx, a)

	// Inactive subsystem.
	require.False(t, sub.ToggleEntityPower(ctx, a, true))

	sub.Toggle(ctx, true)
	require.True(t, a.HasPower())

	// Not connected.
	require.False(t, sub.ToggleEntityPower(ctx, stranger, true))

	// Already in target state.
	require.False(t, sub.ToggleEntityPower(ctx, a, true))

	require.True(t, sub.ToggleEntityPower(ctx, a, false))
	require.False(t, a.HasPower())
	require.Zero(t, sub.Usage())
	require.True(t, sub.Active())

	require.True(t, sub.ToggleEntityPower(ctx, a, true))
	require.InDelta(t, 30, sub.Usage(), 0)

	// b joins while active but would overload: the whole subsystem goes dark.
	sub.Connect(ctx, b)
	require.False(t, sub.Active())

	// Re-activate: only a fits; granting b by hand is refused instead of overloading.
	sub.Toggle(ctx, true)
	require.False(t, sub.CanGrant(b))
	require.False(t, sub.ToggleEntityPower(ctx, b, true))
	require.True(t, sub.Active())
	require.InDelta(t, 30, sub.Usage(), 0)
}

// TestSubsystem_CapacityInvariant drives a sequence of operations and checks usage after each one.
func TestSubsystem_CapacityInvariant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := NewSubsystem("A", "lab", 40, nil)
	entities := []*namedEntity{newEntity("a", 10), newEntity("b", 25), newEntity("c", 5), newEntity("d", 15)}

	check := func() {
		t.Helper()

		if !sub.Active() {
			return
		}

		var sum float64
		for _, e := range sub.Entities() {
			if e.HasPower() {
				sum += e.RequiredPower()
			}
		}

		require.InDelta(t, sum, sub.Usage(), 1e-9)
		require.LessOrEqual(t, sub.Usage(), sub.Capacity())
	}

	sub.Toggle(ctx, true)
	check()

	for _, e := range entities {
		sub.Connect(ctx, e)
		check()
	}

	sub.Toggle(ctx, true)
	check()
	sub.Disconnect(ctx, entities[0])
	check()
	sub.ToggleEntityPower(ctx, entities[2], true)
	check()
	sub.Toggle(ctx, false)
	sub.Toggle(ctx, true)
	check()
}

// TestSubsystem_UsageEventsOnEntityChanges verifies single grants and revokes
// report the new usage while connects to an inactive subsystem stay silent.
func TestSubsystem_UsageEventsOnEntityChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	obs := new(recordingObserver)
	sub := NewSubsystem("A", "security", 50, obs)

	idle := newEntity("idle", 10)
	require.True(t, sub.Connect(ctx, idle))
	require.Empty(t, obs.events)

	require.True(t, sub.Toggle(ctx, true))

	a := newEntity("a", 30)
	require.True(t, sub.Connect(ctx, a))
	require.True(t, sub.ToggleEntityPower(ctx, a, false))
	require.True(t, sub.ToggleEntityPower(ctx, a, true))

	// No-op toggles report nothing.
	require.False(t, sub.ToggleEntityPower(ctx, a, true))

	require.True(t, sub.Disconnect(ctx, a))
	require.True(t, sub.Disconnect(ctx, idle))

	require.Equal(t, []string{
		"subsystem A/security true 10/50",
		"usage A/security 40/50",
		"usage A/security 10/50",
		"usage A/security 40/50",
		"usage A/security 10/50",
		"usage A/security 0/50",
	}, obs.events)
}
