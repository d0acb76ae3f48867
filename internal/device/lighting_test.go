package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/facility-breach/internal/domain/breach"
)

// TestLightManager_SwapsOnBreach checks start-up lighting and the breach swap.
func TestLightManager_SwapsOnBreach(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	latch := breach.NewLatch()
	standard := powered(NewLightGroup("main", 5))
	alarm := powered(NewLightGroup("red", 2))

	manager := NewLightManager(latch, []*LightGroup{standard}, []*LightGroup{alarm})
	manager.Start(ctx)

	require.True(t, standard.Lit())
	require.False(t, alarm.Lit())

	latch.Trigger(ctx)

	require.False(t, standard.Lit())
	require.True(t, alarm.Lit())

	// Active but unpowered lights stay dark.
	alarm.PowerDisconnect(2)
	require.True(t, alarm.Active())
	require.False(t, alarm.Lit())
}

// TestLightManager_RequiresBothSets leaves groups alone when one set is missing.
func TestLightManager_RequiresBothSets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	latch := breach.NewLatch()
	standard := powered(NewLightGroup("main", 5))

	manager := NewLightManager(latch, []*LightGroup{standard}, nil)
	manager.Start(ctx)
	latch.Trigger(ctx)

	require.False(t, standard.Active())
}

// TestTerminal_Use requires power.
func TestTerminal_Use(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	terminal := NewTerminal("term", 3)

	require.False(t, terminal.Use(ctx))

	terminal.PowerConnect(3)
	require.True(t, terminal.Use(ctx))
	require.Equal(t, 1, terminal.State()["sessions"])
}
