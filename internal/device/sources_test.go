package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/facility-breach/internal/domain/breach"
)

// TestCamera_DetectRequiresPower ensures an unpowered camera never raises the alarm.
func TestCamera_DetectRequiresPower(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	latch := breach.NewLatch()
	camera := NewCamera("cam-1", latch, 15)
	camera.Start(ctx)

	require.False(t, camera.Detect(ctx))
	require.False(t, latch.Triggered())

	camera.PowerConnect(15)
	require.True(t, camera.Detect(ctx))
	require.True(t, latch.Triggered())
	require.False(t, camera.Forwarding())
}

// TestSources_BroadcastOnceAcrossDevices wires several sources and listeners to one latch.
func TestSources_BroadcastOnceAcrossDevices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	latch := breach.NewLatch()

	panel := powered(NewAlarmPanel("panel", latch, 1))
	camera := powered(NewCamera("cam", latch, 1))
	volume := NewTriggerVolume("vent", latch, false)
	turret := NewTurret("turret", latch, 40)

	for _, d := range []Device{panel, camera, volume, turret} {
		d.Start(ctx)
		// Starting twice must not double-register.
		d.Start(ctx)
	}

	require.Equal(t, 4, latch.Listeners())

	require.True(t, panel.Interact(ctx))
	require.True(t, camera.Detect(ctx))
	require.False(t, volume.Enter(ctx))

	require.True(t, latch.Triggered())
	require.True(t, turret.Armed())
	require.False(t, turret.Firing())
	require.False(t, volume.Enabled())
	require.Zero(t, latch.Listeners())

	turret.PowerConnect(40)
	require.True(t, turret.Firing())
}

// TestTriggerVolume_ExitMode fires only on the configured edge.
func TestTriggerVolume_ExitMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	latch := breach.NewLatch()
	volume := NewTriggerVolume("airlock", latch, true)
	volume.Start(ctx)

	require.False(t, volume.Enter(ctx))
	require.False(t, latch.Triggered())

	require.True(t, volume.Exit(ctx))
	require.True(t, latch.Triggered())
	require.Equal(t, false, volume.State()["enabled"])
}

// TestAlarmPanel_Unpowered ensures a dead panel does nothing.
func TestAlarmPanel_Unpowered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	latch := breach.NewLatch()
	panel := NewAlarmPanel("panel", latch, 2)
	panel.Start(ctx)

	require.False(t, panel.Interact(ctx))
	require.False(t, latch.Triggered())
	require.True(t, panel.Forwarding())
}
