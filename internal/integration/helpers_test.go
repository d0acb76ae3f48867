package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/device"
	"github.com/oshokin/facility-breach/internal/service/common"
	"github.com/oshokin/facility-breach/internal/service/server"
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// writeSettings saves a small facility to a temporary settings file.
func writeSettings(t *testing.T, addr, metricsAddr string) string {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "facility-settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress:  addr,
		MetricsAddress: metricsAddr,
		Timeout:        3 * time.Second,
		LogLevel:       "warn",
		TickInterval:   10 * time.Millisecond,
		TimeToEscape:   time.Minute,
		Grids: []config.Grid{
			{
				ID: "A",
				Subsystems: []config.Subsystem{
					{ID: "security", Capacity: 50, Connections: []string{"door-lab", "cam-hall"}},
					{ID: "lights", Capacity: 10, Connections: []string{"lights-main", "lights-alarm"}},
				},
			},
			{
				ID: "B",
				Subsystems: []config.Subsystem{
					{ID: "defense", Capacity: 40, Connections: []string{"turret-vault"}},
				},
			},
		},
		Devices: []config.Device{
			{ID: "door-lab", Kind: device.KindDoor, RequiredPower: 30, LockedOnStart: true},
			{ID: "cam-hall", Kind: device.KindCamera, RequiredPower: 10},
			{ID: "turret-vault", Kind: device.KindTurret, RequiredPower: 40},
			{ID: "lights-main", Kind: device.KindLightGroup, RequiredPower: 5},
			{ID: "lights-alarm", Kind: device.KindLightGroup, RequiredPower: 5},
		},
		Lighting: config.Lighting{
			Standard: []string{"lights-main"},
			Alarm:    []string{"lights-alarm"},
		},
	}))

	return cfgPath
}

// startServer runs the real facility server and waits until it answers.
// The returned function stops it and waits for Run to return.
func startServer(t *testing.T, cfgPath, addr string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	client, err := common.Dial(ctx, addr, common.WithCallTimeout(time.Second))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	require.Eventually(t, func() bool {
		_, err := client.GetStatus(ctx)

		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "server did not start")

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

// dial connects a test client to addr.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr,
		common.WithCallTimeout(3*time.Second),
		common.WithOperator("tester@integration"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}
