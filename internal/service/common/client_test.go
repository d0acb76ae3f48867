//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestDial_AppliesOptions checks that options override the defaults.
func TestDial_AppliesOptions(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "127.0.0.1:1",
		WithCallTimeout(time.Second), WithCallTimeout(0), WithOperator("ops@host"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	require.Equal(t, time.Second, c.callTimeout)
	require.Equal(t, "ops@host", c.operator)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_NotConnected asserts that an unconnected client fails fast.
func TestClient_NotConnected(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.Toggle(context.Background(), "A")
	require.ErrorIs(t, err, errNotConnected)

	_, err = c.GetStatus(context.Background())
	require.ErrorIs(t, err, errNotConnected)

	require.NoError(t, c.Close())
}
