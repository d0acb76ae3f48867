package power

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSupply_HasPowerIsDerived verifies HasPower follows provided vs required power.
func TestSupply_HasPowerIsDerived(t *testing.T) {
	t.Parallel()

	s := NewSupply(30)
	require.False(t, s.HasPower())

	s.PowerConnect(30)
	require.True(t, s.HasPower())
	require.InDelta(t, 30, s.ProvidedPower(), 0)

	s.PowerDisconnect(30)
	require.False(t, s.HasPower())
	require.True(t, HasPower(&Supply{}))
}

// TestNewSupply_ClampsNegativeRequirement ensures required power is never negative.
func TestNewSupply_ClampsNegativeRequirement(t *testing.T) {
	t.Parallel()

	s := NewSupply(-5)
	require.Zero(t, s.RequiredPower())
}
