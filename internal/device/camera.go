package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
)

// Camera is a powered security camera. Detection itself (line of sight) is
// done elsewhere and reported through Detect.
type Camera struct {
	power.Supply
	breachLink

	// detections counts intruder reports while powered.
	detections int
}

// NewCamera creates a camera.
func NewCamera(id string, latch *breach.Latch, requiredPower float64) *Camera {
	return &Camera{
		Supply:     power.NewSupply(requiredPower),
		breachLink: newBreachLink(id, latch),
	}
}

// ID returns the camera identifier.
func (c *Camera) ID() string { return c.id }

// Kind returns KindCamera.
func (c *Camera) Kind() Kind { return KindCamera }

// Start joins the breach protocol.
func (c *Camera) Start(context.Context) {
	c.register(true, nil)
}

// Detect reports an intruder in view. Only a powered camera raises the alarm.
func (c *Camera) Detect(ctx context.Context) bool {
	if !c.HasPower() {
		return false
	}

	c.detections++
	c.request(ctx)

	return true
}

// State reports the camera state.
func (c *Camera) State() map[string]any {
	state := poweredState(c)
	state["detections"] = c.detections
	state["forwarding"] = c.Forwarding()

	return state
}
