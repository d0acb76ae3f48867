package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/breach"
)

// TriggerVolume requests a breach when an intruder enters (or leaves) an area.
// It needs no power and disables itself once the breach has fired.
type TriggerVolume struct {
	breachLink

	onExit  bool
	enabled bool
}

// NewTriggerVolume creates an enabled trigger volume. With onExit set, the
// breach is requested on leaving the area rather than on entering it.
func NewTriggerVolume(id string, latch *breach.Latch, onExit bool) *TriggerVolume {
	return &TriggerVolume{
		breachLink: newBreachLink(id, latch),
		onExit:     onExit,
		enabled:    true,
	}
}

// ID returns the volume identifier.
func (v *TriggerVolume) ID() string { return v.id }

// Kind returns KindTriggerVolume.
func (v *TriggerVolume) Kind() Kind { return KindTriggerVolume }

// Enabled reports whether the volume still reacts to intruders.
func (v *TriggerVolume) Enabled() bool { return v.enabled }

// Start joins the breach protocol.
func (v *TriggerVolume) Start(context.Context) {
	v.register(true, func(context.Context) {
		v.enabled = false
	})
}

// Enter reports an intruder entering the volume.
func (v *TriggerVolume) Enter(ctx context.Context) bool {
	return v.fire(ctx, false)
}

// Exit reports an intruder leaving the volume.
func (v *TriggerVolume) Exit(ctx context.Context) bool {
	return v.fire(ctx, true)
}

func (v *TriggerVolume) fire(ctx context.Context, exiting bool) bool {
	if !v.enabled || exiting != v.onExit {
		return false
	}

	v.request(ctx)

	return true
}

// State reports the volume state.
func (v *TriggerVolume) State() map[string]any {
	return map[string]any{
		"enabled":         v.enabled,
		"trigger_on_exit": v.onExit,
		"forwarding":      v.Forwarding(),
	}
}
