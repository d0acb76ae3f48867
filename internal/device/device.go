package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
)

// Kind names a device type as used in settings files.
type Kind string

// Known device kinds.
const (
	KindDoor          Kind = "door"
	KindCamera        Kind = "camera"
	KindTurret        Kind = "turret"
	KindAlarmPanel    Kind = "alarm_panel"
	KindTriggerVolume Kind = "trigger_volume"
	KindLightGroup    Kind = "light_group"
	KindTerminal      Kind = "terminal"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindDoor, KindCamera, KindTurret, KindAlarmPanel, KindTriggerVolume, KindLightGroup, KindTerminal}
}

// Device is the common surface of every facility device.
type Device interface {
	ID() string
	Kind() Kind
	// Start registers breach subscriptions and applies start-up state.
	Start(ctx context.Context)
	// State reports the externally visible device state.
	State() map[string]any
}

// ErrDuplicateDevice is returned when two devices share an identifier.
var ErrDuplicateDevice = errors.New("duplicate device id")

// breachLink wires a device into the breach protocol.
type breachLink struct {
	// id names the owning device in logs.
	id string
	// latch is the facility-wide breach latch.
	latch *breach.Latch
	// signal is the device's own "breach requested" event.
	signal breach.Signal
	// forward is the signal subscription that triggers the latch.
	forward uuid.UUID
	// reaction is the latch listener handle.
	reaction uuid.UUID
	// started guards against double registration.
	started bool
}

func newBreachLink(id string, latch *breach.Latch) breachLink {
	return breachLink{id: id, latch: latch}
}

// Signal exposes the device's breach request signal.
func (l *breachLink) Signal() *breach.Signal {
	return &l.signal
}

// Forwarding reports whether the device still forwards breach requests to the latch.
func (l *breachLink) Forwarding() bool {
	return l.started && l.signal.Subscribers() > 0
}

// register forwards the signal into the latch and subscribes react. Either
// side may be skipped: devices that cannot raise a breach pass forward=false.
func (l *breachLink) register(forward bool, react func(ctx context.Context)) {
	if l.started || l.latch == nil {
		return
	}

	l.started = true

	if forward {
		l.forward = breach.Forward(&l.signal, l.latch)
	}

	l.reaction = l.latch.Subscribe(func(ctx context.Context) {
		ctx = logger.WithKV(ctx, "device", l.id)
		logger.Info(ctx, "Responding to breach")

		if react != nil {
			react(ctx)
		}

		if forward {
			l.signal.Unsubscribe(l.forward)
		}

		l.latch.Unsubscribe(l.reaction)
	})
}

// request emits a breach request from the device.
func (l *breachLink) request(ctx context.Context) {
	logger.InfoKV(ctx, "Breach requested", "device", l.id)
	l.signal.Emit(ctx)
}

// Set is the registry of devices, in declaration order.
type Set struct {
	byID  map[string]Device
	order []string
}

// NewSet creates an empty registry.
func NewSet() *Set {
	return &Set{byID: make(map[string]Device)}
}

// Add registers d.
func (s *Set) Add(d Device) error {
	if _, exists := s.byID[d.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateDevice, d.ID())
	}

	s.byID[d.ID()] = d
	s.order = append(s.order, d.ID())

	return nil
}

// Get looks up a device by id.
func (s *Set) Get(id string) (Device, bool) {
	d, ok := s.byID[id]

	return d, ok
}

// Entity resolves a power consumer by id. It satisfies power.Resolver.
func (s *Set) Entity(id string) (power.Entity, bool) {
	d, ok := s.byID[id]
	if !ok {
		return nil, false
	}

	e, ok := d.(power.Entity)

	return e, ok
}

// All returns devices in declaration order.
func (s *Set) All() []Device {
	out := make([]Device, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}

	return out
}

// Start starts every device in declaration order.
func (s *Set) Start(ctx context.Context) {
	for _, d := range s.All() {
		d.Start(ctx)
	}
}

// poweredState is the shared part of State for power consumers.
func poweredState(e power.Entity) map[string]any {
	return map[string]any{
		"required_power": e.RequiredPower(),
		"provided_power": e.ProvidedPower(),
		"powered":        e.HasPower(),
	}
}
