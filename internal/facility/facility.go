package facility

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/device"
	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
)

// Device actions accepted by Interact.
const (
	ActionInteract = "interact"
	ActionDetect   = "detect"
	ActionEnter    = "enter"
	ActionExit     = "exit"
	ActionUse      = "use"
)

var (
	// ErrUnknownTarget is returned for grids or subsystems that do not exist.
	ErrUnknownTarget = errors.New("unknown power target")
	// ErrUnknownDevice is returned for device ids that do not exist.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnsupportedAction is returned when a device cannot perform an action.
	ErrUnsupportedAction = errors.New("unsupported device action")
	// errConfigRequired is returned by New when no configuration is given.
	errConfigRequired = errors.New("configuration is required")
)

// Option configures New.
type Option func(*options)

type options struct {
	powerObserver  power.Observer
	breachObserver breach.Observer
	now            func() time.Time
}

// WithPowerObserver reports grid and subsystem events to o.
func WithPowerObserver(o power.Observer) Option {
	return func(opts *options) {
		opts.powerObserver = o
	}
}

// WithBreachObserver reports the breach broadcast to o.
func WithBreachObserver(o breach.Observer) Option {
	return func(opts *options) {
		opts.breachObserver = o
	}
}

// WithClock overrides the clock used for the breach timestamp.
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		opts.now = now
	}
}

// Facility owns one running simulation. Every exported method takes the same
// lock, so callers from several goroutines observe a single mutation order.
type Facility struct {
	// mu serialises every access to the objects below.
	mu sync.Mutex

	network  *power.Network
	latch    *breach.Latch
	devices  *device.Set
	lighting *device.LightManager
	escape   escapeCountdown
}

// New builds and starts a facility from cfg. Devices register their breach
// subscriptions first, then every grid is activated in declaration order.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Facility, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx = logger.WithName(ctx, "facility")

	latchOpts := []breach.LatchOption{breach.WithClock(o.now)}
	if o.breachObserver != nil {
		latchOpts = append(latchOpts, breach.WithLatchObserver(o.breachObserver))
	}

	latch := breach.NewLatch(latchOpts...)

	devices, err := buildDevices(cfg, latch)
	if err != nil {
		return nil, err
	}

	lighting, err := buildLighting(cfg, devices, latch)
	if err != nil {
		return nil, err
	}

	network, err := power.NewNetwork(ctx, cfg.GridTemplates(), devices.Entity, power.WithObserver(o.powerObserver))
	if err != nil {
		return nil, fmt.Errorf("build power network: %w", err)
	}

	f := &Facility{
		network:  network,
		latch:    latch,
		devices:  devices,
		lighting: lighting,
		escape:   escapeCountdown{total: cfg.TimeToEscape},
	}

	// The countdown listener is permanent: the latch fires at most once.
	latch.Subscribe(func(ctx context.Context) {
		f.escape.start(ctx)
	})

	f.startAll(ctx)

	logger.InfoKV(ctx, "Facility started",
		"grids", len(network.Grids()),
		"devices", len(devices.All()),
		"time_to_escape", cfg.TimeToEscape.String())

	return f, nil
}

// ActivateGrid switches a grid on. It reports whether anything changed.
func (f *Facility) ActivateGrid(ctx context.Context, id string) (bool, error) {
	return f.setGrid(ctx, id, true)
}

// DeactivateGrid switches a grid off. It reports whether anything changed.
func (f *Facility) DeactivateGrid(ctx context.Context, id string) (bool, error) {
	return f.setGrid(ctx, id, false)
}

func (f *Facility) setGrid(ctx context.Context, id string, active bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.network.Grid(id); !ok {
		return false, fmt.Errorf("%w: grid %q", ErrUnknownTarget, id)
	}

	if active {
		return f.network.ActivateGrid(ctx, id), nil
	}

	return f.network.DeactivateGrid(ctx, id), nil
}

// Toggle flips "<grid>" or "<grid>_<subsystem>" to the opposite state.
func (f *Facility) Toggle(ctx context.Context, target string) (bool, error) {
	t, err := power.ParseTarget(target)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	changed, found := f.network.ToggleTarget(ctx, t)
	if !found {
		return false, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}

	return changed, nil
}

// TriggerBreach latches the breach directly. Only the first call returns true.
func (f *Facility) TriggerBreach(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.latch.Trigger(ctx)
}

// Interact performs action on a device, the way a player or an external
// sensor would. The result reports whether the device accepted the action.
//
//nolint:cyclop // One case per action keeps the dispatch table readable.
func (f *Facility) Interact(ctx context.Context, deviceID, action string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.devices.Get(deviceID)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownDevice, deviceID)
	}

	ctx = logger.WithFields(ctx, "device", deviceID, "action", action)

	switch action {
	case ActionInteract:
		if i, ok := d.(interface{ Interact(context.Context) bool }); ok {
			return i.Interact(ctx), nil
		}
	case ActionDetect:
		if c, ok := d.(*device.Camera); ok {
			return c.Detect(ctx), nil
		}
	case ActionEnter:
		if v, ok := d.(*device.TriggerVolume); ok {
			return v.Enter(ctx), nil
		}
	case ActionExit:
		if v, ok := d.(*device.TriggerVolume); ok {
			return v.Exit(ctx), nil
		}
	case ActionUse:
		if t, ok := d.(*device.Terminal); ok {
			return t.Use(ctx), nil
		}
	}

	return false, fmt.Errorf("%w: %s cannot %q", ErrUnsupportedAction, d.Kind(), action)
}

// Tick advances the simulation clock by dt.
func (f *Facility) Tick(ctx context.Context, dt time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.escape.advance(ctx, dt)
}

// Run advances the simulation every interval until ctx is done.
func (f *Facility) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Tick(ctx, interval)
		}
	}
}
