package facility

import (
	"time"

	"github.com/oshokin/facility-breach/internal/device"
	"github.com/oshokin/facility-breach/internal/domain/power"
)

// Status is a point-in-time copy of the facility state.
type Status struct {
	Breached        bool
	BreachState     string
	TriggeredAt     time.Time
	Listeners       int
	EscapeRunning   bool
	EscapeRemaining time.Duration
	EscapeClosed    bool
	Grids           []GridStatus
	Devices         []DeviceStatus
}

// GridStatus describes one grid.
type GridStatus struct {
	ID         string
	Active     bool
	Subsystems []SubsystemStatus
}

// SubsystemStatus describes one subsystem.
type SubsystemStatus struct {
	ID       string
	Active   bool
	Usage    float64
	Capacity float64
	// Entities are connected consumers, in roster order.
	Entities []string
}

// DeviceStatus describes one device.
type DeviceStatus struct {
	ID    string
	Kind  device.Kind
	State map[string]any
}

// Status returns a snapshot that is safe to use after the lock is released.
func (f *Facility) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Status{
		Breached:        f.latch.Triggered(),
		BreachState:     f.latch.State(),
		TriggeredAt:     f.latch.TriggeredAt(),
		Listeners:       f.latch.Listeners(),
		EscapeRunning:   f.escape.running,
		EscapeRemaining: f.escape.remaining,
		EscapeClosed:    f.escape.closed,
	}

	for _, g := range f.network.Grids() {
		gs := GridStatus{ID: g.ID(), Active: g.Active()}

		for _, sub := range g.Subsystems() {
			gs.Subsystems = append(gs.Subsystems, SubsystemStatus{
				ID:       sub.ID(),
				Active:   sub.Active(),
				Usage:    sub.Usage(),
				Capacity: sub.Capacity(),
				Entities: entityIDs(sub.Entities()),
			})
		}

		s.Grids = append(s.Grids, gs)
	}

	for _, d := range f.devices.All() {
		s.Devices = append(s.Devices, DeviceStatus{ID: d.ID(), Kind: d.Kind(), State: d.State()})
	}

	return s
}

func entityIDs(entities []power.Entity) []string {
	ids := make([]string, 0, len(entities))

	for _, e := range entities {
		if named, ok := e.(interface{ ID() string }); ok {
			ids = append(ids, named.ID())
		}
	}

	return ids
}
