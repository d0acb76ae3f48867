package breach

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/oshokin/facility-breach/internal/logger"
)

const (
	// StateArmed is the initial latch state.
	StateArmed = "armed"
	// StateTriggered is terminal.
	StateTriggered = "triggered"
	// EventTrigger moves the latch from armed to triggered.
	EventTrigger = "trigger"
)

// Observer is told about the single breach broadcast.
type Observer interface {
	BreachTriggered(notified int)
}

// Latch records whether the facility has been breached. It is constructed
// explicitly and injected into every device that reacts to or raises a breach.
type Latch struct {
	// machine holds the armed/triggered state.
	machine *fsm.FSM
	// listeners are notified once, when the latch flips.
	listeners handlerList
	// triggeredAt is zero until the latch flips.
	triggeredAt time.Time
	// observer may be nil.
	observer Observer
	// now is replaceable in tests.
	now func() time.Time
}

// LatchOption configures NewLatch.
type LatchOption func(*Latch)

// WithLatchObserver reports the broadcast to o.
func WithLatchObserver(o Observer) LatchOption {
	return func(l *Latch) {
		l.observer = o
	}
}

// WithClock overrides the clock used for TriggeredAt.
func WithClock(now func() time.Time) LatchOption {
	return func(l *Latch) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLatch creates an armed latch with no listeners.
func NewLatch(opts ...LatchOption) *Latch {
	l := &Latch{
		machine: fsm.NewFSM(
			StateArmed,
			fsm.Events{
				{Name: EventTrigger, Src: []string{StateArmed}, Dst: StateTriggered},
			},
			fsm.Callbacks{},
		),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Trigger flips the latch and notifies every listener. Only the call that
// flips the latch returns true; every later call, including re-entrant calls
// from listeners, is a no-op.
func (l *Latch) Trigger(ctx context.Context) bool {
	if !l.machine.Can(EventTrigger) {
		logger.Debug(ctx, "Breach already triggered, ignoring")

		return false
	}

	if err := l.machine.Event(ctx, EventTrigger); err != nil {
		logger.WarnKV(ctx, "Breach transition failed", "error", err)

		return false
	}

	l.triggeredAt = l.now()

	logger.InfoKV(ctx, "Breach triggered", "listeners", l.listeners.len())

	notified := l.listeners.dispatch(ctx)

	if l.observer != nil {
		l.observer.BreachTriggered(notified)
	}

	return true
}

// Triggered reports whether the latch has flipped.
func (l *Latch) Triggered() bool {
	return l.machine.Is(StateTriggered)
}

// State returns the current state name.
func (l *Latch) State() string {
	return l.machine.Current()
}

// TriggeredAt returns when the latch flipped, or the zero time.
func (l *Latch) TriggeredAt() time.Time {
	return l.triggeredAt
}

// Subscribe registers a breach listener and returns its handle. Subscribing
// after the latch has flipped is allowed and never fires.
func (l *Latch) Subscribe(fn Listener) uuid.UUID {
	return l.listeners.add(fn)
}

// Unsubscribe removes a listener. It returns false for unknown handles.
func (l *Latch) Unsubscribe(id uuid.UUID) bool {
	return l.listeners.remove(id)
}

// Listeners returns the number of registered listeners.
func (l *Latch) Listeners() int {
	return l.listeners.len()
}
