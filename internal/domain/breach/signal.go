package breach

import (
	"context"

	"github.com/google/uuid"
)

// Source is implemented by devices that can request a breach.
type Source interface {
	Signal() *Signal
}

// Signal is a payload-free "breach requested" event owned by one source.
type Signal struct {
	subscribers handlerList
}

// Subscribe registers fn and returns its handle.
func (s *Signal) Subscribe(fn Listener) uuid.UUID {
	return s.subscribers.add(fn)
}

// Unsubscribe removes a subscription. Removing twice returns false.
func (s *Signal) Unsubscribe(id uuid.UUID) bool {
	return s.subscribers.remove(id)
}

// Subscribers returns the number of subscriptions.
func (s *Signal) Subscribers() int {
	return s.subscribers.len()
}

// Emit invokes every subscription in registration order.
func (s *Signal) Emit(ctx context.Context) {
	s.subscribers.dispatch(ctx)
}

// Forward subscribes the latch trigger to the signal and returns the
// forwarding handle.
func Forward(signal *Signal, latch *Latch) uuid.UUID {
	return signal.Subscribe(func(ctx context.Context) {
		latch.Trigger(ctx)
	})
}
