package breach

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Listener reacts to a breach (or, on a Signal, to a breach request).
type Listener func(ctx context.Context)

// handler is a registered callback and the handle that removes it.
type handler struct {
	id uuid.UUID
	fn Listener
}

// handlerList keeps callbacks in registration order.
type handlerList struct {
	entries []handler
}

func (l *handlerList) add(fn Listener) uuid.UUID {
	id := uuid.New()
	l.entries = append(l.entries, handler{id: id, fn: fn})

	return id
}

func (l *handlerList) remove(id uuid.UUID) bool {
	idx := l.index(id)
	if idx < 0 {
		return false
	}

	l.entries = slices.Delete(l.entries, idx, idx+1)

	return true
}

func (l *handlerList) len() int {
	return len(l.entries)
}

func (l *handlerList) index(id uuid.UUID) int {
	return slices.IndexFunc(l.entries, func(h handler) bool { return h.id == id })
}

// dispatch invokes every handler registered when the pass starts, even if an
// earlier callback removes it. Handlers added during the pass wait for the next
// one. It returns the number of invocations.
func (l *handlerList) dispatch(ctx context.Context) int {
	snapshot := slices.Clone(l.entries)

	for _, h := range snapshot {
		h.fn(ctx)
	}

	return len(snapshot)
}
