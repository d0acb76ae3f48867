package facility

import (
	"context"
	"time"

	"github.com/oshokin/facility-breach/internal/logger"
)

// escapeCountdown is the time left to leave the facility after a breach.
type escapeCountdown struct {
	total     time.Duration
	remaining time.Duration
	running   bool
	closed    bool
}

func (e *escapeCountdown) start(ctx context.Context) {
	if e.running || e.closed {
		return
	}

	e.running = true
	e.remaining = e.total

	logger.WarnKV(ctx, "Escape countdown started", "time_to_escape", e.total.String())
}

func (e *escapeCountdown) advance(ctx context.Context, dt time.Duration) {
	if !e.running || dt <= 0 {
		return
	}

	e.remaining -= dt
	if e.remaining > 0 {
		return
	}

	e.remaining = 0
	e.running = false
	e.closed = true

	logger.Warn(ctx, "Escape window closed")
}
