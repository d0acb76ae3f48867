package alarm

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/facility"
	"github.com/oshokin/facility-breach/internal/logger"
	"github.com/oshokin/facility-breach/internal/service/common"
)

// Options configures the alarm panel client.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// RetryInterval overrides the delay between attempts.
	RetryInterval time.Duration
}

// defaultRetryInterval defines retry delay when pushing the breach to the server.
const defaultRetryInterval = 1 * time.Second

// breacher is the part of the facility client the panel needs.
type breacher interface {
	TriggerBreach(ctx context.Context) (bool, error)
	GetStatus(ctx context.Context) (*facility.Status, error)
}

// Run triggers the breach with retry logic until the server reports it or ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "facility-alarm")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for the server logs.
	operator, err := common.DetectOperator()
	if err != nil {
		return err
	}

	// Connect to the facility server with timeout from config.
	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithOperator(operator))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Raising breach", "server_address", serverAddress, "operator", operator)

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	return raise(ctx, client, interval)
}

// raise pushes the breach until the server reports it latched.
func raise(ctx context.Context, client breacher, interval time.Duration) error {
	// attempt tries once to latch the breach, returns true once confirmed.
	attempt := func() bool {
		latched, err := client.TriggerBreach(ctx)
		if err != nil {
			// Log error but continue retrying for transient failures.
			logger.ErrorKV(ctx, "TriggerBreach failed", "error", err)

			return false
		}

		if latched {
			logger.Info(ctx, "Breach latched by this panel")

			return true
		}

		// Someone else may have latched it first; confirm through the status.
		status, err := client.GetStatus(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "GetStatus failed", "error", err)

			return false
		}

		if status.Breached {
			logger.Infof(ctx, "Breach already active: %s", formatStatus(status))

			return true
		}

		return false
	}

	// Attempt immediately before starting retry loop.
	if attempt() {
		return nil
	}

	// Setup retry timer for subsequent attempts.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Retry loop until success or cancellation.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if attempt() {
				return nil
			}
		}
	}
}

// formatStatus renders the breach part of a status for logs.
func formatStatus(status *facility.Status) string {
	if status == nil {
		return "<nil status>"
	}

	if !status.Breached {
		return "armed"
	}

	at := "<unknown>"
	if !status.TriggeredAt.IsZero() {
		at = status.TriggeredAt.Format(time.RFC3339)
	}

	return fmt.Sprintf("triggered at %s, %s left to escape", at, status.EscapeRemaining)
}
