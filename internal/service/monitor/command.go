package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/facility"
	"github.com/oshokin/facility-breach/internal/logger"
	"github.com/oshokin/facility-breach/internal/service/common"
)

// Options controls the monitor polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between status checks.
	PollInterval time.Duration
	// ExitOnBreach stops the monitor once the breach is observed.
	ExitOnBreach bool
}

// DefaultPollInterval defines the default polling interval for status checks.
const DefaultPollInterval = 5 * time.Second

// errBreachObserved stops the polling loop when ExitOnBreach is set.
var errBreachObserved = errors.New("breach observed")

// statusClient is the part of the facility client the monitor needs.
type statusClient interface {
	GetStatus(ctx context.Context) (*facility.Status, error)
}

// Run polls facility status until the context is canceled, or until the
// breach is seen when ExitOnBreach is set.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "facility-monitor")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Establish gRPC connection with timeout from configuration.
	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	logger.InfoKV(ctx, "Polling facility status", "server_address", serverAddress, "interval", interval.String())

	return poll(ctx, client, interval, opts.ExitOnBreach)
}

// poll runs the polling loop.
func poll(ctx context.Context, client statusClient, interval time.Duration, exitOnBreach bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var w watcher

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
			if err := checkStatus(ctx, client, &w, exitOnBreach); err != nil {
				if errors.Is(err, errBreachObserved) {
					logger.Info(ctx, "Breach observed, exiting")

					return nil
				}

				logger.ErrorKV(ctx, "Check status failed", "error", err)
			}
		}
	}
}

// watcher remembers the last reported state so that changes are logged once.
type watcher struct {
	seen        bool
	breached    bool
	closed      bool
	activeGrids map[string]bool
}

// checkStatus fetches the status and logs what changed since the last poll.
func checkStatus(ctx context.Context, client statusClient, w *watcher, exitOnBreach bool) error {
	status, err := client.GetStatus(ctx)
	if err != nil {
		return err
	}

	for _, change := range w.observe(status) {
		logger.Info(ctx, change)
	}

	if status.Breached && status.EscapeRunning {
		logger.DebugKV(ctx, "Escape countdown", "remaining", status.EscapeRemaining.String())
	}

	if status.Breached && exitOnBreach {
		return errBreachObserved
	}

	return nil
}

// observe records status and returns human-readable changes.
func (w *watcher) observe(status *facility.Status) []string {
	var changes []string

	if !w.seen {
		changes = append(changes, fmt.Sprintf("Facility %s, %d grids, %d devices",
			status.BreachState, len(status.Grids), len(status.Devices)))
		w.activeGrids = make(map[string]bool, len(status.Grids))
	}

	if status.Breached && !w.breached {
		changes = append(changes, fmt.Sprintf("Breach triggered at %s, %s left to escape",
			status.TriggeredAt.Format(time.RFC3339), status.EscapeRemaining))
	}

	if status.EscapeClosed && !w.closed {
		changes = append(changes, "Escape window closed")
	}

	for _, g := range status.Grids {
		if prev, ok := w.activeGrids[g.ID]; w.seen && (!ok || prev != g.Active) {
			changes = append(changes, fmt.Sprintf("Grid %s is now %s", g.ID, onOff(g.Active)))
		}

		w.activeGrids[g.ID] = g.Active
	}

	w.seen = true
	w.breached = status.Breached
	w.closed = status.EscapeClosed

	return changes
}

func onOff(active bool) string {
	if active {
		return "on"
	}

	return "off"
}
