package switcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/facility-breach/internal/config"
	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
	"github.com/oshokin/facility-breach/internal/service/common"
)

// Mode selects what the switch does with each target.
type Mode string

// Supported switch modes. On and Off address whole grids only.
const (
	ModeToggle Mode = "toggle"
	ModeOn     Mode = "on"
	ModeOff    Mode = "off"
)

// Options configures the switch client.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Mode defaults to ModeToggle.
	Mode Mode
	// Targets are switched in order.
	Targets []string
}

var (
	// errNoTargets is returned when nothing is to be switched.
	errNoTargets = errors.New("at least one target must be provided")
	// errUnknownMode is returned for modes other than toggle, on and off.
	errUnknownMode = errors.New("unknown switch mode")
	// errGridOnly is returned when on/off is used with a subsystem target.
	errGridOnly = errors.New("on and off address whole grids only")
)

// switchClient is the part of the facility client the switch needs.
type switchClient interface {
	Toggle(ctx context.Context, target string) (bool, error)
	ActivateGrid(ctx context.Context, grid string) (bool, error)
	DeactivateGrid(ctx context.Context, grid string) (bool, error)
}

// Run validates the targets and switches each of them once.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "facility-switch")

	targets, err := parseTargets(opts.Mode, opts.Targets)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	operator, err := common.DetectOperator()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithOperator(operator))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	return switchAll(ctx, client, modeOrDefault(opts.Mode), targets)
}

// switchAll applies mode to every target and stops at the first failure.
func switchAll(ctx context.Context, client switchClient, mode Mode, targets []power.Target) error {
	for _, target := range targets {
		var (
			changed bool
			err     error
		)

		switch mode {
		case ModeOn:
			changed, err = client.ActivateGrid(ctx, target.Grid)
		case ModeOff:
			changed, err = client.DeactivateGrid(ctx, target.Grid)
		default:
			changed, err = client.Toggle(ctx, target.String())
		}

		if err != nil {
			return fmt.Errorf("switch %s: %w", target, err)
		}

		if changed {
			logger.InfoKV(ctx, "Target switched", "target", target.String(), "mode", string(mode))
		} else {
			logger.InfoKV(ctx, "Target already in requested state", "target", target.String(), "mode", string(mode))
		}
	}

	return nil
}

// parseTargets checks every target up front so a typo switches nothing.
func parseTargets(mode Mode, raw []string) ([]power.Target, error) {
	mode = modeOrDefault(mode)
	if mode != ModeToggle && mode != ModeOn && mode != ModeOff {
		return nil, fmt.Errorf("%w: %q", errUnknownMode, mode)
	}

	if len(raw) == 0 {
		return nil, errNoTargets
	}

	targets := make([]power.Target, 0, len(raw))

	for _, s := range raw {
		t, err := power.ParseTarget(s)
		if err != nil {
			return nil, err
		}

		if mode != ModeToggle && t.HasSubsystem() {
			return nil, fmt.Errorf("%w: %q", errGridOnly, s)
		}

		targets = append(targets, t)
	}

	return targets, nil
}

func modeOrDefault(mode Mode) Mode {
	if mode == "" {
		return ModeToggle
	}

	return mode
}
