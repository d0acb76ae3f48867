package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/facility-breach/internal/device"
	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
)

// Config is the facility settings file.
type Config struct {
	// ServerAddress is the gRPC address of the facility server.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress is where the server exposes /metrics. Empty disables it.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// Timeout bounds client RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// TickInterval is the simulation step of the server.
	TickInterval time.Duration `yaml:"tick_interval"`
	// TimeToEscape is the countdown started by the breach.
	TimeToEscape time.Duration `yaml:"time_to_escape"`
	// Grids are the power grid templates, activated in this order.
	Grids []Grid `yaml:"grids"`
	// Devices are the facility devices.
	Devices []Device `yaml:"devices"`
	// Lighting lists light groups swapped on breach.
	Lighting Lighting `yaml:"lighting,omitempty"`
}

// Grid declares a power grid.
type Grid struct {
	ID         string      `yaml:"id"`
	Subsystems []Subsystem `yaml:"subsystems"`
}

// Subsystem declares a power subsystem and its initial connections.
type Subsystem struct {
	ID          string   `yaml:"id"`
	Capacity    float64  `yaml:"capacity"`
	Connections []string `yaml:"connections,omitempty"`
}

// Device declares one facility device. Kind-specific fields are ignored by other kinds.
type Device struct {
	ID                    string      `yaml:"id"`
	Kind                  device.Kind `yaml:"kind"`
	RequiredPower         float64     `yaml:"required_power,omitempty"`
	OpenOnStart           bool        `yaml:"open_on_start,omitempty"`
	LockedOnStart         bool        `yaml:"locked_on_start,omitempty"`
	LockedOnBreach        bool        `yaml:"locked_on_breach,omitempty"`
	MaxLockedInteractions int         `yaml:"max_locked_interactions,omitempty"`
	LockGroup             []string    `yaml:"lock_group,omitempty"`
	TriggerOnExit         bool        `yaml:"trigger_on_exit,omitempty"`
}

// Lighting names the standard and alarm light groups.
type Lighting struct {
	Standard []string `yaml:"standard,omitempty"`
	Alarm    []string `yaml:"alarm,omitempty"`
}

const (
	// DefaultConfigFilename is the default settings file.
	DefaultConfigFilename = "facility-settings.yaml"

	// DefaultTimeout is the default duration for client RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultTickInterval is the default simulation step.
	DefaultTickInterval = 50 * time.Millisecond

	// DefaultTimeToEscape is the default breach countdown.
	DefaultTimeToEscape = 120 * time.Second

	// DefaultFilePermissions is the permission used when saving settings.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when the server address is missing.
	errServerAddressRequired = errors.New("server address must be provided")
	// ErrInvalidTopology wraps every grid and device declaration error.
	ErrInvalidTopology = errors.New("invalid facility topology")
)

// Load reads the settings file at path (or the default file) and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save validates cfg and writes it to path (or the default file).
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks endpoints and topology, and applies defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.TimeToEscape <= 0 {
		cfg.TimeToEscape = DefaultTimeToEscape
	}

	return validateTopology(cfg)
}

// GridTemplates converts the declared grids into power templates.
func (c *Config) GridTemplates() []power.GridTemplate {
	templates := make([]power.GridTemplate, 0, len(c.Grids))

	for _, g := range c.Grids {
		subsystems := make([]power.SubsystemTemplate, 0, len(g.Subsystems))
		for _, s := range g.Subsystems {
			subsystems = append(subsystems, power.SubsystemTemplate{
				ID:          s.ID,
				Capacity:    s.Capacity,
				Connections: slices.Clone(s.Connections),
			})
		}

		templates = append(templates, power.GridTemplate{ID: g.ID, Subsystems: subsystems})
	}

	return templates
}

//nolint:cyclop // A flat list of checks reads better than helpers per rule.
func validateTopology(cfg *Config) error {
	kinds := make(map[string]device.Kind, len(cfg.Devices))

	for _, d := range cfg.Devices {
		if d.ID == "" {
			return fmt.Errorf("%w: device without id", ErrInvalidTopology)
		}

		if _, dup := kinds[d.ID]; dup {
			return fmt.Errorf("%w: duplicate device %q", ErrInvalidTopology, d.ID)
		}

		if !slices.Contains(device.Kinds(), d.Kind) {
			return fmt.Errorf("%w: device %q has unknown kind %q", ErrInvalidTopology, d.ID, d.Kind)
		}

		if d.RequiredPower < 0 {
			return fmt.Errorf("%w: device %q has negative required power", ErrInvalidTopology, d.ID)
		}

		kinds[d.ID] = d.Kind
	}

	for _, d := range cfg.Devices {
		for _, peer := range d.LockGroup {
			if kinds[peer] != device.KindDoor || d.Kind != device.KindDoor {
				return fmt.Errorf("%w: lock group of %q must list doors, got %q", ErrInvalidTopology, d.ID, peer)
			}
		}
	}

	for _, id := range slices.Concat(cfg.Lighting.Standard, cfg.Lighting.Alarm) {
		if kinds[id] != device.KindLightGroup {
			return fmt.Errorf("%w: lighting entry %q is not a light group", ErrInvalidTopology, id)
		}
	}

	grids := make(map[string]struct{}, len(cfg.Grids))

	for _, g := range cfg.Grids {
		if err := validateID("grid", g.ID); err != nil {
			return err
		}

		if _, dup := grids[g.ID]; dup {
			return fmt.Errorf("%w: duplicate grid %q", ErrInvalidTopology, g.ID)
		}

		grids[g.ID] = struct{}{}
		subsystems := make(map[string]struct{}, len(g.Subsystems))

		for _, s := range g.Subsystems {
			if err := validateID("subsystem", s.ID); err != nil {
				return err
			}

			if _, dup := subsystems[s.ID]; dup {
				return fmt.Errorf("%w: duplicate subsystem %q in grid %q", ErrInvalidTopology, s.ID, g.ID)
			}

			if s.Capacity < 0 {
				return fmt.Errorf("%w: subsystem %q has negative capacity", ErrInvalidTopology, s.ID)
			}

			subsystems[s.ID] = struct{}{}

			for _, conn := range s.Connections {
				kind, ok := kinds[conn]
				if !ok || kind == device.KindTriggerVolume {
					return fmt.Errorf("%w: subsystem %q connects unknown or unpowered device %q",
						ErrInvalidTopology, s.ID, conn)
				}
			}
		}
	}

	return nil
}

// validateID rejects empty ids and ids containing the switch target separator.
func validateID(what, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s without id", ErrInvalidTopology, what)
	}

	if strings.Contains(id, power.TargetSeparator) {
		return fmt.Errorf("%w: %s id %q must not contain %q", ErrInvalidTopology, what, id, power.TargetSeparator)
	}

	return nil
}
