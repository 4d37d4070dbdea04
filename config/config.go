// Package config layers runtime settings: defaults, then an optional YAML
// file, then COMPOSURE_* environment variables. Command line flags are applied
// by the caller on top of the loaded value.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/composure/disruption"
	"github.com/lixenwraith/composure/field"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/session"
	"github.com/lixenwraith/composure/store"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "COMPOSURE_"

// Config is the full set of user tunables
type Config struct {
	TaskDuration    time.Duration `yaml:"task_duration" env:"TASK_DURATION"`
	TasksPerLevel   int           `yaml:"tasks_per_level" env:"TASKS_PER_LEVEL"`
	MaxDifficulty   int           `yaml:"max_difficulty" env:"MAX_DIFFICULTY"`
	BaseTargetCount int           `yaml:"base_target_count" env:"BASE_TARGET_COUNT"`
	MaxDisruptions  int           `yaml:"max_disruptions" env:"MAX_DISRUPTIONS"`

	FieldWidth           float64 `yaml:"field_width" env:"FIELD_WIDTH"`
	FieldHeight          float64 `yaml:"field_height" env:"FIELD_HEIGHT"`
	TargetSpacing        float64 `yaml:"target_spacing" env:"TARGET_SPACING"`
	MaxPlacementAttempts int     `yaml:"max_placement_attempts" env:"MAX_PLACEMENT_ATTEMPTS"`

	TickRate int `yaml:"tick_rate" env:"TICK_RATE"`

	// Seed 0 picks a time based seed at startup
	Seed uint64 `yaml:"seed" env:"SEED"`

	StoreBackend store.Backend `yaml:"store_backend" env:"STORE_BACKEND"`
	StorePath    string        `yaml:"store_path" env:"STORE_PATH"`

	Audio bool `yaml:"audio" env:"AUDIO"`
	Debug bool `yaml:"debug" env:"DEBUG"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		TaskDuration:         parameter.TaskDuration,
		TasksPerLevel:        parameter.TasksPerLevel,
		MaxDifficulty:        parameter.MaxDifficulty,
		BaseTargetCount:      parameter.BaseTargetCount,
		MaxDisruptions:       parameter.MaxDisruptions,
		FieldWidth:           parameter.FieldWidth,
		FieldHeight:          parameter.FieldHeight,
		TargetSpacing:        parameter.TargetSpacing,
		MaxPlacementAttempts: parameter.MaxPlacementAttempts,
		TickRate:             parameter.TickRate,
		StoreBackend:         store.BackendJSON,
		StorePath:            parameter.DefaultStorePath,
		Audio:                true,
	}
}

// Load builds the config from defaults, the YAML file at path (skipped when
// empty) and the environment, then validates the result
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays the keys present in the YAML file, absent keys keep their value
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every offending field
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}

	positive("task_duration", c.TaskDuration.Seconds())
	positive("tasks_per_level", float64(c.TasksPerLevel))
	positive("max_difficulty", float64(c.MaxDifficulty))
	positive("base_target_count", float64(c.BaseTargetCount))
	positive("field_width", c.FieldWidth)
	positive("field_height", c.FieldHeight)
	positive("max_placement_attempts", float64(c.MaxPlacementAttempts))
	positive("tick_rate", float64(c.TickRate))

	if c.MaxDisruptions < 0 {
		errs = append(errs, fmt.Errorf("max_disruptions must not be negative, got %d", c.MaxDisruptions))
	}
	if c.TargetSpacing < 0 {
		errs = append(errs, fmt.Errorf("target_spacing must not be negative, got %v", c.TargetSpacing))
	}
	switch c.StoreBackend {
	case store.BackendJSON, store.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store_backend must be %q or %q, got %q",
			store.BackendJSON, store.BackendSQLite, c.StoreBackend))
	}
	if c.StorePath == "" {
		errs = append(errs, errors.New("store_path must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TickInterval returns the fixed tick period
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Session converts the settings into a session config with the given seed
func (c Config) Session(seed uint64) session.Config {
	fc := field.DefaultConfig()
	fc.Width = c.FieldWidth
	fc.Height = c.FieldHeight
	fc.Spacing = c.TargetSpacing
	fc.MaxPlacementAttempts = c.MaxPlacementAttempts

	dc := disruption.DefaultConfig()
	dc.MaxDisruptions = c.MaxDisruptions

	return session.Config{
		TaskDuration:    c.TaskDuration,
		TasksPerLevel:   c.TasksPerLevel,
		MaxDifficulty:   c.MaxDifficulty,
		BaseTargetCount: c.BaseTargetCount,
		Seed:            seed,
		Field:           fc,
		Disruption:      dc,
	}
}

// OpenStore opens the configured record store
func (c Config) OpenStore() (store.Store, error) {
	return store.Open(c.StoreBackend, c.StorePath)
}
