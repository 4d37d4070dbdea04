package session

import (
	"time"

	"github.com/lixenwraith/composure/disruption"
	"github.com/lixenwraith/composure/field"
	"github.com/lixenwraith/composure/parameter"
)

// Config holds the progression tunables and the component configs
type Config struct {
	TaskDuration    time.Duration
	TasksPerLevel   int
	MaxDifficulty   int
	BaseTargetCount int

	// Seed drives every randomized decision, equal seeds replay equal sessions
	Seed uint64

	Field      field.Config
	Disruption disruption.Config
}

// DefaultConfig returns the gameplay defaults with the given seed
func DefaultConfig(seed uint64) Config {
	return Config{
		TaskDuration:    parameter.TaskDuration,
		TasksPerLevel:   parameter.TasksPerLevel,
		MaxDifficulty:   parameter.MaxDifficulty,
		BaseTargetCount: parameter.BaseTargetCount,
		Seed:            seed,
		Field:           field.DefaultConfig(),
		Disruption:      disruption.DefaultConfig(),
	}
}
