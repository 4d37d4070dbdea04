package component

import "time"

// DisruptionKind identifies the perturbation applied while a disruption is active
type DisruptionKind uint8

const (
	DisruptionScreenShake DisruptionKind = iota
	DisruptionColorInversion
	DisruptionSpeedUp
	DisruptionShuffle
	DisruptionTimePressure

	DisruptionKindCount
)

var disruptionNames = [DisruptionKindCount]string{
	"screen_shake",
	"color_inversion",
	"speed_up",
	"shuffle",
	"time_pressure",
}

func (k DisruptionKind) String() string {
	if k >= DisruptionKindCount {
		return "unknown"
	}
	return disruptionNames[k]
}

// Message is the feedback text shown when the disruption starts
func (k DisruptionKind) Message() string {
	switch k {
	case DisruptionScreenShake:
		return "Shake it off!"
	case DisruptionColorInversion:
		return "Colors flipped!"
	case DisruptionSpeedUp:
		return "Targets speeding up!"
	case DisruptionShuffle:
		return "Targets shuffled!"
	case DisruptionTimePressure:
		return "Hurry up, time is running out!"
	default:
		return "Disruption!"
	}
}

// Disruption is a scheduled, time-bounded perturbation of one task
// Immutable after generation except Active and StartedAt
type Disruption struct {
	Kind     DisruptionKind
	Offset   time.Duration // From task start
	Duration time.Duration

	Active    bool
	StartedAt time.Time
}
