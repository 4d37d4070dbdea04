package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 100 * time.Millisecond
)

// Feedback Cues
const (
	// PositiveCueFreq is the chime pitch for hits and recoveries
	PositiveCueFreq     = 880.0
	PositiveCueDuration = 80 * time.Millisecond

	// WarningCueFreq is the pitch for disruption onset
	WarningCueFreq     = 330.0
	WarningCueDuration = 180 * time.Millisecond

	// NegativeCueFreq is the low buzz for abandonment
	NegativeCueFreq     = 110.0
	NegativeCueDuration = 300 * time.Millisecond

	CueAttack  = 5 * time.Millisecond
	CueRelease = 40 * time.Millisecond
	CueVolume  = 0.3
)
