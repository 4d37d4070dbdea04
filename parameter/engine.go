package parameter

import "time"

// Session Loop Timing
const (
	// TickRate is the fixed session update rate in Hz
	TickRate = 60

	// TickInterval is the session update interval derived from TickRate
	TickInterval = time.Second / TickRate

	// CommandQueueSize is the buffered capacity of the input command channel
	CommandQueueSize = 64

	// FeedbackDisplayDuration is how long the latest feedback stays in the snapshot
	FeedbackDisplayDuration = 1500 * time.Millisecond
)

// Persistence
const (
	// DefaultStorePath is the assessment file used when none is configured
	DefaultStorePath = "assessments.json"

	// TimestampLayout is the persisted record timestamp format
	TimestampLayout = "2006-01-02 15:04:05"
)

// Logging
const (
	LogDir      = "logs"
	LogFileName = "composure.log"

	// MaxLogSize triggers rotation of the log file on startup
	MaxLogSize = 10 * 1024 * 1024
)
