package parameter

import "time"

// Session Progression
const (
	// TaskDuration is the time budget of a single task
	TaskDuration = 30 * time.Second

	// TasksPerLevel is the task count per level, also used as the level count per difficulty
	TasksPerLevel = 3

	// MaxDifficulty is the last difficulty step, overflowing it finishes the session
	MaxDifficulty = 5
)

// Work Unit Field
const (
	// FieldWidth is the horizontal extent of the field in field units
	FieldWidth = 800.0

	// FieldHeight is the vertical extent of the field in field units
	FieldHeight = 600.0

	// BaseTargetCount is the unit count at difficulty 1, each step adds TargetsPerDifficulty
	BaseTargetCount = 5

	// TargetsPerDifficulty is the unit count increment per difficulty step
	TargetsPerDifficulty = 3

	// TargetMinRadius is the lower bound of the radius range
	TargetMinRadius = 15.0

	// TargetMaxRadius is the upper bound at difficulty 0, shrinks by TargetRadiusShrink per step
	TargetMaxRadius = 30.0

	// TargetRadiusShrink is the upper bound reduction per difficulty step
	TargetRadiusShrink = 3.0

	// TargetRadiusFloor is the absolute minimum radius
	TargetRadiusFloor = 5.0

	// TargetSpacing is the minimum gap between two placed unit edges
	TargetSpacing = 10.0

	// MaxPlacementAttempts bounds rejection sampling per unit, the last candidate is kept on exhaustion
	MaxPlacementAttempts = 100

	// MobilePerDifficulty is the mobile unit count increment per difficulty step
	MobilePerDifficulty = 2

	// MaxMobileSpeed caps unit speed in field units per reference frame
	MaxMobileSpeed = 5.0

	// ReferenceFrame is the interval mobile speeds are expressed against
	ReferenceFrame = time.Second / 60
)

// Disruptions
const (
	// MaxDisruptions caps the per-task disruption count
	MaxDisruptions = 6

	// DisruptionsPerDifficulty is the per-task disruption count per difficulty step
	DisruptionsPerDifficulty = 2

	// DisruptionWindowStart is the earliest offset as a fraction of task duration
	DisruptionWindowStart = 0.2

	// DisruptionWindowEnd is the latest offset as a fraction of task duration
	DisruptionWindowEnd = 0.8

	// DisruptionMinDuration is the shortest disruption
	DisruptionMinDuration = 1500 * time.Millisecond

	// DisruptionMaxDuration is the longest disruption
	DisruptionMaxDuration = 3000 * time.Millisecond

	// SpeedUpMultiplier scales mobile unit speed while a SpeedUp disruption is active
	SpeedUpMultiplier = 2.0
)

// Ratings
const (
	RatingMin     = 0.0
	RatingMax     = 10.0
	RatingNeutral = 5.0

	WeightStability   = 0.35
	WeightRecovery    = 0.35
	WeightPersistence = 0.30
)
