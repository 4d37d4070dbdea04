// Package field places and resolves the completable work units of one task
package field

import (
	"math"
	"time"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/vmath"
)

// Config holds the field geometry and generation tunables
type Config struct {
	Width, Height float64

	TargetsPerDifficulty int
	MinRadius            float64
	MaxRadius            float64
	RadiusShrink         float64
	RadiusFloor          float64
	Spacing              float64

	// MaxPlacementAttempts bounds rejection sampling per unit
	MaxPlacementAttempts int

	MobilePerDifficulty int
	MaxSpeed            float64
}

// DefaultConfig returns the gameplay defaults
func DefaultConfig() Config {
	return Config{
		Width:                parameter.FieldWidth,
		Height:               parameter.FieldHeight,
		TargetsPerDifficulty: parameter.TargetsPerDifficulty,
		MinRadius:            parameter.TargetMinRadius,
		MaxRadius:            parameter.TargetMaxRadius,
		RadiusShrink:         parameter.TargetRadiusShrink,
		RadiusFloor:          parameter.TargetRadiusFloor,
		Spacing:              parameter.TargetSpacing,
		MaxPlacementAttempts: parameter.MaxPlacementAttempts,
		MobilePerDifficulty:  parameter.MobilePerDifficulty,
		MaxSpeed:             parameter.MaxMobileSpeed,
	}
}

// Field owns the work units of the current task
// Not safe for concurrent use, confined to the session loop
type Field struct {
	cfg   Config
	rng   *vmath.FastRand
	units []component.WorkUnit

	speedMultiplier float64
	completed       int
	fallbacks       int
}

// New creates an empty field drawing all randomness from rng
func New(cfg Config, rng *vmath.FastRand) *Field {
	if cfg.MaxPlacementAttempts < 1 {
		cfg.MaxPlacementAttempts = 1
	}
	return &Field{
		cfg:             cfg,
		rng:             rng,
		speedMultiplier: 1,
	}
}

// UnitCount returns the number of units generated for a difficulty
func (f *Field) UnitCount(difficulty, baseCount int) int {
	n := baseCount + (difficulty-1)*f.cfg.TargetsPerDifficulty
	if n < 0 {
		return 0
	}
	return n
}

// RadiusBounds returns the radius range used at a difficulty
func (f *Field) RadiusBounds(difficulty int) (lo, hi float64) {
	lo = f.cfg.MinRadius
	hi = f.cfg.MaxRadius - f.cfg.RadiusShrink*float64(difficulty)
	if hi < lo {
		hi = lo
	}
	if lo < f.cfg.RadiusFloor {
		lo = f.cfg.RadiusFloor
	}
	if hi < f.cfg.RadiusFloor {
		hi = f.cfg.RadiusFloor
	}
	return lo, hi
}

// Generate replaces the field contents with a fresh unit set for the difficulty
func (f *Field) Generate(difficulty, baseCount int) {
	count := f.UnitCount(difficulty, baseCount)
	lo, hi := f.RadiusBounds(difficulty)

	f.units = make([]component.WorkUnit, 0, count)
	f.completed = 0
	f.fallbacks = 0
	f.speedMultiplier = 1

	for i := 0; i < count; i++ {
		radius := f.rng.Range(lo, hi)
		x, y := f.place(radius, f.units)
		f.units = append(f.units, component.WorkUnit{X: x, Y: y, Radius: radius})
	}

	mobile := min(count, max(0, (difficulty-1)*f.cfg.MobilePerDifficulty))
	speed := math.Min(float64(1+difficulty), f.cfg.MaxSpeed)
	for i := 0; i < mobile; i++ {
		u := &f.units[i]
		u.Mobile = true
		u.DX = f.rng.Sign()
		u.DY = f.rng.Sign()
		u.Speed = speed
	}
}

// place finds a position for a unit of the given radius spaced away from placed
// Falls back to the last candidate once MaxPlacementAttempts is exhausted
func (f *Field) place(radius float64, placed []component.WorkUnit) (x, y float64) {
	for attempt := 0; attempt < f.cfg.MaxPlacementAttempts; attempt++ {
		x = f.axisCandidate(radius, f.cfg.Width)
		y = f.axisCandidate(radius, f.cfg.Height)

		if f.spaced(x, y, radius, placed) {
			return x, y
		}
	}

	f.fallbacks++
	return x, y
}

func (f *Field) axisCandidate(radius, extent float64) float64 {
	if extent <= 2*radius {
		return extent / 2
	}
	return f.rng.Range(radius, extent-radius)
}

func (f *Field) spaced(x, y, radius float64, placed []component.WorkUnit) bool {
	for i := range placed {
		p := &placed[i]
		if vmath.Distance(x, y, p.X, p.Y) <= radius+p.Radius+f.cfg.Spacing {
			return false
		}
	}
	return true
}

// Advance moves mobile uncompleted units by dt, reflecting on field bounds per axis
func (f *Field) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	frames := float64(dt) / float64(parameter.ReferenceFrame) * f.speedMultiplier

	for i := range f.units {
		u := &f.units[i]
		if !u.Mobile || u.Completed {
			continue
		}
		u.X, u.DX = bounce(u.X+u.Speed*u.DX*frames, u.DX, u.Radius, f.cfg.Width)
		u.Y, u.DY = bounce(u.Y+u.Speed*u.DY*frames, u.DY, u.Radius, f.cfg.Height)
	}
}

func bounce(pos, dir, radius, extent float64) (float64, float64) {
	switch {
	case pos-radius < 0:
		return radius, math.Abs(dir)
	case pos+radius > extent:
		return extent - radius, -math.Abs(dir)
	}
	return pos, dir
}

// Activate completes the first uncompleted unit containing (x, y)
// at is the offset from task start recorded on the unit
func (f *Field) Activate(x, y float64, at time.Duration) (int, bool) {
	for i := range f.units {
		u := &f.units[i]
		if u.Completed || !u.Contains(x, y) {
			continue
		}
		u.Completed = true
		u.CompletedAt = at
		f.completed++
		return i, true
	}
	return -1, false
}

// Shuffle re-places every uncompleted unit using the bounded placement
func (f *Field) Shuffle() {
	placed := make([]component.WorkUnit, 0, len(f.units))
	for i := range f.units {
		u := &f.units[i]
		if u.Completed {
			continue
		}
		u.X, u.Y = f.place(u.Radius, placed)
		placed = append(placed, *u)
	}
}

// SetSpeedMultiplier scales mobile unit movement, values <= 0 reset to 1
func (f *Field) SetSpeedMultiplier(m float64) {
	if m <= 0 {
		m = 1
	}
	f.speedMultiplier = m
}

// AllCompleted reports whether every unit has been activated
// An empty field counts as completed
func (f *Field) AllCompleted() bool {
	return f.completed >= len(f.units)
}

// Completed returns the number of activated units
func (f *Field) Completed() int {
	return f.completed
}

// Len returns the number of units
func (f *Field) Len() int {
	return len(f.units)
}

// Fallbacks returns how many units were accepted without meeting the spacing constraint
func (f *Field) Fallbacks() int {
	return f.fallbacks
}

// Units returns a copy of the current units
func (f *Field) Units() []component.WorkUnit {
	out := make([]component.WorkUnit, len(f.units))
	copy(out, f.units)
	return out
}

// Bounds returns the field extent
func (f *Field) Bounds() (width, height float64) {
	return f.cfg.Width, f.cfg.Height
}
