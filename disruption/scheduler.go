// Package disruption schedules the per-task timeline of disruption events
//
// Pending events wait in a FIFO queue ordered by due offset, generation order
// breaking ties. A single active slot holds the running event. An event whose
// offset passes while the slot is occupied stays queued and fires on the first
// tick the slot is free, ahead of any event that became due after it.
package disruption

import (
	"slices"
	"time"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/vmath"
)

// Config holds the timeline generation tunables
type Config struct {
	MaxDisruptions int
	PerDifficulty  int
	WindowStart    float64 // Fraction of task duration
	WindowEnd      float64
	MinDuration    time.Duration
	MaxDuration    time.Duration
}

// DefaultConfig returns the gameplay defaults
func DefaultConfig() Config {
	return Config{
		MaxDisruptions: parameter.MaxDisruptions,
		PerDifficulty:  parameter.DisruptionsPerDifficulty,
		WindowStart:    parameter.DisruptionWindowStart,
		WindowEnd:      parameter.DisruptionWindowEnd,
		MinDuration:    parameter.DisruptionMinDuration,
		MaxDuration:    parameter.DisruptionMaxDuration,
	}
}

// TransitionKind distinguishes activation from expiry
type TransitionKind uint8

const (
	TransitionStarted TransitionKind = iota
	TransitionEnded
)

// Transition reports a state change of the active slot during a tick
type Transition struct {
	Kind       TransitionKind
	Disruption component.Disruption
	// Recovery is the measured active time, set on TransitionEnded
	Recovery time.Duration
}

// Scheduler owns the disruption timeline of the current task
// Not safe for concurrent use, confined to the session loop
type Scheduler struct {
	cfg Config
	rng *vmath.FastRand

	timeline []component.Disruption // Generation order
	pending  []int                  // Timeline indexes, FIFO by due offset
	active   int                    // Timeline index, -1 when the slot is free
}

// New creates an empty scheduler drawing all randomness from rng
func New(cfg Config, rng *vmath.FastRand) *Scheduler {
	return &Scheduler{cfg: cfg, rng: rng, active: -1}
}

// EventCount returns the number of events generated for a difficulty
func (s *Scheduler) EventCount(difficulty int) int {
	return max(0, min(s.cfg.PerDifficulty*difficulty, s.cfg.MaxDisruptions))
}

// Generate replaces the timeline with a fresh batch for the difficulty
func (s *Scheduler) Generate(difficulty int, taskDuration time.Duration) {
	count := s.EventCount(difficulty)
	lo := time.Duration(float64(taskDuration) * s.cfg.WindowStart)
	hi := time.Duration(float64(taskDuration) * s.cfg.WindowEnd)

	s.timeline = make([]component.Disruption, 0, count)
	for i := 0; i < count; i++ {
		s.timeline = append(s.timeline, component.Disruption{
			Offset:   s.rng.Duration(lo, hi),
			Kind:     component.DisruptionKind(s.rng.Intn(int(component.DisruptionKindCount))),
			Duration: s.rng.Duration(s.cfg.MinDuration, s.cfg.MaxDuration),
		})
	}

	s.pending = make([]int, count)
	for i := range s.pending {
		s.pending[i] = i
	}
	slices.SortStableFunc(s.pending, func(a, b int) int {
		switch oa, ob := s.timeline[a].Offset, s.timeline[b].Offset; {
		case oa < ob:
			return -1
		case oa > ob:
			return 1
		}
		return 0
	})
	s.active = -1
}

// Tick expires the active event if its duration elapsed, then activates the queue head if due
// elapsed is the task-relative time, now the monotonic wall clock reading
func (s *Scheduler) Tick(elapsed time.Duration, now time.Time) []Transition {
	var out []Transition

	if s.active >= 0 {
		d := &s.timeline[s.active]
		ran := now.Sub(d.StartedAt)
		if ran >= d.Duration {
			d.Active = false
			s.active = -1
			out = append(out, Transition{Kind: TransitionEnded, Disruption: *d, Recovery: ran})
		}
	}

	if s.active < 0 && len(s.pending) > 0 && s.timeline[s.pending[0]].Offset <= elapsed {
		s.active = s.pending[0]
		s.pending = s.pending[1:]
		d := &s.timeline[s.active]
		d.Active = true
		d.StartedAt = now
		out = append(out, Transition{Kind: TransitionStarted, Disruption: *d})
	}

	return out
}

// Active returns the running event, if any
func (s *Scheduler) Active() (component.Disruption, bool) {
	if s.active < 0 {
		return component.Disruption{}, false
	}
	return s.timeline[s.active], true
}

// Cancel clears the active slot without reporting a recovery
func (s *Scheduler) Cancel() (component.Disruption, bool) {
	if s.active < 0 {
		return component.Disruption{}, false
	}
	d := s.timeline[s.active]
	s.timeline[s.active].Active = false
	s.active = -1
	return d, true
}

// Pending returns the number of events not yet activated
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Events returns a copy of the timeline in generation order
// Started events keep their StartedAt, only the running one reports Active
func (s *Scheduler) Events() []component.Disruption {
	return slices.Clone(s.timeline)
}
