package session

import (
	"time"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/score"
)

// Snapshot is a read-only copy of the session for presentation
// Safe to hand to another goroutine, it shares no memory with the session
type Snapshot struct {
	State string

	Level      int
	Task       int
	Difficulty int
	Score      int
	Total      int
	TimeLeft   time.Duration

	FieldWidth  float64
	FieldHeight float64
	Units       []component.WorkUnit

	Disruption       component.Disruption
	DisruptionActive bool

	Feedback     component.Feedback
	FeedbackLive bool

	TasksFinished int
	Ratings       score.Ratings
}

// Snapshot captures the current state
func (s *Session) Snapshot() Snapshot {
	now := s.clock.Now()
	snap := Snapshot{
		State:         s.machine.CurrentName(),
		Level:         s.level,
		Task:          s.taskIndex,
		Difficulty:    s.difficulty,
		TasksFinished: s.finished,
	}
	snap.FieldWidth, snap.FieldHeight = s.field.Bounds()

	if t := s.currentTask(); t != nil {
		snap.Level, snap.Task, snap.Difficulty = t.Level, t.Index, t.Difficulty
		snap.Score = t.Score
		snap.Total = s.field.Len()
		snap.TimeLeft = max(0, t.Budget-now.Sub(t.StartTime))
		snap.Units = s.field.Units()
		snap.Disruption, snap.DisruptionActive = s.scheduler.Active()
	}

	if !s.feedbackAt.IsZero() && now.Sub(s.feedbackAt) < parameter.FeedbackDisplayDuration {
		snap.Feedback = s.feedback
		snap.FeedbackLive = true
	}

	if s.result != nil {
		snap.Ratings = score.Ratings{
			Stability:   s.result.StabilityRating,
			Recovery:    s.result.DisruptionRecoveryRating,
			Persistence: s.result.PersistenceRating,
			Composite:   s.result.NeuroticismScore,
		}
	}
	return snap
}
