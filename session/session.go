// Package session drives task progression for one assessment session
//
// A Session owns the current task, its field and disruption timeline, and the
// metrics recorder. It is confined to one goroutine: the engine clock scheduler
// delivers ticks and input commands serially.
package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/disruption"
	"github.com/lixenwraith/composure/engine"
	"github.com/lixenwraith/composure/engine/fsm"
	"github.com/lixenwraith/composure/field"
	"github.com/lixenwraith/composure/metrics"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/score"
	"github.com/lixenwraith/composure/store"
	"github.com/lixenwraith/composure/vmath"
)

// Session states
const (
	StateIdle fsm.StateID = iota + 1
	StateRunning
	StateFinished
)

// State names as reported in snapshots
const (
	NameIdle     = "idle"
	NameRunning  = "running"
	NameFinished = "finished"
)

// Session events
const (
	EventStart fsm.EventType = iota + 1
	EventExhausted
	EventQuit
)

// Feedback texts
const (
	feedbackHit       = "Nice!"
	feedbackRecovered = "Back on track"
	feedbackCleared   = "Task complete!"
	feedbackTimeout   = "Time's up"
	feedbackAbandoned = "Task abandoned"
)

// CueSink receives feedback categories, e.g. to play a sound
type CueSink interface {
	Cue(category component.FeedbackCategory)
}

// Deps are the collaborators injected into a session
type Deps struct {
	Clock engine.TimeProvider
	Store store.Store // nil skips persistence
	Cues  CueSink     // nil is silent
}

// Task is the current timed round
type Task struct {
	Level      int
	Index      int
	Difficulty int
	StartTime  time.Time
	Budget     time.Duration
	Score      int

	closed bool
}

// Session is the single explicit aggregate of session state
type Session struct {
	id  string
	cfg Config

	clock engine.TimeProvider
	store store.Store
	cues  CueSink

	machine   *fsm.Machine[*Session]
	field     *field.Field
	scheduler *disruption.Scheduler
	recorder  *metrics.Recorder

	level      int
	taskIndex  int
	difficulty int
	task       *Task
	finished   int

	feedback   component.Feedback
	feedbackAt time.Time

	result     *metrics.AssessmentRecord
	persistErr error
}

// New creates an idle session
func New(cfg Config, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = engine.NewMonotonicTimeProvider()
	}

	// Field and scheduler draw from independent streams so one does not shift the other
	s := &Session{
		id:         uuid.New().String(),
		cfg:        cfg,
		clock:      deps.Clock,
		store:      deps.Store,
		cues:       deps.Cues,
		field:      field.New(cfg.Field, vmath.NewFastRand(cfg.Seed)),
		scheduler:  disruption.New(cfg.Disruption, vmath.NewFastRand(cfg.Seed^0x9e3779b97f4a7c15)),
		recorder:   metrics.NewRecorder(deps.Clock.Now()),
		level:      1,
		taskIndex:  1,
		difficulty: 1,
	}
	s.machine = s.buildMachine()
	if err := s.machine.Init(s, StateIdle); err != nil {
		panic(err)
	}
	return s
}

func (s *Session) buildMachine() *fsm.Machine[*Session] {
	m := fsm.NewMachine[*Session]()
	m.AddState(StateIdle, NameIdle)
	m.AddState(StateRunning, NameRunning)
	m.AddState(StateFinished, NameFinished)

	m.AddTransition(StateIdle, fsm.Transition[*Session]{TargetID: StateRunning, Event: EventStart})
	m.AddTransition(StateIdle, fsm.Transition[*Session]{TargetID: StateFinished, Event: EventQuit})
	m.AddTransition(StateRunning, fsm.Transition[*Session]{TargetID: StateFinished, Event: EventExhausted})
	m.AddTransition(StateRunning, fsm.Transition[*Session]{TargetID: StateFinished, Event: EventQuit})

	m.OnEnter(StateRunning, func(s *Session) { s.startTask() })
	m.OnUpdate(StateRunning, func(s *Session) { s.checkTask() })
	m.OnEnter(StateFinished, func(s *Session) { s.finalize() })
	return m
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// State returns the current state
func (s *Session) State() fsm.StateID {
	return s.machine.Current()
}

// Start begins the first task, no-op unless idle
func (s *Session) Start() {
	s.machine.HandleEvent(s, EventStart)
}

// Finished reports whether the session reached its terminal state
func (s *Session) Finished() bool {
	return s.machine.Current() == StateFinished
}

// Tick advances the field, then the disruption timeline, then the completion checks
func (s *Session) Tick(dt time.Duration) {
	if s.machine.Current() != StateRunning {
		return
	}
	if t := s.task; t != nil && !t.closed {
		s.field.Advance(dt)
		now := s.clock.Now()
		for _, tr := range s.scheduler.Tick(now.Sub(t.StartTime), now) {
			s.handleDisruption(tr, now)
		}
	}
	s.machine.Update(s, dt)
}

// Activate resolves a hit at field position (x, y) on the current task
func (s *Session) Activate(x, y float64) {
	t := s.currentTask()
	if t == nil {
		return
	}
	now := s.clock.Now()
	at := now.Sub(t.StartTime)
	if _, ok := s.field.Activate(x, y, at); !ok {
		return
	}
	t.Score++
	s.recorder.RecordResponse(at)
	s.emit(component.Feedback{Text: feedbackHit, Category: component.FeedbackPositive}, now)
}

// Abandon gives up the current task, the session continues with the next one
func (s *Session) Abandon() {
	t := s.currentTask()
	if t == nil {
		return
	}
	now := s.clock.Now()
	s.recorder.SetAbandoned(true)
	s.emit(component.Feedback{Text: feedbackAbandoned, Category: component.FeedbackNegative}, now)
	s.finishTask(now)
}

// Quit ends the whole session, persisting it once
func (s *Session) Quit() {
	s.machine.HandleEvent(s, EventQuit)
}

// Close is Quit for exit hooks
func (s *Session) Close() error {
	s.Quit()
	return s.persistErr
}

// Result returns the finalized record once the session finished
func (s *Session) Result() (metrics.AssessmentRecord, bool) {
	if s.result == nil {
		return metrics.AssessmentRecord{}, false
	}
	return s.result.Clone(), true
}

// Err returns the persistence error, if any
func (s *Session) Err() error {
	return s.persistErr
}

// Record returns the live record, valid until the next call into the session
func (s *Session) Record() *metrics.AssessmentRecord {
	return s.recorder.Record()
}

func (s *Session) currentTask() *Task {
	if s.machine.Current() != StateRunning || s.task == nil || s.task.closed {
		return nil
	}
	return s.task
}

// startTask regenerates the field and timeline for the current counters
func (s *Session) startTask() {
	now := s.clock.Now()
	s.task = &Task{
		Level:      s.level,
		Index:      s.taskIndex,
		Difficulty: s.difficulty,
		StartTime:  now,
		Budget:     s.cfg.TaskDuration,
	}

	s.field.Generate(s.difficulty, s.cfg.BaseTargetCount)
	s.scheduler.Generate(s.difficulty, s.cfg.TaskDuration)
	s.recorder.BeginTask(s.taskKey())

	log.Printf("session %s: task L%d T%d D%d started, %d units (%d placement fallbacks), %d disruptions",
		s.shortID(), s.level, s.taskIndex, s.difficulty, s.field.Len(), s.field.Fallbacks(), s.scheduler.Pending())
}

// checkTask finishes the task on timeout or full completion
func (s *Session) checkTask() {
	t := s.currentTask()
	if t == nil {
		return
	}
	now := s.clock.Now()
	timedOut := t.Budget-now.Sub(t.StartTime) <= 0
	if !timedOut && !s.field.AllCompleted() {
		return
	}

	s.recorder.SetAbandoned(false)
	if s.field.AllCompleted() {
		s.emit(component.Feedback{Text: feedbackCleared, Category: component.FeedbackPositive}, now)
	} else {
		s.emit(component.Feedback{Text: feedbackTimeout, Category: component.FeedbackPositive}, now)
	}
	s.finishTask(now)
}

// finishTask closes the task once, snapshots it and advances the counters
func (s *Session) finishTask(now time.Time) {
	t := s.task
	if t == nil || t.closed {
		return
	}
	t.closed = true

	if _, ok := s.scheduler.Cancel(); ok {
		s.clearEffects()
	}

	summary := s.recorder.FinishTask(t.Score, s.field.Len())
	s.finished++
	log.Printf("session %s: task L%d T%d D%d finished, %d/%d (%.0f%%), %d disruptions, avg response %.2fs",
		s.shortID(), t.Level, t.Index, t.Difficulty, summary.Score, summary.TargetsTotal,
		summary.CompletionPercentage, summary.DisruptionsExperienced, summary.AverageResponseTime)

	if s.advance() {
		s.machine.HandleEvent(s, EventExhausted)
		return
	}
	s.startTask()
}

// advance steps task, level and difficulty with wrap-around
// Returns true once difficulty overflows
func (s *Session) advance() bool {
	s.taskIndex++
	if s.taskIndex > s.cfg.TasksPerLevel {
		s.taskIndex = 1
		s.level++
	}
	if s.level > s.cfg.TasksPerLevel {
		s.level = 1
		s.difficulty++
	}
	return s.difficulty > s.cfg.MaxDifficulty
}

func (s *Session) handleDisruption(tr disruption.Transition, now time.Time) {
	switch tr.Kind {
	case disruption.TransitionStarted:
		switch tr.Disruption.Kind {
		case component.DisruptionSpeedUp:
			s.field.SetSpeedMultiplier(parameter.SpeedUpMultiplier)
		case component.DisruptionShuffle:
			s.field.Shuffle()
		}
		log.Printf("session %s: disruption %s started for %v", s.shortID(), tr.Disruption.Kind, tr.Disruption.Duration)
		s.emit(component.Feedback{Text: tr.Disruption.Kind.Message(), Category: component.FeedbackWarning}, now)

	case disruption.TransitionEnded:
		s.clearEffects()
		s.recorder.RecordRecovery(tr.Recovery)
		log.Printf("session %s: disruption %s ended, recovery %v", s.shortID(), tr.Disruption.Kind, tr.Recovery)
		s.emit(component.Feedback{Text: feedbackRecovered, Category: component.FeedbackPositive}, now)
	}
}

func (s *Session) clearEffects() {
	s.field.SetSpeedMultiplier(1)
}

// emit surfaces feedback, recording warning and negative feedback as emotional responses
func (s *Session) emit(fb component.Feedback, now time.Time) {
	s.feedback = fb
	s.feedbackAt = now
	if fb.Category.Recorded() {
		s.recorder.RecordEmotion(fb.Text, now)
	}
	if s.cues != nil {
		s.cues.Cue(fb.Category)
	}
}

// finalize computes ratings and persists the record, runs once on entering Finished
func (s *Session) finalize() {
	now := s.clock.Now()
	if t := s.task; t != nil && !t.closed {
		// Quit mid-task, the task keeps its optimistic persistence entry but gets no summary
		t.closed = true
		s.scheduler.Cancel()
		s.clearEffects()
	}

	rec := s.recorder.Finalize(now)
	ratings := score.Compute(&rec)
	ratings.Apply(&rec)
	s.result = &rec

	log.Printf("session %s: finished after %d tasks, stability %.1f recovery %.1f persistence %.1f composite %.1f",
		s.shortID(), s.finished, ratings.Stability, ratings.Recovery, ratings.Persistence, ratings.Composite)

	if s.store == nil {
		return
	}
	if err := s.store.Append(context.Background(), rec); err != nil {
		s.persistErr = err
		log.Printf("session %s: persisting assessment failed: %v", s.shortID(), err)
	}
}

func (s *Session) taskKey() metrics.TaskKey {
	return metrics.TaskKey{Level: s.level, Task: s.taskIndex, Difficulty: s.difficulty}
}

func (s *Session) shortID() string {
	return s.id[:8]
}
