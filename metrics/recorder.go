// Package metrics accumulates raw per-task and per-disruption observations
// into the session assessment record
package metrics

import (
	"time"

	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/vmath"
)

// TaskKey identifies a task within the session
type TaskKey struct {
	Level      int
	Task       int
	Difficulty int
}

// Recorder owns the session record while the session runs
// Not safe for concurrent use, confined to the session loop
type Recorder struct {
	record  AssessmentRecord
	started time.Time

	// Current task bookkeeping
	current         TaskKey
	entryIndex      int
	responses       []float64
	recoveriesAtTop int
	inTask          bool
}

// NewRecorder creates a recorder for a session starting at start
func NewRecorder(start time.Time) *Recorder {
	return &Recorder{
		record:     NewAssessmentRecord(start.Format(parameter.TimestampLayout)),
		started:    start,
		entryIndex: -1,
	}
}

// BeginTask opens a task and appends its optimistic persistence entry
func (r *Recorder) BeginTask(key TaskKey) {
	r.current = key
	r.responses = r.responses[:0]
	r.recoveriesAtTop = len(r.record.RecoveryTimes)
	r.inTask = true

	r.record.Persistence = append(r.record.Persistence, PersistenceEntry{
		Task:       key.Task,
		Level:      key.Level,
		Difficulty: key.Difficulty,
		Abandoned:  false,
	})
	r.entryIndex = len(r.record.Persistence) - 1
}

// RecordResponse adds a response time sample for the current task
func (r *Recorder) RecordResponse(d time.Duration) {
	if !r.inTask {
		return
	}
	r.responses = append(r.responses, d.Seconds())
}

// RecordRecovery adds a disruption recovery time sample
func (r *Recorder) RecordRecovery(d time.Duration) {
	r.record.RecoveryTimes = append(r.record.RecoveryTimes, d.Seconds())
}

// SetAbandoned flips the current task's persistence entry
func (r *Recorder) SetAbandoned(abandoned bool) {
	if r.entryIndex < 0 {
		return
	}
	r.record.Persistence[r.entryIndex].Abandoned = abandoned
}

// RecordEmotion appends an emotional response for the current task
func (r *Recorder) RecordEmotion(feedback string, now time.Time) {
	r.record.EmotionalResponses = append(r.record.EmotionalResponses, EmotionalResponse{
		Feedback:   feedback,
		Task:       r.current.Task,
		Level:      r.current.Level,
		Difficulty: r.current.Difficulty,
		Time:       r.Elapsed(now).Seconds(),
	})
}

// FinishTask closes the current task and appends its summary
func (r *Recorder) FinishTask(score, total int) TaskSummary {
	var completion float64
	if total > 0 {
		completion = 100 * float64(score) / float64(total)
	}

	summary := TaskSummary{
		Task:                   r.current.Task,
		Level:                  r.current.Level,
		Difficulty:             r.current.Difficulty,
		Score:                  score,
		TargetsHit:             score,
		TargetsTotal:           total,
		CompletionPercentage:   completion,
		DisruptionsExperienced: len(r.record.RecoveryTimes) - r.recoveriesAtTop,
		AverageResponseTime:    vmath.Mean(r.responses),
	}
	r.record.PerformanceStability = append(r.record.PerformanceStability, summary)
	r.inTask = false
	return summary
}

// Finalize stamps the total play time and returns a copy of the record
func (r *Recorder) Finalize(end time.Time) AssessmentRecord {
	r.record.TotalTimePlayed = r.Elapsed(end).Seconds()
	return r.record.Clone()
}

// Record returns the live record, callers must not retain it across ticks
func (r *Recorder) Record() *AssessmentRecord {
	return &r.record
}

// Elapsed returns the session time at now
func (r *Recorder) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.started)
}
