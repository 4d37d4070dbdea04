package metrics

// TaskSummary is the performance snapshot taken when a task finishes
type TaskSummary struct {
	Task                   int     `json:"task"`
	Level                  int     `json:"level"`
	Difficulty             int     `json:"difficulty"`
	Score                  int     `json:"score"`
	TargetsHit             int     `json:"targets_hit"`
	TargetsTotal           int     `json:"targets_total"`
	CompletionPercentage   float64 `json:"completion_percentage"`
	DisruptionsExperienced int     `json:"disruptions_experienced"`
	AverageResponseTime    float64 `json:"average_response_time"`
}

// EmotionalResponse records negative or warning feedback shown to the user
type EmotionalResponse struct {
	Feedback   string  `json:"feedback"`
	Task       int     `json:"task"`
	Level      int     `json:"level"`
	Difficulty int     `json:"difficulty"`
	Time       float64 `json:"time"` // Seconds since session start
}

// PersistenceEntry records whether a task was completed or abandoned
type PersistenceEntry struct {
	Task       int  `json:"task"`
	Level      int  `json:"level"`
	Difficulty int  `json:"difficulty"`
	Abandoned  bool `json:"abandoned"`
}

// AssessmentRecord is the full-session aggregate persisted once per session
type AssessmentRecord struct {
	PerformanceStability []TaskSummary       `json:"performance_stability"`
	RecoveryTimes        []float64           `json:"recovery_times"`
	EmotionalResponses   []EmotionalResponse `json:"emotional_responses"`
	Persistence          []PersistenceEntry  `json:"persistence"`
	TotalTimePlayed      float64             `json:"total_time_played"`

	DisruptionRecoveryRating float64 `json:"disruption_recovery_rating"`
	StabilityRating          float64 `json:"stability_rating"`
	PersistenceRating        float64 `json:"persistence_rating"`
	NeuroticismScore         float64 `json:"neuroticism_score"`

	Timestamp string `json:"timestamp"`
}

// NewAssessmentRecord returns a record with empty, non-nil collections and zero ratings
func NewAssessmentRecord(timestamp string) AssessmentRecord {
	return AssessmentRecord{
		PerformanceStability: []TaskSummary{},
		RecoveryTimes:        []float64{},
		EmotionalResponses:   []EmotionalResponse{},
		Persistence:          []PersistenceEntry{},
		Timestamp:            timestamp,
	}
}

// CompletionPercentages returns the completion percentage of every finished task
func (r *AssessmentRecord) CompletionPercentages() []float64 {
	out := make([]float64, len(r.PerformanceStability))
	for i, s := range r.PerformanceStability {
		out[i] = s.CompletionPercentage
	}
	return out
}

// AbandonedCount returns the number of abandoned persistence entries
func (r *AssessmentRecord) AbandonedCount() int {
	n := 0
	for _, p := range r.Persistence {
		if p.Abandoned {
			n++
		}
	}
	return n
}

// Clone returns a deep copy
func (r *AssessmentRecord) Clone() AssessmentRecord {
	c := *r
	c.PerformanceStability = append([]TaskSummary{}, r.PerformanceStability...)
	c.RecoveryTimes = append([]float64{}, r.RecoveryTimes...)
	c.EmotionalResponses = append([]EmotionalResponse{}, r.EmotionalResponses...)
	c.Persistence = append([]PersistenceEntry{}, r.Persistence...)
	return c
}
