// Package score reduces session observations into bounded 0-10 ratings
package score

import (
	"github.com/lixenwraith/composure/metrics"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/vmath"
)

// Ratings holds the rounded, clamped sub-scores and their composite
type Ratings struct {
	Stability   float64
	Recovery    float64
	Persistence float64
	Composite   float64
}

// Stability rates consistency of completion percentages
// Empty yields 0, a single sample the neutral midpoint
func Stability(percentages []float64) float64 {
	switch len(percentages) {
	case 0:
		return 0
	case 1:
		return parameter.RatingNeutral
	}
	return bound(parameter.RatingMax - vmath.StdDev(percentages)/10)
}

// Recovery rates mean disruption recovery time in seconds, faster is higher
func Recovery(recoveryTimes []float64) float64 {
	if len(recoveryTimes) == 0 {
		return parameter.RatingNeutral
	}
	return bound(parameter.RatingMax - vmath.Mean(recoveryTimes))
}

// Persistence rates the share of tasks not abandoned
func Persistence(entries []metrics.PersistenceEntry) float64 {
	if len(entries) == 0 {
		return parameter.RatingNeutral
	}
	abandoned := 0
	for _, e := range entries {
		if e.Abandoned {
			abandoned++
		}
	}
	return bound(parameter.RatingMax * (1 - float64(abandoned)/float64(len(entries))))
}

// Composite combines already rounded sub-scores
func Composite(stability, recovery, persistence float64) float64 {
	c := parameter.WeightStability*stability +
		parameter.WeightRecovery*recovery +
		parameter.WeightPersistence*persistence
	return bound(c)
}

// Compute derives all ratings from a record
func Compute(rec *metrics.AssessmentRecord) Ratings {
	s := Stability(rec.CompletionPercentages())
	r := Recovery(rec.RecoveryTimes)
	p := Persistence(rec.Persistence)
	return Ratings{
		Stability:   s,
		Recovery:    r,
		Persistence: p,
		Composite:   Composite(s, r, p),
	}
}

// Apply writes the ratings into the record fields
func (r Ratings) Apply(rec *metrics.AssessmentRecord) {
	rec.StabilityRating = r.Stability
	rec.DisruptionRecoveryRating = r.Recovery
	rec.PersistenceRating = r.Persistence
	rec.NeuroticismScore = r.Composite
}

// bound rounds to one decimal then clamps to the rating range
func bound(v float64) float64 {
	return vmath.Clamp(vmath.Round1(v), parameter.RatingMin, parameter.RatingMax)
}
