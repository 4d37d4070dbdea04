// Package simulate runs headless sessions on a manual clock with a seeded autopilot
//
// A simulation replays exactly for a given seed and start time: the session,
// its field and timeline, and the autopilot all draw from seeded streams and
// time only advances by whole ticks.
package simulate

import (
	"context"
	"log"
	"time"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/engine"
	"github.com/lixenwraith/composure/metrics"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/session"
	"github.com/lixenwraith/composure/store"
	"github.com/lixenwraith/composure/vmath"
)

// Ticks between context checks
const ctxCheckInterval = 256

// Pilot describes the simulated user
type Pilot struct {
	// ReactionDelay is the base time between clicks, Jitter adds up to that much on top
	ReactionDelay time.Duration
	Jitter        time.Duration

	// MissChance is the per click probability of clicking beside the target
	MissChance float64

	// AbandonChance is the per task probability of giving up at a random point
	AbandonChance float64

	// DisruptionSlowdown multiplies reaction time while a disruption is active
	DisruptionSlowdown float64
}

// DefaultPilot returns a moderately skilled user
func DefaultPilot() Pilot {
	return Pilot{
		ReactionDelay:      600 * time.Millisecond,
		Jitter:             900 * time.Millisecond,
		MissChance:         0.15,
		AbandonChance:      0.1,
		DisruptionSlowdown: 2,
	}
}

// Config controls one simulated session
type Config struct {
	Session      session.Config
	Pilot        Pilot
	TickInterval time.Duration
	// Start is the simulated wall clock at session creation, zero uses now
	Start time.Time
}

// Result is the outcome of a simulation
type Result struct {
	Record metrics.AssessmentRecord
	Ticks  int
	Clicks int
	Misses int
}

// Run plays a whole session and persists it through st, which may be nil
// A cancelled context quits the session, which still persists its record
func Run(ctx context.Context, cfg Config, st store.Store) (Result, error) {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = parameter.TickInterval
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}

	clock := engine.NewManualTimeProvider(cfg.Start)
	s := session.New(cfg.Session, session.Deps{Clock: clock, Store: st})
	ap := newAutopilot(cfg.Pilot, vmath.NewFastRand(cfg.Session.Seed^0x5851f42d4c957f2d))

	log.Printf("simulate: session %s seed %d", s.ID(), cfg.Session.Seed)
	s.Start()

	var res Result
	var ctxErr error
	for !s.Finished() {
		if res.Ticks%ctxCheckInterval == 0 && ctx.Err() != nil {
			ctxErr = ctx.Err()
			s.Quit()
			break
		}
		clock.Advance(cfg.TickInterval)
		s.Tick(cfg.TickInterval)
		res.Ticks++
		ap.act(s, clock.Now())
	}

	res.Clicks, res.Misses = ap.clicks, ap.misses
	res.Record, _ = s.Result()
	if ctxErr != nil {
		return res, ctxErr
	}
	return res, s.Err()
}

type autopilot struct {
	Pilot
	rng *vmath.FastRand

	tasksSeen  int
	started    bool
	nextAction time.Time
	abandonAt  time.Time

	clicks, misses int
}

func newAutopilot(p Pilot, rng *vmath.FastRand) *autopilot {
	return &autopilot{Pilot: p, rng: rng}
}

func (a *autopilot) delay(disrupted bool) time.Duration {
	d := a.ReactionDelay
	if a.Jitter > 0 {
		d += a.rng.Duration(0, a.Jitter)
	}
	if disrupted && a.DisruptionSlowdown > 1 {
		d = time.Duration(float64(d) * a.DisruptionSlowdown)
	}
	return d
}

// act performs at most one input for the current tick
func (a *autopilot) act(s *session.Session, now time.Time) {
	snap := s.Snapshot()
	if snap.State != session.NameRunning {
		return
	}

	if !a.started || snap.TasksFinished != a.tasksSeen {
		a.started = true
		a.tasksSeen = snap.TasksFinished
		a.nextAction = now.Add(a.delay(snap.DisruptionActive))
		a.abandonAt = time.Time{}
		if a.rng.Float64() < a.AbandonChance {
			a.abandonAt = now.Add(a.rng.Duration(0, snap.TimeLeft))
		}
	}

	if !a.abandonAt.IsZero() && !now.Before(a.abandonAt) {
		s.Abandon()
		return
	}
	if now.Before(a.nextAction) {
		return
	}

	for i, u := range snap.Units {
		if u.Completed {
			continue
		}
		a.clicks++
		x, y := u.X, u.Y
		if a.rng.Float64() < a.MissChance {
			if mx, my, ok := a.missPoint(snap.Units, i); ok {
				x, y = mx, my
				a.misses++
			}
		}
		s.Activate(x, y)
		break
	}
	a.nextAction = now.Add(a.delay(snap.DisruptionActive))
}

// missPoint returns a point just outside units[target] that no uncompleted unit contains
// ok is false when every candidate lands on a unit, the click then goes to the target
func (a *autopilot) missPoint(units []component.WorkUnit, target int) (x, y float64, ok bool) {
	u := units[target]
	d := u.Radius + 1
	candidates := [...][2]float64{{d, 0}, {0, d}, {-d, 0}, {0, -d}}

	first := a.rng.Intn(len(candidates))
	for k := range candidates {
		c := candidates[(first+k)%len(candidates)]
		x, y = u.X+c[0], u.Y+c[1]
		if !hitsAny(units, x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

func hitsAny(units []component.WorkUnit, x, y float64) bool {
	for i := range units {
		if !units[i].Completed && units[i].Contains(x, y) {
			return true
		}
	}
	return false
}
