package disruption

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/vmath"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// withTimeline installs events, already in due order, as the pending timeline
func withTimeline(s *Scheduler, events ...component.Disruption) {
	s.timeline = events
	s.pending = make([]int, len(events))
	for i := range s.pending {
		s.pending[i] = i
	}
	s.active = -1
}

func TestGenerate_CountAndRanges(t *testing.T) {
	task := parameter.TaskDuration
	for d := 1; d <= parameter.MaxDifficulty; d++ {
		s := New(DefaultConfig(), vmath.NewFastRand(uint64(d)))
		s.Generate(d, task)

		events := s.Events()
		require.Len(t, events, min(2*d, parameter.MaxDisruptions))
		assert.Equal(t, len(events), s.Pending())

		for _, e := range events {
			assert.GreaterOrEqual(t, e.Offset, time.Duration(0.2*float64(task)))
			assert.LessOrEqual(t, e.Offset, time.Duration(0.8*float64(task)))
			assert.GreaterOrEqual(t, e.Duration, 1500*time.Millisecond)
			assert.LessOrEqual(t, e.Duration, 3*time.Second)
			assert.Less(t, e.Kind, component.DisruptionKindCount)
			assert.False(t, e.Active)
		}
	}
}

func TestTick_NothingBeforeWindow(t *testing.T) {
	s := New(DefaultConfig(), vmath.NewFastRand(1))
	s.Generate(3, parameter.TaskDuration)

	out := s.Tick(5*time.Second, epoch.Add(5*time.Second))
	assert.Empty(t, out)
	_, ok := s.Active()
	assert.False(t, ok)
}

// Simulated 60 Hz run over the whole task for many seeds
func TestTick_AtMostOneActive(t *testing.T) {
	task := parameter.TaskDuration
	for seed := uint64(1); seed <= 50; seed++ {
		s := New(DefaultConfig(), vmath.NewFastRand(seed))
		s.Generate(parameter.MaxDifficulty, task)

		active := 0
		started, ended := 0, 0
		for elapsed := time.Duration(0); elapsed <= task; elapsed += parameter.TickInterval {
			for _, tr := range s.Tick(elapsed, epoch.Add(elapsed)) {
				switch tr.Kind {
				case TransitionStarted:
					started++
					active++
				case TransitionEnded:
					ended++
					active--
					assert.GreaterOrEqual(t, tr.Recovery, tr.Disruption.Duration)
				}
				require.LessOrEqual(t, active, 1, "seed %d: more than one active disruption", seed)
				require.GreaterOrEqual(t, active, 0)
			}
		}
		assert.GreaterOrEqual(t, started, ended)
		assert.LessOrEqual(t, started-ended, 1)
	}
}

func TestTick_BlockedEventsFireFIFOWhenSlotFrees(t *testing.T) {
	s := New(DefaultConfig(), vmath.NewFastRand(1))
	withTimeline(s,
		component.Disruption{Kind: component.DisruptionShuffle, Offset: 10 * time.Second, Duration: 2 * time.Second},
		component.Disruption{Kind: component.DisruptionSpeedUp, Offset: 11 * time.Second, Duration: 2 * time.Second},
		component.Disruption{Kind: component.DisruptionTimePressure, Offset: 11500 * time.Millisecond, Duration: 2 * time.Second},
	)

	out := s.Tick(10*time.Second, epoch.Add(10*time.Second))
	require.Len(t, out, 1)
	assert.Equal(t, TransitionStarted, out[0].Kind)
	assert.Equal(t, component.DisruptionShuffle, out[0].Disruption.Kind)

	// Both later events are due but the slot is taken
	assert.Empty(t, s.Tick(11900*time.Millisecond, epoch.Add(11900*time.Millisecond)))
	assert.Equal(t, 2, s.Pending())

	// Expiry and the next activation happen on the same tick
	out = s.Tick(12*time.Second, epoch.Add(12*time.Second))
	require.Len(t, out, 2)
	assert.Equal(t, TransitionEnded, out[0].Kind)
	assert.Equal(t, 2*time.Second, out[0].Recovery)
	assert.False(t, out[0].Disruption.Active)
	assert.Equal(t, TransitionStarted, out[1].Kind)
	assert.Equal(t, component.DisruptionSpeedUp, out[1].Disruption.Kind)
	assert.Equal(t, epoch.Add(12*time.Second), out[1].Disruption.StartedAt)

	out = s.Tick(14*time.Second, epoch.Add(14*time.Second))
	require.Len(t, out, 2)
	assert.Equal(t, component.DisruptionTimePressure, out[1].Disruption.Kind)
	assert.Zero(t, s.Pending())
}

func TestTick_RecoveryMeasuredByWallClock(t *testing.T) {
	s := New(DefaultConfig(), vmath.NewFastRand(1))
	withTimeline(s, component.Disruption{Offset: time.Second, Duration: 2 * time.Second})

	s.Tick(time.Second, epoch)
	// Wall clock drifted ahead of the task timer
	out := s.Tick(2*time.Second, epoch.Add(2300*time.Millisecond))
	require.Len(t, out, 1)
	assert.Equal(t, 2300*time.Millisecond, out[0].Recovery)
}

func TestCancel(t *testing.T) {
	s := New(DefaultConfig(), vmath.NewFastRand(1))
	withTimeline(s, component.Disruption{Offset: 0, Duration: 2 * time.Second})
	s.Tick(0, epoch)

	d, ok := s.Cancel()
	assert.True(t, ok)
	assert.True(t, d.Active)
	_, ok = s.Active()
	assert.False(t, ok)
	assert.Empty(t, s.Tick(10*time.Second, epoch.Add(10*time.Second)))
	assert.False(t, s.Events()[0].Active)
}

func TestEvents_TrackActivation(t *testing.T) {
	s := New(DefaultConfig(), vmath.NewFastRand(1))
	withTimeline(s,
		component.Disruption{Kind: component.DisruptionShuffle, Offset: time.Second, Duration: 2 * time.Second},
		component.Disruption{Kind: component.DisruptionSpeedUp, Offset: 2 * time.Second, Duration: 2 * time.Second},
	)

	s.Tick(time.Second, epoch.Add(time.Second))
	events := s.Events()
	assert.True(t, events[0].Active)
	assert.Equal(t, epoch.Add(time.Second), events[0].StartedAt)
	assert.False(t, events[1].Active)
	assert.True(t, events[1].StartedAt.IsZero())

	// The copy is detached from the scheduler
	events[0].Active = false
	d, ok := s.Active()
	require.True(t, ok)
	assert.True(t, d.Active)

	s.Tick(3*time.Second, epoch.Add(3*time.Second))
	events = s.Events()
	assert.False(t, events[0].Active)
	assert.Equal(t, epoch.Add(time.Second), events[0].StartedAt)
	assert.True(t, events[1].Active)
	assert.Equal(t, epoch.Add(3*time.Second), events[1].StartedAt)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := New(DefaultConfig(), vmath.NewFastRand(99))
	b := New(DefaultConfig(), vmath.NewFastRand(99))
	a.Generate(2, parameter.TaskDuration)
	b.Generate(2, parameter.TaskDuration)
	assert.Equal(t, a.Events(), b.Events())
}
