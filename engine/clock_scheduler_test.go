package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/composure/status"
)

// recordingTarget captures calls; guarded because tests read from another goroutine
type recordingTarget struct {
	mu        sync.Mutex
	ticks     int
	totalDt   time.Duration
	activates [][2]float64
	abandons  int
	quits     int
	finished  bool
	order     []string
}

func (r *recordingTarget) Tick(dt time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
	r.totalDt += dt
	r.order = append(r.order, "tick")
}

func (r *recordingTarget) Activate(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activates = append(r.activates, [2]float64{x, y})
	r.order = append(r.order, "activate")
}

func (r *recordingTarget) Abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandons++
	r.order = append(r.order, "abandon")
}

func (r *recordingTarget) Quit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.quits++
	r.finished = true
}

func (r *recordingTarget) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func TestClockScheduler_CommandsAppliedInOrder(t *testing.T) {
	target := &recordingTarget{}
	cs := NewClockScheduler(target, NewMonotonicTimeProvider(), time.Millisecond, nil)

	cs.Activate(1, 2)
	cs.Abandon()
	cs.Activate(3, 4)
	cs.Quit()

	if err := cs.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	target.mu.Lock()
	defer target.mu.Unlock()
	if len(target.activates) != 2 || target.activates[1] != [2]float64{3, 4} {
		t.Errorf("Unexpected activations: %v", target.activates)
	}
	if target.abandons != 1 {
		t.Errorf("Expected 1 abandon, got %d", target.abandons)
	}
	if target.quits != 1 {
		t.Errorf("Expected 1 quit, got %d", target.quits)
	}

	var cmds []string
	for _, o := range target.order {
		if o != "tick" {
			cmds = append(cmds, o)
		}
	}
	want := []string{"activate", "abandon", "activate"}
	for i := range want {
		if i >= len(cmds) || cmds[i] != want[i] {
			t.Fatalf("Expected command order %v, got %v", want, cmds)
		}
	}

	if cs.Submit(Command{Kind: CommandAbandon}) {
		t.Error("Submit after loop end should fail")
	}
}

func TestClockScheduler_TicksWithMeasuredDelta(t *testing.T) {
	target := &recordingTarget{}
	updates := 0
	cs := NewClockScheduler(target, NewMonotonicTimeProvider(), 2*time.Millisecond, func() { updates++ })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := cs.Run(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Expected deadline error, got %v", err)
	}

	target.mu.Lock()
	defer target.mu.Unlock()
	if target.ticks == 0 || cs.TickCount() != uint64(target.ticks) {
		t.Errorf("Tick count mismatch: target=%d scheduler=%d", target.ticks, cs.TickCount())
	}
	if target.totalDt <= 0 || target.totalDt > 200*time.Millisecond {
		t.Errorf("Unexpected accumulated dt %v", target.totalDt)
	}
	if target.quits != 1 {
		t.Errorf("Cancellation must quit the target once, got %d", target.quits)
	}
	if updates < target.ticks {
		t.Errorf("onUpdate should run after every tick: updates=%d ticks=%d", updates, target.ticks)
	}
}

func TestClockScheduler_StartStop(t *testing.T) {
	target := &recordingTarget{}
	cs := NewClockScheduler(target, NewMonotonicTimeProvider(), time.Millisecond, nil)

	cs.Start(context.Background())
	cs.Start(context.Background()) // no-op
	time.Sleep(10 * time.Millisecond)
	cs.Stop()
	cs.Stop() // idempotent

	select {
	case <-cs.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
	if !target.Finished() {
		t.Error("Stop should quit the target")
	}
}

func TestClockScheduler_SubmitQueueFull(t *testing.T) {
	target := &recordingTarget{}
	cs := NewClockScheduler(target, NewMonotonicTimeProvider(), time.Millisecond, nil)

	accepted := 0
	for i := 0; i < 1000; i++ {
		if cs.Activate(0, 0) {
			accepted++
		}
	}
	if accepted == 0 || accepted == 1000 {
		t.Errorf("Expected bounded queue, accepted %d", accepted)
	}
}

func TestClockScheduler_Instrument(t *testing.T) {
	target := &recordingTarget{}
	reg := status.NewRegistry()
	cs := NewClockScheduler(target, NewMonotonicTimeProvider(), time.Millisecond, nil)
	cs.Instrument(reg)

	for i := 0; i < 1000; i++ {
		cs.Activate(0, 0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = cs.Run(ctx)

	applied := reg.Ints.Get("engine.commands").Load()
	dropped := reg.Ints.Get("engine.dropped").Load()
	if applied == 0 || dropped == 0 {
		t.Errorf("Expected applied and dropped commands, got %d and %d", applied, dropped)
	}
	if applied+dropped != 1000 {
		t.Errorf("Expected 1000 submissions accounted for, got %d", applied+dropped)
	}
	if reg.Floats.Get("engine.tick_ms_max").Get() < reg.Floats.Get("engine.tick_ms").Get() {
		t.Error("Max tick duration below the last tick duration")
	}
}
