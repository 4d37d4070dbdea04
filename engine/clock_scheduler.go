package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/composure/core"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/status"
)

// Target is the single-owner state driven by the scheduler
// All methods are called from the scheduler goroutine only
type Target interface {
	Tick(dt time.Duration)
	Activate(x, y float64)
	Abandon()
	Quit()
	Finished() bool
}

// CommandKind identifies an input command
type CommandKind uint8

const (
	CommandActivate CommandKind = iota
	CommandAbandon
	CommandQuit
)

// Command is an input event serialized into the owner goroutine
type Command struct {
	Kind CommandKind
	X, Y float64
}

// ClockScheduler runs the target on a fixed tick and applies commands between ticks
// The target is confined to the scheduler goroutine, no locking is needed inside it
type ClockScheduler struct {
	target Target
	clock  TimeProvider

	tickInterval time.Duration
	lastTickTime time.Time

	commands chan Command
	onUpdate func()

	tickCount atomic.Uint64
	running   atomic.Bool

	// Cached status pointers, nil until Instrument
	statCommands *atomic.Int64
	statDropped  *atomic.Int64
	statTickMs   *status.AtomicFloat
	statTickMax  *status.AtomicFloat

	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}
}

// NewClockScheduler creates a scheduler for target with the given tick interval
// onUpdate, if non-nil, runs on the scheduler goroutine after every tick and command
func NewClockScheduler(target Target, clock TimeProvider, tickInterval time.Duration, onUpdate func()) *ClockScheduler {
	if tickInterval <= 0 {
		tickInterval = parameter.TickInterval
	}
	return &ClockScheduler{
		target:       target,
		clock:        clock,
		tickInterval: tickInterval,
		commands:     make(chan Command, parameter.CommandQueueSize),
		onUpdate:     onUpdate,
		done:         make(chan struct{}),
	}
}

// Instrument publishes loop counters into reg, call before Start or Run
func (cs *ClockScheduler) Instrument(reg *status.Registry) {
	cs.statCommands = reg.Ints.Get("engine.commands")
	cs.statDropped = reg.Ints.Get("engine.dropped")
	cs.statTickMs = reg.Floats.Get("engine.tick_ms")
	cs.statTickMax = reg.Floats.Get("engine.tick_ms_max")
}

// Submit queues a command without blocking, returns false if the queue is full or the loop ended
func (cs *ClockScheduler) Submit(cmd Command) bool {
	select {
	case <-cs.done:
		return false
	default:
	}
	select {
	case cs.commands <- cmd:
		return true
	default:
		if cs.statDropped != nil {
			cs.statDropped.Add(1)
		}
		return false
	}
}

// Activate queues an activation at field position (x, y)
func (cs *ClockScheduler) Activate(x, y float64) bool {
	return cs.Submit(Command{Kind: CommandActivate, X: x, Y: y})
}

// Abandon queues abandonment of the current task
func (cs *ClockScheduler) Abandon() bool {
	return cs.Submit(Command{Kind: CommandAbandon})
}

// Quit queues whole-session cancellation
func (cs *ClockScheduler) Quit() bool {
	return cs.Submit(Command{Kind: CommandQuit})
}

// Start launches the loop in its own goroutine
func (cs *ClockScheduler) Start(ctx context.Context) {
	if !cs.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cs.cancel = context.WithCancel(ctx)
	core.Go(func() {
		_ = cs.run(ctx)
	})
}

// Stop cancels a loop launched by Start and waits for it to finish
// The target is quit on the way out unless it already finished
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		if cs.cancel == nil {
			return
		}
		cs.cancel()
		<-cs.done
	})
}

// Done is closed once the loop has returned
func (cs *ClockScheduler) Done() <-chan struct{} {
	return cs.done
}

// Run executes the loop on the calling goroutine until the target finishes or ctx ends
// Context cancellation quits the target before returning
func (cs *ClockScheduler) Run(ctx context.Context) error {
	if !cs.running.CompareAndSwap(false, true) {
		return nil
	}
	return cs.run(ctx)
}

// TickCount returns the number of processed ticks
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

func (cs *ClockScheduler) run(ctx context.Context) error {
	defer close(cs.done)

	ticker := time.NewTicker(cs.tickInterval)
	defer ticker.Stop()

	cs.lastTickTime = cs.clock.Now()
	cs.update()

	for {
		select {
		case <-ctx.Done():
			cs.target.Quit()
			cs.update()
			return ctx.Err()

		case cmd := <-cs.commands:
			cs.apply(cmd)

		case <-ticker.C:
			now := cs.clock.Now()
			dt := now.Sub(cs.lastTickTime)
			cs.lastTickTime = now
			cs.target.Tick(dt)
			cs.tickCount.Add(1)
			if cs.statTickMs != nil {
				ms := float64(dt) / float64(time.Millisecond)
				cs.statTickMs.Set(ms)
				cs.statTickMax.Max(ms)
			}
			cs.update()
		}

		if cs.target.Finished() {
			return nil
		}
	}
}

func (cs *ClockScheduler) apply(cmd Command) {
	if cs.statCommands != nil {
		cs.statCommands.Add(1)
	}
	switch cmd.Kind {
	case CommandActivate:
		cs.target.Activate(cmd.X, cmd.Y)
	case CommandAbandon:
		cs.target.Abandon()
	case CommandQuit:
		cs.target.Quit()
	}
	cs.update()
}

func (cs *ClockScheduler) update() {
	if cs.onUpdate != nil {
		cs.onUpdate()
	}
}
