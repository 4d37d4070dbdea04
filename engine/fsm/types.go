package fsm

import "time"

// StateID is a unique identifier for a state
type StateID int

const StateNone StateID = 0

// EventType identifies an external trigger, 0 is reserved for tick evaluation
type EventType int

const EventTick EventType = 0

// Machine is a flat finite state machine runtime
// T is the context type passed to actions and guards (e.g., *session.Session)
type Machine[T any] struct {
	// Graph Data (immutable after Init)
	nodes map[StateID]*Node[T]

	// Runtime State
	activeStateID StateID
	timeInState   time.Duration
}

// Node represents a state
type Node[T any] struct {
	ID   StateID
	Name string

	// Lifecycle Actions
	OnEnter  []ActionFunc[T]
	OnUpdate []ActionFunc[T]
	OnExit   []ActionFunc[T]

	// Transitions in evaluation order
	Transitions []Transition[T]
}

// Transition defines a link between states
type Transition[T any] struct {
	TargetID StateID
	Event    EventType    // EventTick = auto-transition evaluated on Update
	Guard    GuardFunc[T] // nil = Always true
}

// GuardFunc returns true if the transition should occur
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect
type ActionFunc[T any] func(ctx T)
