package fsm

import (
	"fmt"
	"time"
)

// NewMachine creates a new FSM instance
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{
		nodes: make(map[StateID]*Node[T]),
	}
}

// Init enters the initial state, running its OnEnter actions
func (m *Machine[T]) Init(ctx T, initialID StateID) error {
	node, ok := m.nodes[initialID]
	if !ok {
		return fmt.Errorf("initial state ID %d not found", initialID)
	}
	m.activeStateID = initialID
	m.timeInState = 0
	for _, fn := range node.OnEnter {
		fn(ctx)
	}
	return nil
}

// Update advances the FSM by delta time, running OnUpdate and evaluating tick transitions
func (m *Machine[T]) Update(ctx T, dt time.Duration) {
	if m.activeStateID == StateNone {
		return
	}
	m.timeInState += dt

	node := m.nodes[m.activeStateID]
	for _, fn := range node.OnUpdate {
		fn(ctx)
	}

	// OnUpdate may have transitioned through an event
	node = m.nodes[m.activeStateID]
	m.evaluate(ctx, node, EventTick)
}

// HandleEvent routes an external event through the active state
// Returns true if the event triggered a transition
func (m *Machine[T]) HandleEvent(ctx T, ev EventType) bool {
	if m.activeStateID == StateNone || ev == EventTick {
		return false
	}
	return m.evaluate(ctx, m.nodes[m.activeStateID], ev)
}

func (m *Machine[T]) evaluate(ctx T, node *Node[T], ev EventType) bool {
	for _, trans := range node.Transitions {
		if trans.Event != ev {
			continue
		}
		if trans.Guard == nil || trans.Guard(ctx) {
			m.transition(ctx, trans.TargetID)
			return true
		}
	}
	return false
}

// transition performs the state change, exit actions run before enter actions
func (m *Machine[T]) transition(ctx T, targetID StateID) {
	if m.activeStateID == targetID {
		return
	}
	target, ok := m.nodes[targetID]
	if !ok {
		panic(fmt.Sprintf("FSM: Attempted transition to unknown state ID %d", targetID))
	}

	for _, fn := range m.nodes[m.activeStateID].OnExit {
		fn(ctx)
	}

	// State is switched before OnEnter so actions observe the new state
	m.activeStateID = targetID
	m.timeInState = 0

	for _, fn := range target.OnEnter {
		fn(ctx)
	}
}

// Current returns the active StateID
func (m *Machine[T]) Current() StateID {
	return m.activeStateID
}

// CurrentName returns the active state name
func (m *Machine[T]) CurrentName() string {
	if node, ok := m.nodes[m.activeStateID]; ok {
		return node.Name
	}
	return ""
}

// TimeInState returns time spent in the current state
func (m *Machine[T]) TimeInState() time.Duration {
	return m.timeInState
}
