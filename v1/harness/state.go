package harness

import (
	"fmt"
	"sync"
)

// State is a step of a round trip.
type State int

const (
	Idle State = iota
	TopicReady
	SchemasRegistered
	Producing
	Consuming
	Verified
	TornDown
)

var stateNames = [...]string{
	Idle:              "Idle",
	TopicReady:        "TopicReady",
	SchemasRegistered: "SchemasRegistered",
	Producing:         "Producing",
	Consuming:         "Consuming",
	Verified:          "Verified",
	TornDown:          "TornDown",
}

// String returns the state name.
func (s State) String() string {
	if s < Idle || s > TornDown {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Lifecycle enforces the order Idle → TopicReady → SchemasRegistered →
// Producing → Consuming → Verified → TornDown. Every state may also move
// straight to TornDown; TornDown is terminal.
type Lifecycle struct {
	mu    sync.Mutex
	state State
}

// NewLifecycle returns a lifecycle in Idle.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: Idle}
}

// newLifecycleAt starts a lifecycle past the shared setup states.
func newLifecycleAt(s State) *Lifecycle {
	return &Lifecycle{state: s}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Advance moves to next or fails with ErrInvalidTransition.
func (l *Lifecycle) Advance(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == TornDown || (next != l.state+1 && next != TornDown) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.state, next)
	}
	l.state = next
	return nil
}
