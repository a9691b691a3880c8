// Package statetest provides helpers for testing code that dispatches actions.
package statetest

import (
	"sync"

	"harbor/internal/state"
)

// Recorder is a Dispatcher that keeps every action it receives.
type Recorder struct {
	mu      sync.Mutex
	actions []state.Action
}

// Dispatch records a.
func (r *Recorder) Dispatch(a state.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = append(r.actions, a)
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []state.Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]state.Action(nil), r.actions...)
}

// Types returns the recorded action types in dispatch order.
func (r *Recorder) Types() []state.ActionType {
	actions := r.Actions()
	types := make([]state.ActionType, len(actions))
	for i, a := range actions {
		types[i] = a.Type()
	}

	return types
}

// Last returns the most recent action, or nil.
func (r *Recorder) Last() state.Action {
	actions := r.Actions()
	if len(actions) == 0 {
		return nil
	}

	return actions[len(actions)-1]
}

// Reset drops the recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = nil
}
