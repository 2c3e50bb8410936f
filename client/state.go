// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import "sync/atomic"

// State represents the subscription lifecycle state.
type State uint32

// Subscription states. A closed subscription may be connected again.
const (
	StateIdle State = iota
	StateConnected
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stateManager handles atomic state transitions.
type stateManager struct {
	state uint32
}

func newStateManager() *stateManager {
	return &stateManager{state: uint32(StateIdle)}
}

// get returns the current state.
func (sm *stateManager) get() State {
	return State(atomic.LoadUint32(&sm.state))
}

// set unconditionally sets the state.
func (sm *stateManager) set(s State) {
	atomic.StoreUint32(&sm.state, uint32(s))
}

// transition attempts to transition from expected to new state.
// Returns true if successful.
func (sm *stateManager) transition(from, to State) bool {
	return atomic.CompareAndSwapUint32(&sm.state, uint32(from), uint32(to))
}

// transitionFrom attempts to transition from any of the expected states.
// Returns true if successful.
func (sm *stateManager) transitionFrom(to State, from ...State) bool {
	for _, f := range from {
		if sm.transition(f, to) {
			return true
		}
	}
	return false
}

// isConnected returns true if the subscription is connected.
func (sm *stateManager) isConnected() bool {
	return sm.get() == StateConnected
}
