// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filter

import (
	"fmt"
	"sync"

	"github.com/loomtable/vgrid/grid"
)

// State is a FilterEngine lifecycle state. Frontend evaluation cycles
// Idle -> Compiling -> Filtering -> Idle; backend evaluation cycles
// Idle -> RequestPending -> ApplyingResult -> Idle (spec §4.10).
type State string

const (
	StateIdle           State = "Idle"
	StateCompiling      State = "Compiling"
	StateFiltering      State = "Filtering"
	StateRequestPending State = "RequestPending"
	StateApplyingResult State = "ApplyingResult"
)

// StateMachine tracks FilterEngine lifecycle state and enforces the
// "latest wins" rule for backend requests: a new request issued while in
// RequestPending supersedes the prior one by incrementing a token; a
// response whose token doesn't match the current token is stale and must
// be discarded by the caller.
type StateMachine struct {
	mu    sync.Mutex
	state State
	token int64
}

// NewStateMachine creates a machine starting in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateIdle}
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state
}

// BeginCompile transitions Idle -> Compiling. Returns an error wrapping
// grid.ErrState if not currently Idle.
func (sm *StateMachine) BeginCompile() error {
	return sm.transition(StateIdle, StateCompiling)
}

// BeginFiltering transitions Compiling -> Filtering.
func (sm *StateMachine) BeginFiltering() error {
	return sm.transition(StateCompiling, StateFiltering)
}

// Complete transitions Filtering -> Idle or ApplyingResult -> Idle.
func (sm *StateMachine) Complete() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.state != StateFiltering && sm.state != StateApplyingResult {
		return fmt.Errorf("%w: cannot complete from state %s", grid.ErrState, sm.state)
	}
	sm.state = StateIdle
	return nil
}

// BeginRequest transitions into RequestPending, issuing a new token that
// supersedes any request already in flight. Returns the token the caller
// must present to ApplyResult.
func (sm *StateMachine) BeginRequest() int64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.token++
	sm.state = StateRequestPending
	return sm.token
}

// ApplyResult transitions RequestPending -> ApplyingResult if token
// matches the most recently issued token; returns false (discard) if a
// newer request has since superseded it.
func (sm *StateMachine) ApplyResult(token int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if token != sm.token {
		return false // stale response, discarded
	}
	sm.state = StateApplyingResult
	return true
}

func (sm *StateMachine) transition(from, to State) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.state != from {
		return fmt.Errorf("%w: cannot transition to %s from %s (expected %s)", grid.ErrState, to, sm.state, from)
	}
	sm.state = to
	return nil
}
