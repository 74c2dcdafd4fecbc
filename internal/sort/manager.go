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

package sort

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/loomtable/vgrid/grid"
)

// BackendRequest is issued to the host's onSortRequest callback when the
// manager resolves to backend mode. The host returns the already-sorted
// row indices (or an error, which the manager reports as a BackendError
// event and falls back to the previous permutation).
type BackendRequest func(ctx context.Context, specs []grid.ColumnSort) ([]int, error)

// Manager layers the click-to-toggle protocol, frontend/backend mode
// resolution, and sort:error event emission on top of the stateless
// Engine (spec §4.11). A header click cycles a column through
// none -> asc -> desc -> none; clicking a different column without a
// modifier replaces the sort set, matching the teacher's single
// OnHeaderClick(col) callback generalized to a multi-column spec.
type Manager struct {
	mu       sync.Mutex
	engine   *Engine
	bus      *grid.Bus
	specs    []grid.ColumnSort
	mode     grid.SortMode
	onSort   BackendRequest
	lastGood []int // last successfully applied permutation, for backend error fallback
}

// NewManager creates a Manager in SortModeAuto with no active sort.
func NewManager(bus *grid.Bus) *Manager {
	return &Manager{
		engine: NewEngine(),
		bus:    bus,
		mode:   grid.SortModeAuto,
	}
}

// SetMode sets the sort resolution mode (frontend/backend/auto).
func (m *Manager) SetMode(mode grid.SortMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// SetBackendRequest attaches the onSortRequest delegate. A nil delegate
// forces effective mode to frontend regardless of SetMode.
func (m *Manager) SetBackendRequest(fn BackendRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSort = fn
}

// effectiveMode resolves SortModeAuto: backend iff a delegate is attached.
func (m *Manager) effectiveMode() grid.SortMode {
	switch m.mode {
	case grid.SortModeBackend:
		if m.onSort != nil {
			return grid.SortModeBackend
		}
		return grid.SortModeFrontend
	case grid.SortModeFrontend:
		return grid.SortModeFrontend
	default: // auto
		if m.onSort != nil {
			return grid.SortModeBackend
		}
		return grid.SortModeFrontend
	}
}

// ToggleColumn advances column through none -> asc -> desc -> none
// (spec §4.11). If extend is false the new state replaces any existing
// sort on other columns; if true, column's entry is appended or updated
// in place, preserving the precedence of remaining columns (multi-column
// sort via shift-click, in the teacher's header-click idiom).
func (m *Manager) ToggleColumn(column int, extend bool) []grid.ColumnSort {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := cloneSpecs(m.specs)
	next := nextDirection(currentDirection(m.specs, column))

	if !extend {
		if next == grid.SortNone {
			m.specs = nil
		} else {
			m.specs = []grid.ColumnSort{{Column: column, Direction: next}}
		}
	} else {
		m.specs = upsertColumn(m.specs, column, next)
	}

	m.publishChange(prev)
	return cloneSpecs(m.specs)
}

// SetSpecs replaces the active sort set directly (e.g. restoring a saved
// view) and emits sort:change.
func (m *Manager) SetSpecs(specs []grid.ColumnSort) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := cloneSpecs(m.specs)
	m.specs = cloneSpecs(specs)
	m.publishChange(prev)
}

// Specs returns a copy of the active sort set, primary key first.
func (m *Manager) Specs() []grid.ColumnSort {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSpecs(m.specs)
}

func (m *Manager) publishChange(prev []grid.ColumnSort) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(grid.Event{
		Channel: grid.ChannelSort,
		Kind:    "change",
		Payload: grid.SortChanged{State: cloneSpecs(m.specs), Previous: prev},
	})
}

// Apply resolves the effective mode and returns the sorted indices. In
// frontend mode it runs the local Engine and emits sort:error for any
// comparator failure (treating the offending pair as equal, never
// aborting the whole sort). In backend mode it delegates to onSortRequest
// and, on failure, emits a BackendError and returns the last known-good
// permutation rather than an inconsistent one.
func (m *Manager) Apply(ctx context.Context, source grid.RowSource, indices []int) ([]int, error) {
	m.mu.Lock()
	specs := cloneSpecs(m.specs)
	mode := m.effectiveMode()
	onSort := m.onSort
	m.mu.Unlock()

	if len(specs) == 0 {
		result := make([]int, len(indices))
		copy(result, indices)
		return result, nil
	}

	if mode == grid.SortModeBackend {
		result, err := onSort(ctx, specs)
		if err != nil {
			m.publishBackendError(err)
			m.mu.Lock()
			fallback := m.lastGood
			m.mu.Unlock()
			if fallback != nil {
				out := make([]int, len(fallback))
				copy(out, fallback)
				return out, nil
			}
			return nil, fmt.Errorf("%w: onSortRequest failed: %v", grid.ErrBackend, err)
		}
		m.mu.Lock()
		m.lastGood = result
		m.mu.Unlock()
		return result, nil
	}

	engineSpecs := make([]SortSpec, len(specs))
	for i, s := range specs {
		colType := grid.TypeString
		if source != nil {
			if t, err := source.ColumnType(s.Column); err == nil {
				colType = t
			}
		}
		engineSpecs[i] = SortSpec{Column: s.Column, Direction: s.Direction, DataType: colType}
	}

	result, err := m.sortWithErrorReporting(source, indices, engineSpecs)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.lastGood = result
	m.mu.Unlock()
	return result, nil
}

// sortWithErrorReporting wraps Engine.MultiSort, detecting rows whose
// cell access fails and reporting them individually via sort:error before
// delegating the comparison itself to the stateless engine (whose
// MultiSort treats a pair with a failed cell read as equal).
func (m *Manager) sortWithErrorReporting(source grid.RowSource, indices []int, specs []SortSpec) ([]int, error) {
	if source != nil {
		for _, row := range indices {
			for _, spec := range specs {
				if _, err := source.Cell(row, spec.Column); err != nil {
					m.publishSortError(spec.Column, row, row, err)
				}
			}
		}
	}
	return m.engine.MultiSort(source, indices, specs)
}

func (m *Manager) publishSortError(column, rowA, rowB int, err error) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(grid.Event{
		Channel: grid.ChannelSort,
		Kind:    "error",
		Payload: grid.SortError{Column: column, RowA: rowA, RowB: rowB, Err: err},
	})
}

func (m *Manager) publishBackendError(err error) {
	log.Error().Err(err).Msg("sort: onSortRequest failed, restoring last-applied permutation")
	if m.bus == nil {
		return
	}
	m.bus.Publish(grid.Event{
		Channel: grid.ChannelBackend,
		Kind:    "error",
		Payload: grid.BackendError{Operation: "sort", Err: err},
	})
}

func currentDirection(specs []grid.ColumnSort, column int) grid.SortDirection {
	for _, s := range specs {
		if s.Column == column {
			return s.Direction
		}
	}
	return grid.SortNone
}

// nextDirection implements the none -> asc -> desc -> none cycle (S1).
func nextDirection(d grid.SortDirection) grid.SortDirection {
	switch d {
	case grid.SortNone:
		return grid.SortAscending
	case grid.SortAscending:
		return grid.SortDescending
	default:
		return grid.SortNone
	}
}

func upsertColumn(specs []grid.ColumnSort, column int, dir grid.SortDirection) []grid.ColumnSort {
	out := make([]grid.ColumnSort, 0, len(specs)+1)
	found := false
	for _, s := range specs {
		if s.Column == column {
			found = true
			if dir != grid.SortNone {
				out = append(out, grid.ColumnSort{Column: column, Direction: dir})
			}
			continue
		}
		out = append(out, s)
	}
	if !found && dir != grid.SortNone {
		out = append(out, grid.ColumnSort{Column: column, Direction: dir})
	}
	return out
}

func cloneSpecs(specs []grid.ColumnSort) []grid.ColumnSort {
	if specs == nil {
		return nil
	}
	out := make([]grid.ColumnSort, len(specs))
	copy(out, specs)
	return out
}
