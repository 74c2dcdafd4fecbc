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

// Package projection composes filtering and sorting into the visible row
// mapping that the positioner, selection, and editor resolve visual
// indices through. It owns composition order (filter, then sort) and the
// invalidation rules that decide how much of the cached mapping survives
// a given kind of change.
package projection

import (
	"context"
	"sync"

	"github.com/loomtable/vgrid/grid"
	"github.com/loomtable/vgrid/grid/expression"
	"github.com/loomtable/vgrid/internal/filter"
	"github.com/loomtable/vgrid/internal/indexmap"
	"github.com/loomtable/vgrid/internal/sort"
)

// dirty bits describe which stage(s) of the pipeline must recompute on
// the next Recompute call.
type dirty uint8

const (
	dirtyFilter dirty = 1 << iota
	dirtySort
)

// Pipeline composes identity -> filter -> sort into a visible row
// mapping (spec §4.12). Filtering and sorting stay independently
// cacheable: a sort-only change reuses the last filtered set, and a
// filter-only change reuses the last sort comparator against the new
// set.
type Pipeline struct {
	mu sync.RWMutex

	source grid.RowSource

	filters      []grid.ColumnFilter
	quick        grid.QuickFilter
	filterEngine *filter.CompiledEngine

	// legacyEngine and exprFilter carry the teacher's row-oriented
	// Filter/Engine abstraction forward as the root boolean-expression
	// operator path (spec §4.12): a whole-row predicate evaluated after
	// the column filters and quick filter, letting a host express
	// conditions the closed ColumnFilter operator set can't (e.g.
	// cross-column comparisons).
	legacyEngine *filter.Engine
	exprFilter   grid.Filter

	// computed is the optional computed-column layer; when attached,
	// NotifyRowMutated drives its dependency-graph invalidation instead
	// of only dropping the quick-filter cache.
	computed *expression.ExpressionDataSource

	sortMgr *sort.Manager

	baseIDs       []int // full domain: 0..rowCount-1, grown on append
	appendedSince []int // row ids appended since the last full filter pass
	filtered      []int // result of filter+quick over baseIDs
	mapping       *indexmap.IndexMap

	dirty dirty
}

// New creates a Pipeline over source with rowCount initial rows.
func New(source grid.RowSource, rowCount int, bus *grid.Bus) *Pipeline {
	base := make([]int, rowCount)
	for i := range base {
		base[i] = i
	}
	return &Pipeline{
		source:       source,
		filterEngine: filter.NewCompiledEngine(),
		legacyEngine: filter.NewEngine(),
		sortMgr:      sort.NewManager(bus),
		baseIDs:      base,
		dirty:        dirtyFilter | dirtySort,
	}
}

// SortManager exposes the pipeline's owned SortManager so callers can
// wire header-click toggles and backend delegation through it.
func (p *Pipeline) SortManager() *sort.Manager {
	return p.sortMgr
}

// SetFilters installs a new column-filter set (spec: "filter change:
// recompute filter set; sort permutation remains valid but its effective
// domain restricts to the filter set").
func (p *Pipeline) SetFilters(filters []grid.ColumnFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = filters
	p.dirty |= dirtyFilter | dirtySort // domain changed, permutation must re-derive over it
}

// SetQuickFilter installs a new quick-filter query.
func (p *Pipeline) SetQuickFilter(qf grid.QuickFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quick = qf
	p.dirty |= dirtyFilter | dirtySort
}

// SetExpressionFilter installs a root boolean expression evaluated against
// the whole row after column filters and the quick filter narrow the set
// (spec §4.12's regex/root-boolean-expression operator path), using the
// expr-lang-backed ExpressionFilter and the teacher's row-oriented Engine
// to apply it. Pass an empty string to clear it.
func (p *Pipeline) SetExpressionFilter(exprStr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if exprStr == "" {
		p.exprFilter = nil
		p.dirty |= dirtyFilter | dirtySort
		return nil
	}

	f, err := expression.NewExpressionFilter(exprStr)
	if err != nil {
		return err
	}
	p.exprFilter = f
	p.dirty |= dirtyFilter | dirtySort
	return nil
}

// SetComputedColumns attaches ds as the pipeline's computed-column layer.
// ds must already be the pipeline's RowSource (construct it via
// expression.NewExpressionDataSource(baseSource) and pass ds to New) --
// this only wires ds's dependency graph into NotifyRowMutated so a
// mutation on a source column invalidates the computed columns derived
// from it.
func (p *Pipeline) SetComputedColumns(ds *expression.ExpressionDataSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.computed = ds
}

// NotifySortChanged marks the sort stage dirty without touching the
// filter set (spec: "sort change: recompute permutation; filter set
// intact"). Call after mutating the pipeline's SortManager.
func (p *Pipeline) NotifySortChanged() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty |= dirtySort
}

// NotifyRowMutated invalidates the quick-filter cache entry for row and,
// when a computed-column layer is attached, every materialized column
// that depends -- directly or transitively, walked in the dependency
// graph's evaluation order -- on the mutated column; the mapping itself
// stays valid (spec: "data mutation on row r: mapping valid, but the
// row's cached string/derived values invalidate").
func (p *Pipeline) NotifyRowMutated(row, col int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filterEngine.InvalidateQuickFilterCache()

	if p.computed == nil {
		return
	}
	name, err := p.source.ColumnName(col)
	if err != nil {
		return
	}
	p.computed.NotifySourceChanged(name)
}

// NotifyColumnGeometryChanged is a no-op for the mapping: column
// visibility/width changes never affect which rows are visible or their
// order (spec: "column visibility/width: mapping invariant").
func (p *Pipeline) NotifyColumnGeometryChanged() {}

// NotifyRowsAppended extends the domain with newCount freshly-loaded
// rows (infinite scroll). Per spec, new rows are tested against the
// filter incrementally rather than forcing a full re-filter, but the
// sort permutation over the now-larger domain must be recomputed.
func (p *Pipeline) NotifyRowsAppended(newCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	start := len(p.baseIDs)
	for i := 0; i < newCount; i++ {
		p.baseIDs = append(p.baseIDs, start+i)
	}
	p.appendedSince = append(p.appendedSince, rangeOf(start, newCount)...)
	p.dirty |= dirtySort // new rows must enter the permutation
}

// NotifyRowsPruned drops the first n row ids from the domain (infinite
// scroll front-pruning) and forces a full recompute, since both the
// filtered set and the permutation reference absolute ids that shift.
func (p *Pipeline) NotifyRowsPruned(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > len(p.baseIDs) {
		n = len(p.baseIDs)
	}
	p.baseIDs = p.baseIDs[n:]
	p.appendedSince = nil
	p.dirty = dirtyFilter | dirtySort
}

func rangeOf(start, n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = start + i
	}
	return out
}

// Recompute brings the mapping up to date, running only the stages
// marked dirty, and returns any error from the sort stage (e.g. a failed
// backend delegation with no prior permutation to fall back to).
func (p *Pipeline) Recompute(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recomputeLocked(ctx)
}

func (p *Pipeline) recomputeLocked(ctx context.Context) error {
	if p.dirty&dirtyFilter != 0 {
		if err := p.runFilterLocked(); err != nil {
			return err
		}
		p.dirty &^= dirtyFilter
		p.appendedSince = nil
	} else if len(p.appendedSince) > 0 {
		if err := p.runIncrementalFilterLocked(); err != nil {
			return err
		}
		p.appendedSince = nil
	}

	if p.dirty&dirtySort != 0 {
		perm, err := p.sortMgr.Apply(ctx, p.source, p.filtered)
		if err != nil {
			return err
		}
		p.mapping = indexmap.FromPermutation(perm)
		p.dirty &^= dirtySort
	}

	if p.mapping == nil {
		p.mapping = indexmap.FromPermutation(append([]int(nil), p.filtered...))
	}
	return nil
}

func (p *Pipeline) runFilterLocked() error {
	result, err := p.filterEngine.ApplyColumnFilters(p.source, p.baseIDs, p.filters)
	if err != nil {
		return err
	}
	result, err = p.filterEngine.ApplyQuickFilter(p.source, result, p.quick)
	if err != nil {
		return err
	}
	result, err = p.applyExpressionFilterLocked(result)
	if err != nil {
		return err
	}
	p.filtered = result
	return nil
}

// runIncrementalFilterLocked tests only newly appended rows, appending
// survivors to the existing filtered set (spec: "filter incremental -
// test new rows only").
func (p *Pipeline) runIncrementalFilterLocked() error {
	result, err := p.filterEngine.ApplyColumnFilters(p.source, p.appendedSince, p.filters)
	if err != nil {
		return err
	}
	result, err = p.filterEngine.ApplyQuickFilter(p.source, result, p.quick)
	if err != nil {
		return err
	}
	result, err = p.applyExpressionFilterLocked(result)
	if err != nil {
		return err
	}
	p.filtered = append(p.filtered, result...)
	p.dirty |= dirtySort // new survivors must enter the permutation
	return nil
}

func (p *Pipeline) applyExpressionFilterLocked(indices []int) ([]int, error) {
	if p.exprFilter == nil {
		return indices, nil
	}
	return p.legacyEngine.ApplyToIndices(p.source, p.exprFilter, indices)
}

// VisibleRowCount returns the current size of the visible row mapping.
// Callers must Recompute first if they changed filter/sort state.
func (p *Pipeline) VisibleRowCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.mapping == nil {
		return 0
	}
	return p.mapping.Len()
}

// MapVisualToData resolves visual row i to its backing RowId. Returns
// ErrBounds if i is out of range.
func (p *Pipeline) MapVisualToData(i int) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.mapping == nil || i < 0 || i >= p.mapping.Len() {
		return -1, grid.ErrBounds
	}
	return p.mapping.Lookup(i), nil
}
