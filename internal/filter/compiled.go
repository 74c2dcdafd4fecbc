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
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/loomtable/vgrid/grid"
	"github.com/loomtable/vgrid/internal/auxindex"
)

// ColumnIndex is the optional auxiliary index set for one column, used as
// a pre-pass before the real predicate runs (spec §4.10). Either field may
// be nil.
type ColumnIndex struct {
	Bloom  *auxindex.BloomFilter
	Suffix *auxindex.SuffixArray
}

// CompiledEngine evaluates grid.ColumnFilter/QuickFilter state against a
// RowSource, using the closed operator set from operators.go and the
// optional per-column auxiliary indexes for short-circuiting. It
// generalizes internal/filter.Engine (the teacher's Filter-interface
// based evaluator) to the spec's richer ColumnFilter/QuickFilter/operator
// model while keeping the teacher's stateless-Engine, Apply-style shape.
type CompiledEngine struct {
	compiler *Compiler
	indexes  map[int]ColumnIndex // column -> aux indexes, host-built and supplied

	quickCache    map[int]string // row -> lowercased concatenation, keyed by row id
	quickColsUsed []int
}

// NewCompiledEngine creates an engine with no auxiliary indexes attached.
// Attach them via SetColumnIndex once built (index building is the host's
// or the projection pipeline's responsibility, not this engine's).
func NewCompiledEngine() *CompiledEngine {
	return &CompiledEngine{
		compiler: NewCompiler(),
		indexes:  make(map[int]ColumnIndex),
	}
}

// SetColumnIndex attaches auxiliary indexes for column.
func (e *CompiledEngine) SetColumnIndex(column int, idx ColumnIndex) {
	e.indexes[column] = idx
}

// ApplyColumnFilters evaluates filters (AND across columns, per-column
// Logic within) against every row in indices, returning the subset that
// passes.
func (e *CompiledEngine) ApplyColumnFilters(source grid.RowSource, indices []int, filters []grid.ColumnFilter) ([]int, error) {
	if len(filters) == 0 {
		result := make([]int, len(indices))
		copy(result, indices)
		return result, nil
	}

	compiled := make([][]conditionEval, len(filters))
	for i, cf := range filters {
		for _, diag := range DetectImpossible(cf) {
			log.Warn().Int("column", diag.Column).Str("reason", diag.Message).Msg("filter: impossible condition group")
		}

		idx := e.indexes[cf.Column]
		evals := make([]conditionEval, len(cf.Conditions))
		for j, cond := range cf.Conditions {
			p, err := e.compiler.Compile(cond)
			if err != nil {
				return nil, err
			}
			evals[j] = newConditionEval(p, idx.Suffix, cond)
		}
		compiled[i] = evals
	}

	result := make([]int, 0, len(indices))
	for _, row := range indices {
		pass, err := e.rowPasses(source, row, filters, compiled)
		if err != nil {
			return nil, err
		}
		if pass {
			result = append(result, row)
		}
	}
	return result, nil
}

func (e *CompiledEngine) rowPasses(source grid.RowSource, row int, filters []grid.ColumnFilter, compiled [][]conditionEval) (bool, error) {
	for i, cf := range filters {
		// Bloom pre-pass: if every condition's operand is known absent,
		// the whole column filter can be rejected without materializing
		// the cell or running the real predicate. Restricted to the
		// membership operators a whole-value bloom can actually answer
		// (spec §4.10, §8.8 no-false-negative).
		if idx, ok := e.indexes[cf.Column]; ok && idx.Bloom != nil && cf.Logic == grid.LogicAND {
			if allConditionsBloomReject(idx.Bloom, cf.Conditions) {
				return false, nil
			}
		}

		// Conditions with a suffix-array fast path never need the cell
		// materialized; only fetch it if some condition still needs it.
		var cell grid.Value
		cellLoaded := false
		loadCell := func() (grid.Value, error) {
			if !cellLoaded {
				c, err := source.Cell(row, cf.Column)
				if err != nil {
					return grid.Value{}, err
				}
				cell = c
				cellLoaded = true
			}
			return cell, nil
		}

		passed, err := evalConditionsForRow(row, loadCell, compiled[i], cf.Logic)
		if err != nil {
			return false, err
		}
		if !passed {
			return false, nil // columns combine by AND (spec default)
		}
	}
	return true, nil
}

// allConditionsBloomReject reports whether every condition is a membership
// test (equals/in) whose operand is provably absent from the column's
// bloom filter. A bloom is built over whole cell values, so only
// membership operators are sound to reject on; contains/startsWith/regex
// and the rest must always fall through to the real predicate, since a
// substring or pattern match can succeed even when the full value was
// never inserted (spec §8.8: no false negatives).
func allConditionsBloomReject(bloom *auxindex.BloomFilter, conds []grid.Condition) bool {
	for _, c := range conds {
		switch c.Op {
		case grid.OpEquals:
			s, ok := c.Value.(string)
			if !ok {
				return false
			}
			if bloom.Contains(s) {
				return false
			}
		case grid.OpIn:
			values := toStringSlice(c.Value)
			if values == nil {
				return false
			}
			for _, s := range values {
				if bloom.Contains(s) {
					return false
				}
			}
		default:
			return false // bloom only short-circuits membership-style ops
		}
	}
	return len(conds) > 0
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, len(vv))
		for i, it := range vv {
			out[i] = fmt.Sprintf("%v", it)
		}
		return out
	case string:
		return []string{vv}
	default:
		return nil
	}
}

// conditionEval pairs a compiled Predicate with an optional precomputed
// row-membership fast path, built from a column's SuffixArray when one is
// attached (spec §4.10: contains delegates to the O(m log n) suffix
// search rather than a per-cell strings.Contains scan).
type conditionEval struct {
	pred   Predicate
	rowSet map[int]struct{} // non-nil: use this instead of pred
	negate bool             // rowSet semantics are inverted (not-contains)
}

// newConditionEval wires cond's condition to suffix when the column carries
// a SuffixArray and the operator is contains/not-contains with a string
// operand; otherwise it falls back to the compiled predicate unchanged.
func newConditionEval(pred Predicate, suffix *auxindex.SuffixArray, cond grid.Condition) conditionEval {
	if suffix == nil {
		return conditionEval{pred: pred}
	}
	switch cond.Op {
	case grid.OpContains, grid.OpNotContains:
		pattern, ok := cond.Value.(string)
		if !ok {
			return conditionEval{pred: pred}
		}
		rows := suffix.Search(pattern)
		set := make(map[int]struct{}, len(rows))
		for _, r := range rows {
			set[r] = struct{}{}
		}
		return conditionEval{pred: pred, rowSet: set, negate: cond.Op == grid.OpNotContains}
	default:
		return conditionEval{pred: pred}
	}
}

func (c conditionEval) test(row int, cell grid.Value) bool {
	if c.rowSet != nil {
		_, member := c.rowSet[row]
		if c.negate {
			return !member
		}
		return member
	}
	return c.pred(cell)
}

func evalConditionsForRow(row int, loadCell func() (grid.Value, error), evals []conditionEval, logic grid.LogicOp) (bool, error) {
	if len(evals) == 0 {
		return true, nil
	}
	if logic == grid.LogicOR {
		for _, e := range evals {
			if e.rowSet != nil {
				if e.test(row, grid.Value{}) {
					return true, nil
				}
				continue
			}
			cell, err := loadCell()
			if err != nil {
				return false, err
			}
			if e.test(row, cell) {
				return true, nil
			}
		}
		return false, nil
	}
	for _, e := range evals {
		if e.rowSet != nil {
			if !e.test(row, grid.Value{}) {
				return false, nil
			}
			continue
		}
		cell, err := loadCell()
		if err != nil {
			return false, err
		}
		if !e.test(row, cell) {
			return false, nil
		}
	}
	return true, nil
}

// ApplyQuickFilter runs after column filters (spec §4.10): a
// case-insensitive substring test over a per-row lowercased concatenation
// of the named columns, cached across calls until the column set changes.
func (e *CompiledEngine) ApplyQuickFilter(source grid.RowSource, indices []int, qf grid.QuickFilter) ([]int, error) {
	if qf.Query == "" {
		result := make([]int, len(indices))
		copy(result, indices)
		return result, nil
	}

	cols := qf.Columns
	if len(cols) == 0 {
		cols = make([]int, source.ColumnCount())
		for i := range cols {
			cols[i] = i
		}
	}

	if !sameInts(cols, e.quickColsUsed) {
		e.quickCache = make(map[int]string)
		e.quickColsUsed = cols
	}
	if e.quickCache == nil {
		e.quickCache = make(map[int]string)
	}

	query := strings.ToLower(qf.Query)
	result := make([]int, 0, len(indices))

	for _, row := range indices {
		concat, ok := e.quickCache[row]
		if !ok {
			var b strings.Builder
			for _, col := range cols {
				cell, err := source.Cell(row, col)
				if err != nil {
					return nil, err
				}
				b.WriteString(strings.ToLower(cell.Formatted))
				b.WriteByte(' ')
			}
			concat = b.String()
			e.quickCache[row] = concat
		}
		if strings.Contains(concat, query) {
			result = append(result, row)
		}
	}

	return result, nil
}

// InvalidateQuickFilterCache drops the per-row concatenation cache, e.g.
// after an edit mutates underlying data.
func (e *CompiledEngine) InvalidateQuickFilterCache() {
	e.quickCache = nil
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
