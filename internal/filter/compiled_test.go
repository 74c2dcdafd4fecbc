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
	"testing"

	"github.com/loomtable/vgrid/grid"
)

type fakeSource struct {
	cols [][]grid.Value
	cnt  []string
}

func (f *fakeSource) RowCount() int    { return len(f.cols) }
func (f *fakeSource) ColumnCount() int { return len(f.cnt) }
func (f *fakeSource) ColumnName(c int) (string, error) {
	return f.cnt[c], nil
}
func (f *fakeSource) ColumnType(c int) (grid.DataType, error) { return grid.TypeString, nil }
func (f *fakeSource) Cell(row, col int) (grid.Value, error)   { return f.cols[row][col], nil }
func (f *fakeSource) Row(row int) ([]grid.Value, error)       { return f.cols[row], nil }
func (f *fakeSource) Metadata() grid.Metadata                 { return grid.Metadata{} }

func statusScoreSource() *fakeSource {
	statuses := []string{"A", "B", "C"}
	src := &fakeSource{cnt: []string{"status", "score"}}
	for i := 0; i < 9; i++ {
		status := statuses[i%3]
		src.cols = append(src.cols, []grid.Value{
			grid.NewValue(status, grid.TypeString),
			grid.NewValue(float64(i), grid.TypeFloat),
		})
	}
	return src
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestApplyColumnFiltersEquals(t *testing.T) {
	src := statusScoreSource()
	e := NewCompiledEngine()

	filters := []grid.ColumnFilter{
		{Column: 0, Logic: grid.LogicAND, Conditions: []grid.Condition{{Op: grid.OpEquals, Value: "A"}}},
	}

	got, err := e.ApplyColumnFilters(src, allIndices(9), filters)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len(got) = %d, want 3", len(got))
	}
}

func TestApplyColumnFiltersBetween(t *testing.T) {
	src := statusScoreSource()
	e := NewCompiledEngine()

	filters := []grid.ColumnFilter{
		{Column: 1, Logic: grid.LogicAND, Conditions: []grid.Condition{{Op: grid.OpBetween, Value: 2.0, High: 5.0}}},
	}

	got, err := e.ApplyColumnFilters(src, allIndices(9), filters)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 { // scores 2,3,4,5
		t.Errorf("len(got) = %d, want 4", len(got))
	}
}

func TestApplyQuickFilter(t *testing.T) {
	// S3: names ["Alice","Bob","Charlie"], quickFilter("li") => rows 0,2.
	src := &fakeSource{cnt: []string{"name"}}
	for _, n := range []string{"Alice", "Bob", "Charlie"} {
		src.cols = append(src.cols, []grid.Value{grid.NewValue(n, grid.TypeString)})
	}

	e := NewCompiledEngine()
	got, err := e.ApplyQuickFilter(src, allIndices(3), grid.QuickFilter{Query: "li"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("ApplyQuickFilter(li) = %v, want [0 2]", got)
	}
}

func TestFilterMonotonicityOfAND(t *testing.T) {
	src := statusScoreSource()
	e := NewCompiledEngine()

	base := []grid.ColumnFilter{
		{Column: 0, Logic: grid.LogicAND, Conditions: []grid.Condition{{Op: grid.OpEquals, Value: "A"}}},
	}
	withMore := []grid.ColumnFilter{
		base[0],
		{Column: 1, Logic: grid.LogicAND, Conditions: []grid.Condition{{Op: grid.OpGreaterThan, Value: 3.0}}},
	}

	baseResult, err := e.ApplyColumnFilters(src, allIndices(9), base)
	if err != nil {
		t.Fatal(err)
	}
	moreResult, err := e.ApplyColumnFilters(src, allIndices(9), withMore)
	if err != nil {
		t.Fatal(err)
	}
	if len(moreResult) > len(baseResult) {
		t.Errorf("adding an AND condition increased result size: %d > %d", len(moreResult), len(baseResult))
	}
}

func TestDetectImpossibleContradictoryEquals(t *testing.T) {
	cf := grid.ColumnFilter{
		Column: 0,
		Logic:  grid.LogicAND,
		Conditions: []grid.Condition{
			{Op: grid.OpEquals, Value: "A"},
			{Op: grid.OpEquals, Value: "B"},
		},
	}
	diags := DetectImpossible(cf)
	if len(diags) == 0 {
		t.Error("expected a diagnostic for contradictory equals conditions")
	}
}

func TestDetectImpossibleRangeInverted(t *testing.T) {
	cf := grid.ColumnFilter{
		Column: 0,
		Logic:  grid.LogicAND,
		Conditions: []grid.Condition{
			{Op: grid.OpGreaterThan, Value: 10.0},
			{Op: grid.OpLessThan, Value: 5.0},
		},
	}
	diags := DetectImpossible(cf)
	if len(diags) == 0 {
		t.Error("expected a diagnostic for x>10 AND x<5")
	}
}

func TestStateMachineFrontendCycle(t *testing.T) {
	sm := NewStateMachine()
	if err := sm.BeginCompile(); err != nil {
		t.Fatal(err)
	}
	if err := sm.BeginFiltering(); err != nil {
		t.Fatal(err)
	}
	if err := sm.Complete(); err != nil {
		t.Fatal(err)
	}
	if sm.Current() != StateIdle {
		t.Errorf("Current() = %s, want Idle", sm.Current())
	}
}

func TestStateMachineLatestWins(t *testing.T) {
	sm := NewStateMachine()
	tok1 := sm.BeginRequest()
	tok2 := sm.BeginRequest() // supersedes tok1

	if sm.ApplyResult(tok1) {
		t.Error("stale response (tok1) should be discarded")
	}
	if !sm.ApplyResult(tok2) {
		t.Error("latest response (tok2) should be accepted")
	}
}

func TestToSQLParameterized(t *testing.T) {
	filters := []grid.ColumnFilter{
		{Column: 0, Logic: grid.LogicAND, Conditions: []grid.Condition{{Op: grid.OpEquals, Value: "A"}}},
	}
	where := ToSQL(filters, func(c int) string { return "status" })
	if len(where.Params) != 1 || where.Params[0] != "A" {
		t.Errorf("Params = %v, want [A]", where.Params)
	}
	if where.Clause == "" {
		t.Error("expected non-empty clause")
	}
}
