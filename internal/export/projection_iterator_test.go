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

package export

import (
	"context"
	"testing"

	"github.com/loomtable/vgrid/grid"
	"github.com/loomtable/vgrid/internal/projection"
)

func TestNewProjectionIteratorReflectsFilterAndSort(t *testing.T) {
	source, err := createTestData()
	if err != nil {
		t.Fatal(err)
	}

	p := projection.New(source, source.RowCount(), nil)
	p.SetFilters([]grid.ColumnFilter{
		{Column: 2, Logic: grid.LogicAND, Conditions: []grid.Condition{{Op: grid.OpNotEquals, Value: "Designer"}}},
	})
	p.SortManager().ToggleColumn(0, false) // ascending by Name
	p.NotifySortChanged()

	it, err := NewProjectionIterator(context.Background(), source, p)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for it.Next() {
		row, err := it.Row()
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, row[0].Formatted)
	}

	// Bob (Designer) is filtered out; remaining two sort ascending by name.
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Charlie" {
		t.Errorf("names = %v, want [Alice Charlie]", names)
	}
}
