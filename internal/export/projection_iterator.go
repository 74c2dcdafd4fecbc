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

	"github.com/loomtable/vgrid/grid"
	"github.com/loomtable/vgrid/internal/projection"
)

// NewProjectionIterator builds a RowIterator over source restricted to
// pipeline's current visible row mapping, so an export reflects whatever
// filter and sort state the grid has applied rather than the full
// backing store. pipeline.Recompute is called first to ensure the
// mapping is current.
func NewProjectionIterator(ctx context.Context, source grid.RowSource, pipeline *projection.Pipeline) (*ModelIterator, error) {
	if err := pipeline.Recompute(ctx); err != nil {
		return nil, err
	}

	n := pipeline.VisibleRowCount()
	visibleRows := make([]int, n)
	for i := 0; i < n; i++ {
		id, err := pipeline.MapVisualToData(i)
		if err != nil {
			return nil, err
		}
		visibleRows[i] = id
	}

	return NewModelIterator(source, visibleRows)
}
