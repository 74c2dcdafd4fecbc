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

package scroll

import "github.com/loomtable/vgrid/grid"

// Scroller is the geometry authority: given row/column extents and
// viewport dimensions, it answers cell-to-pixel and pixel-to-range
// queries. Row/column counts reflect the *effective* (post filter/sort)
// row count, not the backing store size.
type Scroller struct {
	rows *PrefixSum
	cols *PrefixSum

	overscanRows int
	overscanCols int
}

// NewUniform builds a Scroller with uniform row height and column width.
func NewUniform(rowCount int, rowHeight float64, colCount int, colWidth float64, overscanRows, overscanCols int) *Scroller {
	rowExtents := make([]float64, rowCount)
	for i := range rowExtents {
		rowExtents[i] = rowHeight
	}
	colExtents := make([]float64, colCount)
	for i := range colExtents {
		colExtents[i] = colWidth
	}
	return &Scroller{
		rows:         NewPrefixSum(rowExtents),
		cols:         NewPrefixSum(colExtents),
		overscanRows: overscanRows,
		overscanCols: overscanCols,
	}
}

// New builds a Scroller from explicit per-row and per-column extents,
// supporting content-aware row heights and non-uniform column widths.
func New(rowExtents, colExtents []float64, overscanRows, overscanCols int) *Scroller {
	return &Scroller{
		rows:         NewPrefixSum(rowExtents),
		cols:         NewPrefixSum(colExtents),
		overscanRows: overscanRows,
		overscanCols: overscanCols,
	}
}

// TotalWidth returns the sum of all column widths.
func (s *Scroller) TotalWidth() float64 { return s.cols.Total() }

// TotalHeight returns the sum of all row heights.
func (s *Scroller) TotalHeight() float64 { return s.rows.Total() }

// CellPosition returns the pixel rectangle (x, y, w, h) of cell (row, col).
func (s *Scroller) CellPosition(row, col int) (x, y, w, h float64) {
	return s.cols.Offset(col), s.rows.Offset(row), s.cols.Extent(col), s.rows.Extent(row)
}

// SetRowHeight updates row i's height in O(log n), triggering a column
// prefix-sum-equivalent recomputation scoped to that single row (spec:
// "width changes trigger re-computation ... in O(V)" applies symmetrically
// to row-height changes here).
func (s *Scroller) SetRowHeight(row int, height float64) {
	s.rows.Update(row, height)
}

// SetColWidth updates column i's width in O(log n).
func (s *Scroller) SetColWidth(col int, width float64) {
	s.cols.Update(col, width)
}

// VisibleRange finds the rows/cols intersecting the viewport rectangle
// given by (scrollTop, scrollLeft, viewportWidth, viewportHeight), pads
// with overscan, and clamps to [0, rowCount) x [0, colCount).
func (s *Scroller) VisibleRange(scrollTop, scrollLeft, viewportWidth, viewportHeight float64) grid.VisibleRange {
	rowCount := s.rows.Len()
	colCount := s.cols.Len()

	var startRow, endRow, startCol, endCol int
	if rowCount == 0 {
		startRow, endRow = 0, 0
	} else {
		startRow = s.rows.IndexAtOffset(scrollTop)
		endRow = s.rows.IndexAtOffset(scrollTop+viewportHeight) + 1
	}
	if colCount == 0 {
		startCol, endCol = 0, 0
	} else {
		startCol = s.cols.IndexAtOffset(scrollLeft)
		endCol = s.cols.IndexAtOffset(scrollLeft+viewportWidth) + 1
	}

	startRow -= s.overscanRows
	endRow += s.overscanRows
	startCol -= s.overscanCols
	endCol += s.overscanCols

	return grid.VisibleRange{
		StartRow: clampInt(startRow, 0, rowCount),
		EndRow:   clampInt(endRow, 0, rowCount),
		StartCol: clampInt(startCol, 0, colCount),
		EndCol:   clampInt(endCol, 0, colCount),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
