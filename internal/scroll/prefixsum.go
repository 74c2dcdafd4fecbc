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

// Package scroll provides the virtual scroller's geometry authority:
// prefix-sum backed row/column extents, scroll position tracking, and
// visible-range derivation from scroll offsets plus overscan.
package scroll

// PrefixSum is a Fenwick (binary indexed) tree over per-item extents
// (row heights or column widths), giving O(log n) cumulative-offset
// lookup and O(log n) update when one item's extent changes — the
// structure spec §4.5 calls for to support variable row height without
// an O(n) rebuild on every resize.
type PrefixSum struct {
	tree   []float64 // 1-indexed Fenwick tree
	values []float64 // raw per-item extents, 0-indexed, kept for Update deltas
}

// NewPrefixSum builds a PrefixSum over the given per-item extents.
func NewPrefixSum(extents []float64) *PrefixSum {
	p := &PrefixSum{
		tree:   make([]float64, len(extents)+1),
		values: make([]float64, len(extents)),
	}
	for i, v := range extents {
		p.add(i, v)
		p.values[i] = v
	}
	return p
}

func (p *PrefixSum) add(i int, delta float64) {
	for i++; i <= len(p.values); i += i & (-i) {
		p.tree[i] += delta
	}
}

// prefixTotal returns the sum of extents[0:i) (exclusive).
func (p *PrefixSum) prefixTotal(i int) float64 {
	var sum float64
	for ; i > 0; i -= i & (-i) {
		sum += p.tree[i]
	}
	return sum
}

// Offset returns the cumulative extent before item i — its starting
// coordinate.
func (p *PrefixSum) Offset(i int) float64 {
	if i <= 0 {
		return 0
	}
	if i > len(p.values) {
		i = len(p.values)
	}
	return p.prefixTotal(i)
}

// Total returns the sum of all extents.
func (p *PrefixSum) Total() float64 {
	return p.prefixTotal(len(p.values))
}

// Extent returns item i's own extent.
func (p *PrefixSum) Extent(i int) float64 {
	if i < 0 || i >= len(p.values) {
		return 0
	}
	return p.values[i]
}

// Update changes item i's extent in O(log n).
func (p *PrefixSum) Update(i int, newExtent float64) {
	if i < 0 || i >= len(p.values) {
		return
	}
	delta := newExtent - p.values[i]
	p.values[i] = newExtent
	p.add(i, delta)
}

// IndexAtOffset returns the largest index i such that Offset(i) <= target,
// i.e. the item whose span contains target. O(log n) via binary search
// over cumulative prefix sums.
func (p *PrefixSum) IndexAtOffset(target float64) int {
	n := len(p.values)
	if n == 0 {
		return 0
	}
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.Offset(mid) <= target {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Len returns the number of items.
func (p *PrefixSum) Len() int {
	return len(p.values)
}
