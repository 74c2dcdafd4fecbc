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

// Package indexmap provides IndexMap, a permutation over backing row
// indices used by the sort engine to express "visual row i is backing
// row P[i]" without materializing a second copy of the data.
package indexmap

import "sort"

// IndexMap is a permutation P of length N with P[i] in [0,N) and all
// distinct. It is identity at creation and mutated in place by Permute.
// An IndexMap is not safe for concurrent use; callers serialize access the
// same way the sort engine does for the rest of the projection pipeline.
type IndexMap struct {
	p       []int
	inverse []int // lazily built; nil means stale
}

// New creates an identity IndexMap of length n: P[i] = i.
func New(n int) *IndexMap {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &IndexMap{p: p}
}

// FromPermutation wraps an existing permutation without copying. The
// caller must not mutate p afterward except through the returned IndexMap.
func FromPermutation(p []int) *IndexMap {
	return &IndexMap{p: p}
}

// Len returns N.
func (m *IndexMap) Len() int {
	return len(m.p)
}

// Lookup returns the backing RowId for visual index i.
func (m *IndexMap) Lookup(i int) int {
	return m.p[i]
}

// Slice returns the permutation as a plain slice. The returned slice
// aliases internal storage and must be treated as read-only.
func (m *IndexMap) Slice() []int {
	return m.p
}

// InverseLookup returns the visual index for backing row id, building the
// inverse map lazily on first call after the last mutation.
func (m *IndexMap) InverseLookup(rowID int) int {
	if m.inverse == nil {
		m.buildInverse()
	}
	if rowID < 0 || rowID >= len(m.inverse) {
		return -1
	}
	return m.inverse[rowID]
}

func (m *IndexMap) buildInverse() {
	inv := make([]int, len(m.p))
	for visual, backing := range m.p {
		inv[backing] = visual
	}
	m.inverse = inv
}

// Comparator compares the backing rows a and b (not visual indices) and
// reports whether a should sort before b (cmp < 0), equal (0), or after
// (cmp > 0).
type Comparator func(a, b int) int

// Permute sorts P in place using cmp, via a stable sort so that ties
// retain their relative insertion order (spec: multi-column sort
// observability depends on this). Invalidates any previously built
// inverse map.
func (m *IndexMap) Permute(cmp Comparator) {
	sort.SliceStable(m.p, func(i, j int) bool {
		return cmp(m.p[i], m.p[j]) < 0
	})
	m.inverse = nil
}

// Reset restores identity ordering.
func (m *IndexMap) Reset() {
	for i := range m.p {
		m.p[i] = i
	}
	m.inverse = nil
}

// Clone returns an independent copy of the map.
func (m *IndexMap) Clone() *IndexMap {
	p := make([]int, len(m.p))
	copy(p, m.p)
	return &IndexMap{p: p}
}
