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

package auxindex

import (
	"math"

	"github.com/willf/bloom"
)

// BloomFilter gives the filter engine a cheap negative-lookup short
// circuit before it runs the real predicate over a column: if the filter
// says a value is absent, the column is skipped entirely for that row.
// The bit-array/hash mechanics are delegated to willf/bloom, which
// grafana-tempo (elsewhere in the retrieval pack) already depends on
// directly for the same kind of membership pre-filter over large corpora.
type BloomFilter struct {
	filter *bloom.BloomFilter
	n      uint
}

// NewBloomFilter sizes a filter for n expected insertions at the given
// false-positive rate, using the standard optimal-size/optimal-k
// formulas: m = -n*ln(p)/ln(2)^2, k = (m/n)*ln(2).
func NewBloomFilter(n uint, falsePositiveRate float64) *BloomFilter {
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, falsePositiveRate)
	return &BloomFilter{filter: f, n: n}
}

// Add inserts s into the filter.
func (b *BloomFilter) Add(s string) {
	b.filter.AddString(s)
}

// Contains reports possible membership: false means s is definitely
// absent; true means s is possibly present (spec §4.3 contract).
func (b *BloomFilter) Contains(s string) bool {
	return b.filter.TestString(s)
}

// EstimatedFalsePositiveRate returns the filter's expected false-positive
// rate at its current fill level, for diagnostics.
func (b *BloomFilter) EstimatedFalsePositiveRate() float64 {
	k := float64(b.filter.K())
	m := float64(b.filter.Cap())
	n := float64(b.n)
	if m == 0 {
		return 0
	}
	return math.Pow(1-math.Exp(-k*n/m), k)
}
