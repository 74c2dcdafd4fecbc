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

// Package auxindex provides the auxiliary column indexes the filter engine
// consults before falling back to a full predicate scan: a suffix array
// for substring search, a bloom filter for negative-lookup short-circuit,
// and a trie for prefix autocomplete.
package auxindex

import (
	"fmt"
	"index/suffixarray"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/loomtable/vgrid/grid"
)

// SuffixArray indexes the values of a single column for O(m log n)
// substring search. Values are concatenated with a NUL sentinel between
// rows; match positions are mapped back to row ids by binary search over a
// rowStart prefix array. Go's stdlib index/suffixarray is the
// purpose-built package for exactly this contract (build + byte-offset
// search over a corpus) — no third-party dependency in the retrieval pack
// targets this more directly, so it is used as-is rather than reimplemented.
type SuffixArray struct {
	caseInsensitive bool
	corpus          []byte
	rowStart        []int // corpus byte offset where each row's text begins
	sa              *suffixarray.Index
}

// Build constructs a SuffixArray over values, one entry per row id
// (values[rowID]). caseInsensitive folds the corpus and queries to lower
// case.
func Build(values []string, caseInsensitive bool) (*SuffixArray, error) {
	var buf strings.Builder
	rowStart := make([]int, len(values))

	for i, v := range values {
		if caseInsensitive {
			v = strings.ToLower(v)
		}
		rowStart[i] = buf.Len()
		buf.WriteString(v)
		buf.WriteByte(0) // sentinel separates rows so matches never span them
	}

	corpus := []byte(buf.String())
	idx := &SuffixArray{
		caseInsensitive: caseInsensitive,
		corpus:          corpus,
		rowStart:        rowStart,
		sa:              suffixarray.New(corpus),
	}
	if len(corpus) == 0 {
		err := fmt.Errorf("%w: empty column, nothing to index", grid.ErrIndexing)
		log.Warn().Err(err).Int("rows", len(values)).Msg("auxindex: suffix array build skipped")
		return idx, err
	}
	return idx, nil
}

// Search returns the row ids whose value contains pattern, case-folded the
// same way the index was built.
func (s *SuffixArray) Search(pattern string) []int {
	if s.caseInsensitive {
		pattern = strings.ToLower(pattern)
	}
	if pattern == "" {
		return nil
	}

	offsets := s.sa.Lookup([]byte(pattern), -1)
	rows := make(map[int]struct{}, len(offsets))
	for _, off := range offsets {
		rows[s.rowForOffset(off)] = struct{}{}
	}

	result := make([]int, 0, len(rows))
	for r := range rows {
		result = append(result, r)
	}
	sort.Ints(result)
	return result
}

// Contains reports whether any row's value contains pattern.
func (s *SuffixArray) Contains(pattern string) bool {
	if s.caseInsensitive {
		pattern = strings.ToLower(pattern)
	}
	return len(s.sa.Lookup([]byte(pattern), 1)) > 0
}

// Count returns the number of rows whose value contains pattern.
func (s *SuffixArray) Count(pattern string) int {
	return len(s.Search(pattern))
}

// rowForOffset maps a corpus byte offset to the row id whose span contains
// it via binary search over rowStart.
func (s *SuffixArray) rowForOffset(offset int) int {
	i := sort.Search(len(s.rowStart), func(i int) bool {
		return s.rowStart[i] > offset
	})
	return i - 1
}
