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

package indexmap

import "testing"

func TestNewIsIdentity(t *testing.T) {
	m := New(5)
	for i := 0; i < 5; i++ {
		if m.Lookup(i) != i {
			t.Errorf("Lookup(%d) = %d, want %d", i, m.Lookup(i), i)
		}
	}
}

func TestPermuteDescending(t *testing.T) {
	// S1: column 0 = [5,3,8,1,9,2,7,4,6,0]; toggle descending.
	values := []int{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	m := New(len(values))

	m.Permute(func(a, b int) int {
		switch {
		case values[a] > values[b]:
			return -1
		case values[a] < values[b]:
			return 1
		default:
			return 0
		}
	})

	if got := m.Lookup(0); got != 4 {
		t.Errorf("visual row 0 = backing %d, want 4 (value 9)", got)
	}
	if got := m.Lookup(9); got != 9 {
		t.Errorf("visual row 9 = backing %d, want 9 (value 0)", got)
	}
}

func TestPermuteStable(t *testing.T) {
	// Ties must retain insertion order.
	values := []int{1, 1, 0, 1}
	m := New(len(values))
	m.Permute(func(a, b int) int { return values[a] - values[b] })

	// Backing rows 0,1,3 all have value 1 and must appear in that order
	// after backing row 2 (value 0).
	got := m.Slice()
	want := []int{2, 0, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Slice() = %v, want %v", got, want)
		}
	}
}

func TestInverseLookup(t *testing.T) {
	m := New(4)
	m.Permute(func(a, b int) int { return b - a }) // reverse
	for visual := 0; visual < 4; visual++ {
		backing := m.Lookup(visual)
		if v := m.InverseLookup(backing); v != visual {
			t.Errorf("InverseLookup(%d) = %d, want %d", backing, v, visual)
		}
	}
}

func TestReset(t *testing.T) {
	m := New(3)
	m.Permute(func(a, b int) int { return b - a })
	m.Reset()
	for i := 0; i < 3; i++ {
		if m.Lookup(i) != i {
			t.Errorf("after Reset, Lookup(%d) = %d, want %d", i, m.Lookup(i), i)
		}
	}
}
