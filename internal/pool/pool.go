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

// Package pool provides CellPool, a bounded pool of renderable cell slots
// reused across scroll so the positioner never allocates more slots than
// the visible range requires.
package pool

import "github.com/loomtable/vgrid/grid"

// Coord identifies a cell position in visual (post-projection) space.
type Coord struct {
	Row, Col int
}

// Slot is a renderable cell slot: bound to a Coord while mounted, free
// otherwise. ArtifactHandle is opaque to the pool — it is whatever the
// RendererCache/Renderer produced.
type Slot struct {
	Coord          Coord
	Bound          bool
	ArtifactHandle any
	LastUsedTick   int64
}

// Pool holds up to capacity slots, reused across scroll ticks by Coord so
// that steady-state scrolling allocates only for the range delta, never
// for the full visible range (spec §4.7).
type Pool struct {
	slots   []*Slot
	byCoord map[Coord]*Slot
	tick    int64
}

// New creates a Pool with capacity slots, all initially free.
func New(capacity int) (*Pool, error) {
	if capacity <= 0 {
		return nil, grid.ErrConfig
	}
	p := &Pool{
		slots:   make([]*Slot, capacity),
		byCoord: make(map[Coord]*Slot, capacity),
	}
	for i := range p.slots {
		p.slots[i] = &Slot{}
	}
	return p, nil
}

// Acquire returns the slot for coord: reusing an already-bound slot at
// that coord, else a free slot, else rebinding the slot with the smallest
// LastUsedTick that is not in keep (the current visible set). Returns
// false if no slot could be found (pool smaller than the visible range,
// a host misconfiguration rather than a runtime condition).
func (p *Pool) Acquire(coord Coord, keep map[Coord]bool) (*Slot, bool) {
	p.tick++

	if s, ok := p.byCoord[coord]; ok {
		s.LastUsedTick = p.tick
		return s, true
	}

	// Prefer a genuinely free slot.
	for _, s := range p.slots {
		if !s.Bound {
			p.bind(s, coord)
			return s, true
		}
	}

	// Steal the least-recently-used slot not needed by the new visible set.
	var victim *Slot
	for _, s := range p.slots {
		if keep[s.Coord] {
			continue
		}
		if victim == nil || s.LastUsedTick < victim.LastUsedTick {
			victim = s
		}
	}
	if victim == nil {
		return nil, false
	}

	delete(p.byCoord, victim.Coord)
	p.bind(victim, coord)
	return victim, true
}

func (p *Pool) bind(s *Slot, coord Coord) {
	s.Coord = coord
	s.Bound = true
	s.LastUsedTick = p.tick
	s.ArtifactHandle = nil
	p.byCoord[coord] = s
}

// Release marks the slot at coord as free. No-op if coord is not bound.
func (p *Pool) Release(coord Coord) {
	s, ok := p.byCoord[coord]
	if !ok {
		return
	}
	s.Bound = false
	s.ArtifactHandle = nil
	delete(p.byCoord, coord)
}

// ActiveCount returns the number of currently bound (mounted) slots.
func (p *Pool) ActiveCount() int {
	return len(p.byCoord)
}

// Capacity returns the pool's fixed slot count.
func (p *Pool) Capacity() int {
	return len(p.slots)
}
