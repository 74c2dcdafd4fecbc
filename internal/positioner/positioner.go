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

// Package positioner diffs successive visible ranges and issues
// mount/update/unmount operations against a cell pool, integrating with
// the renderer cache before invoking the host's Renderer (spec §4.8).
package positioner

import (
	"sync"

	"github.com/loomtable/vgrid/grid"
	"github.com/loomtable/vgrid/internal/pool"
	"github.com/loomtable/vgrid/internal/renderercache"
)

// Op is one positioning instruction emitted for a single diff tick.
type Op struct {
	Kind  string // "mount", "unmount", "update"
	Coord pool.Coord
}

// FingerprintFunc computes the current CellFingerprint for a visual
// coordinate — callers close over the projection + column model to
// resolve coord to a value and renderer kind.
type FingerprintFunc func(coord pool.Coord) renderercache.Fingerprint

// Positioner owns the previous visible range and the fingerprint last
// used to mount each coordinate, so it can tell persisted cells apart
// from cells that merely kept their coordinate but changed content.
type Positioner struct {
	mu          sync.Mutex
	pool        *pool.Pool
	cache       *renderercache.Cache
	fingerprint FingerprintFunc
	prevCoords  map[pool.Coord]bool
	lastFp      map[pool.Coord]renderercache.Fingerprint
	tick        int64
}

// New creates a Positioner driving p. fp computes a coordinate's current
// fingerprint; a persisted cell gets an update op when its fingerprint
// changes, and fp may be nil to always treat persisted cells as
// unchanged. cache may be nil; when set, a changed cell's new
// fingerprint is invalidated in it.
func New(p *pool.Pool, cache *renderercache.Cache, fp FingerprintFunc) *Positioner {
	return &Positioner{
		pool:        p,
		cache:       cache,
		fingerprint: fp,
		prevCoords:  make(map[pool.Coord]bool),
		lastFp:      make(map[pool.Coord]renderercache.Fingerprint),
	}
}

// Diff computes mount/unmount/update ops for the transition from the
// previously seen range to newRange (rows/cols already projected to
// visual space by the caller). Ordering guarantee: all unmounts are
// returned before mounts, so pool slots freed by this tick's exits are
// available for this tick's entries (spec §4.8). Diff is a single
// synchronous pass — a later call supersedes any conceptual "in-flight"
// work, there is no concurrent diffing.
func (p *Positioner) Diff(newRange grid.VisibleRange) []Op {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tick++

	newCoords := make(map[pool.Coord]bool)
	for r := newRange.StartRow; r < newRange.EndRow; r++ {
		for c := newRange.StartCol; c < newRange.EndCol; c++ {
			newCoords[pool.Coord{Row: r, Col: c}] = true
		}
	}

	var unmounts, mounts, updates []Op

	for coord := range p.prevCoords {
		if !newCoords[coord] {
			unmounts = append(unmounts, Op{Kind: "unmount", Coord: coord})
			p.pool.Release(coord)
			delete(p.lastFp, coord)
		}
	}

	for coord := range newCoords {
		if p.prevCoords[coord] {
			// Persisted: only an update op if the fingerprint changed.
			if p.fingerprint == nil {
				continue
			}
			fp := p.fingerprint(coord)
			if fp != p.lastFp[coord] {
				updates = append(updates, Op{Kind: "update", Coord: coord})
				p.lastFp[coord] = fp
				if p.cache != nil {
					p.cache.Invalidate(fp)
				}
			}
			continue
		}

		mounts = append(mounts, Op{Kind: "mount", Coord: coord})
		if p.fingerprint != nil {
			p.lastFp[coord] = p.fingerprint(coord)
		}
	}

	p.prevCoords = newCoords

	ops := make([]Op, 0, len(unmounts)+len(mounts)+len(updates))
	ops = append(ops, unmounts...)
	ops = append(ops, mounts...)
	ops = append(ops, updates...)
	return ops
}

// Mounted reports whether coord is currently considered mounted.
func (p *Positioner) Mounted(coord pool.Coord) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prevCoords[coord]
}
