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

import (
	"sync"

	"github.com/loomtable/vgrid/grid"
)

// Model holds the scroll position (top, left). ScrollTo coalesces rapid
// updates into one scheduled flush per ScheduleFrame tick; the flush only
// clears the pending flag, and Model publishes no event on the bus (range
// events come from Viewport.Update). The frame source
// is supplied by the host via ScheduleFrame; in headless use (tests),
// callers can pass a scheduler that invokes immediately.
type Model struct {
	mu        sync.Mutex
	top, left float64
	pending   bool
	bus       *grid.Bus
	schedule  func(func())
}

// NewModel creates a scroll model; bus is stored but nothing is published
// on it. schedule is the
// host's frame scheduler (spec's scheduleFrame(fn) hook); if nil, updates
// flush synchronously (suitable for headless tests).
func NewModel(bus *grid.Bus, schedule func(func())) *Model {
	if schedule == nil {
		schedule = func(fn func()) { fn() }
	}
	return &Model{bus: bus, schedule: schedule}
}

// Position returns the current (top, left).
func (m *Model) Position() (top, left float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top, m.left
}

// ScrollTo sets the scroll position, coalescing rapid updates into a
// single scheduled flush per frame.
func (m *Model) ScrollTo(top, left float64) {
	m.mu.Lock()
	m.top, m.left = top, left
	already := m.pending
	m.pending = true
	m.mu.Unlock()

	if already {
		return
	}

	m.schedule(func() {
		m.mu.Lock()
		m.pending = false
		m.mu.Unlock()
	})
}

// Viewport derives the visible range from a Model, a Scroller, and the
// current viewport dimensions, and emits range/resize events on change
// (spec §4.6). Subscribers: CellPositioner, InfiniteScrollController,
// header subsystem — all reached via the shared Bus rather than direct
// references.
type Viewport struct {
	mu            sync.Mutex
	scroller      *Scroller
	width, height float64
	lastRange     grid.VisibleRange
	bus           *grid.Bus
}

// NewViewport creates a Viewport over scroller, publishing on bus.
func NewViewport(scroller *Scroller, bus *grid.Bus) *Viewport {
	return &Viewport{scroller: scroller, bus: bus}
}

// Resize updates the viewport's pixel dimensions and recomputes the
// visible range, emitting ChannelViewport "resize" and, if the range
// changed, "range".
func (v *Viewport) Resize(width, height float64) {
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()

	if v.bus != nil {
		v.bus.Publish(grid.Event{
			Channel: grid.ChannelViewport,
			Kind:    "resize",
			Payload: grid.ViewportResized{Width: width, Height: height},
		})
	}
}

// Update recomputes the visible range for the given scroll position and
// emits ChannelViewport "range" if it changed from the last computed
// range.
func (v *Viewport) Update(scrollTop, scrollLeft float64) grid.VisibleRange {
	v.mu.Lock()
	width, height := v.width, v.height
	old := v.lastRange
	newRange := v.scroller.VisibleRange(scrollTop, scrollLeft, width, height)
	changed := newRange != old
	if changed {
		v.lastRange = newRange
	}
	v.mu.Unlock()

	if changed && v.bus != nil {
		v.bus.Publish(grid.Event{
			Channel: grid.ChannelViewport,
			Kind:    "range",
			Payload: grid.ViewportRangeChanged{Old: old, New: newRange},
		})
	}
	return newRange
}

// CurrentRange returns the last computed visible range without
// recomputing it.
func (v *Viewport) CurrentRange() grid.VisibleRange {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastRange
}
