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

package grid

import (
	"fmt"
	"sort"
	"sync"
)

// ColumnDef is the immutable input a column is constructed from: the
// config-time shape supplied by the host. ColumnModel turns each ColumnDef
// into a mutable ColumnState it owns from then on; the two are kept
// distinct so runtime mutation (width/order/visibility) never aliases the
// host's original definition list.
type ColumnDef struct {
	ID           string
	FieldKey     string
	Width        float64
	MinWidth     float64
	MaxWidth     float64
	Visible      bool
	Sortable     bool
	Filterable   bool
	Editable     bool
	RendererKind string
	HeaderSpec   string
}

// ColumnState is the mutable, ColumnModel-owned runtime state for one
// column.
type ColumnState struct {
	ID           string
	FieldKey     string
	Width        float64
	MinWidth     float64
	MaxWidth     float64
	Visible      bool
	Order        int
	Sortable     bool
	Filterable   bool
	Editable     bool
	RendererKind string
	HeaderSpec   string
}

// ColumnModel owns the ordered, reactive column list: width, order, and
// visibility state, published to subscribers as fine-grained change
// events (spec §4.4). Invariant: the Order values of visible columns form
// a gap-free 0..k-1 prefix; reorder always renormalizes to restore it.
type ColumnModel struct {
	mu      sync.RWMutex
	columns []*ColumnState
	byID    map[string]int // ID -> index into columns
	bus     *Bus
	batch   int // >0 while inside BatchUpdate; suppresses per-op emission
	dirty   map[Channel]bool
}

// NewColumnModel builds a ColumnModel from defs, in list order. Initial
// Order values are assigned densely over the visible subset in list order.
func NewColumnModel(defs []ColumnDef, bus *Bus) (*ColumnModel, error) {
	if bus == nil {
		bus = NewBus()
	}

	cm := &ColumnModel{
		columns: make([]*ColumnState, len(defs)),
		byID:    make(map[string]int, len(defs)),
		bus:     bus,
		dirty:   make(map[Channel]bool),
	}

	order := 0
	for i, d := range defs {
		if d.MinWidth > d.MaxWidth {
			return nil, fmt.Errorf("%w: column %s has minWidth %.0f > maxWidth %.0f", ErrConfig, d.ID, d.MinWidth, d.MaxWidth)
		}
		w := clamp(d.Width, d.MinWidth, d.MaxWidth)

		st := &ColumnState{
			ID:           d.ID,
			FieldKey:     d.FieldKey,
			Width:        w,
			MinWidth:     d.MinWidth,
			MaxWidth:     d.MaxWidth,
			Visible:      d.Visible,
			Sortable:     d.Sortable,
			Filterable:   d.Filterable,
			Editable:     d.Editable,
			RendererKind: d.RendererKind,
			HeaderSpec:   d.HeaderSpec,
		}
		if st.Visible {
			st.Order = order
			order++
		} else {
			st.Order = -1
		}

		cm.columns[i] = st
		cm.byID[d.ID] = i
	}

	return cm, nil
}

func clamp(v, lo, hi float64) float64 {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// SetWidth sets column id's width, clamped to [minWidth, maxWidth]. Other
// columns' widths are never touched by this call (spec: "width changes of
// a single column must not reflow other columns' widths").
func (cm *ColumnModel) SetWidth(id string, w float64) error {
	cm.mu.Lock()
	idx, ok := cm.byID[id]
	if !ok {
		cm.mu.Unlock()
		return fmt.Errorf("%w: column %q", ErrColumnNotFound, id)
	}

	col := cm.columns[idx]
	old := col.Width
	col.Width = clamp(w, col.MinWidth, col.MaxWidth)
	changed := old != col.Width
	cm.mu.Unlock()

	if changed {
		cm.emit(ChannelColumn, "width", ColumnWidthChanged{ColumnID: id, Old: old, New: col.Width})
	}
	return nil
}

// SetVisibility shows or hides column id, renormalizing Order over the
// resulting visible set.
func (cm *ColumnModel) SetVisibility(id string, visible bool) error {
	cm.mu.Lock()
	idx, ok := cm.byID[id]
	if !ok {
		cm.mu.Unlock()
		return fmt.Errorf("%w: column %q", ErrColumnNotFound, id)
	}

	col := cm.columns[idx]
	old := col.Visible
	if old == visible {
		cm.mu.Unlock()
		return nil
	}
	col.Visible = visible
	cm.normalizeOrderLocked()
	cm.mu.Unlock()

	cm.emit(ChannelColumn, "visibility", ColumnVisibilityChanged{ColumnID: id, Old: old, New: visible})
	return nil
}

// Reorder moves column id to newOrder among the visible columns,
// renormalizing every other visible column's Order to close the gap.
func (cm *ColumnModel) Reorder(id string, newOrder int) error {
	cm.mu.Lock()
	idx, ok := cm.byID[id]
	if !ok {
		cm.mu.Unlock()
		return fmt.Errorf("%w: column %q", ErrColumnNotFound, id)
	}

	col := cm.columns[idx]
	if !col.Visible {
		cm.mu.Unlock()
		return fmt.Errorf("%w: column %q is not visible", ErrState, id)
	}
	old := col.Order

	visible := cm.visibleSortedLocked()
	if newOrder < 0 {
		newOrder = 0
	}
	if newOrder > len(visible)-1 {
		newOrder = len(visible) - 1
	}

	// Remove col from its current position, reinsert at newOrder, then
	// renumber densely — this is the simplest implementation that always
	// restores the gap-free invariant regardless of the requested index.
	reordered := make([]*ColumnState, 0, len(visible))
	for _, c := range visible {
		if c.ID != id {
			reordered = append(reordered, c)
		}
	}
	at := newOrder
	if at > len(reordered) {
		at = len(reordered)
	}
	reordered = append(reordered[:at], append([]*ColumnState{col}, reordered[at:]...)...)

	for i, c := range reordered {
		c.Order = i
	}
	cm.mu.Unlock()

	cm.emit(ChannelColumn, "reorder", ColumnReordered{ColumnID: id, Old: old, New: newOrder})
	return nil
}

// normalizeOrderLocked reassigns Order densely over the currently visible
// columns, preserving their relative order. Must be called with mu held.
func (cm *ColumnModel) normalizeOrderLocked() {
	visible := make([]*ColumnState, 0, len(cm.columns))
	for _, c := range cm.columns {
		if c.Visible {
			visible = append(visible, c)
		} else {
			c.Order = -1
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Order < visible[j].Order })
	for i, c := range visible {
		c.Order = i
	}
}

func (cm *ColumnModel) visibleSortedLocked() []*ColumnState {
	visible := make([]*ColumnState, 0, len(cm.columns))
	for _, c := range cm.columns {
		if c.Visible {
			visible = append(visible, c)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Order < visible[j].Order })
	return visible
}

// GetVisibleColumnsInOrder returns a snapshot of the visible columns
// ordered by their current Order.
func (cm *ColumnModel) GetVisibleColumnsInOrder() []ColumnState {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	visible := cm.visibleSortedLocked()
	result := make([]ColumnState, len(visible))
	for i, c := range visible {
		result[i] = *c
	}
	return result
}

// GetDataIndex returns the backing column index for a visual (visible,
// ordered) column position.
func (cm *ColumnModel) GetDataIndex(visual int) (int, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	visible := cm.visibleSortedLocked()
	if visual < 0 || visual >= len(visible) {
		return 0, fmt.Errorf("%w: visual column %d", ErrBounds, visual)
	}
	id := visible[visual].ID
	return cm.byID[id], nil
}

// BatchUpdate runs fn with all per-operation event emission suppressed,
// then emits a single synthetic event per channel touched during fn (spec
// §5: "a batch update coalesces all emissions and delivers one synthetic
// event per channel at batch end").
func (cm *ColumnModel) BatchUpdate(fn func(*ColumnModel) error) error {
	cm.mu.Lock()
	cm.batch++
	cm.mu.Unlock()

	err := fn(cm)

	cm.mu.Lock()
	cm.batch--
	flush := cm.batch == 0
	var channels []Channel
	if flush {
		for ch, d := range cm.dirty {
			if d {
				channels = append(channels, ch)
			}
		}
		cm.dirty = make(map[Channel]bool)
	}
	cm.mu.Unlock()

	if flush {
		for _, ch := range channels {
			cm.bus.Publish(Event{Channel: ch, Kind: "batch", Payload: cm.GetVisibleColumnsInOrder()})
		}
	}
	return err
}

// emit publishes immediately outside a batch, or marks the channel dirty
// (to flush once, at batch end) while inside one.
func (cm *ColumnModel) emit(ch Channel, kind string, payload any) {
	cm.mu.Lock()
	inBatch := cm.batch > 0
	if inBatch {
		cm.dirty[ch] = true
	}
	cm.mu.Unlock()

	if !inBatch {
		cm.bus.Publish(Event{Channel: ch, Kind: kind, Payload: payload})
	}
}

// Bus returns the event bus column change events are published on.
func (cm *ColumnModel) Bus() *Bus {
	return cm.bus
}
