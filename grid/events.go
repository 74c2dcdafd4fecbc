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

import "sync"

// Channel identifies one of the grid's event categories. Subscribers attach
// per-channel so a header widget can listen to column events without also
// waking up on every viewport scroll tick.
type Channel string

const (
	ChannelViewport  Channel = "viewport"
	ChannelData      Channel = "data"
	ChannelFilter    Channel = "filter"
	ChannelSort      Channel = "sort"
	ChannelColumn    Channel = "column"
	ChannelSelection Channel = "selection"
	ChannelInfinite  Channel = "infinite"
	ChannelBackend   Channel = "backend"
)

// Event is a tagged variant delivered on one channel. Kind distinguishes the
// payloads within a channel (e.g. ChannelColumn carries "width", "visibility"
// and "reorder" events); handlers switch on Kind rather than on Go type so a
// single subscription can match a whole channel exhaustively.
type Event struct {
	Channel Channel
	Kind    string
	Payload any
}

// ViewportRangeChanged is the payload for a ChannelViewport event of kind
// "range": old and new VisibleRange after a scroll, resize, or projection
// change.
type ViewportRangeChanged struct {
	Old VisibleRange
	New VisibleRange
}

// ViewportResized is the payload for a ChannelViewport event of kind
// "resize".
type ViewportResized struct {
	Width, Height float64
}

// CellChanged is the payload for a ChannelData event of kind "cellChange".
type CellChanged struct {
	Row, Col int
	Old, New Value
}

// ColumnWidthChanged is the payload for a ChannelColumn event of kind
// "width".
type ColumnWidthChanged struct {
	ColumnID string
	Old, New float64
}

// ColumnVisibilityChanged is the payload for a ChannelColumn event of kind
// "visibility".
type ColumnVisibilityChanged struct {
	ColumnID string
	Old, New bool
}

// ColumnReordered is the payload for a ChannelColumn event of kind
// "reorder".
type ColumnReordered struct {
	ColumnID string
	Old, New int
}

// FilterChanged is the payload for a ChannelFilter event of kind "change".
type FilterChanged struct {
	State    []ColumnFilter
	Previous []ColumnFilter
}

// FilterApplied is the payload for a ChannelFilter event of kind
// "afterFilter".
type FilterApplied struct {
	RowsVisible int
	RowsHidden  int
}

// SortChanged is the payload for a ChannelSort event of kind "change".
type SortChanged struct {
	State    []ColumnSort
	Previous []ColumnSort
}

// SortError is the payload for a ChannelSort event of kind "error": the
// comparator panicked or returned an error for a cell pair, and the pair
// was treated as equal.
type SortError struct {
	Column int
	RowA   int
	RowB   int
	Err    error
}

// DataPruned is the payload for a ChannelInfinite event of kind "pruned".
type DataPruned struct {
	Count         int
	VirtualOffset int
}

// BackendError is the payload for a ChannelBackend event of kind "error":
// an onSortRequest/onFilterRequest/onLoadMoreRows callback was rejected.
// The grid restores its last-applied state and remains usable.
type BackendError struct {
	Operation string
	Err       error
}

// Handler receives events delivered on a subscribed channel. Handlers run
// synchronously on the goroutine that triggered the event; a handler must
// not block.
type Handler func(Event)

// Bus is a synchronous, per-channel publish/subscribe registry. It
// generalizes the single-callback-field pattern (OnHeaderClick, etc.) into
// a multi-subscriber bus while keeping delivery order and synchronicity
// identical: handlers fire in subscription order, on the caller's
// goroutine, before Publish returns.
type Bus struct {
	mu       sync.Mutex
	handlers map[Channel][]Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Channel][]Handler)}
}

// Subscribe registers h to receive every event published on ch. Returns an
// unsubscribe function.
func (b *Bus) Subscribe(ch Channel, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[ch] = append(b.handlers[ch], h)
	idx := len(b.handlers[ch]) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		hs := b.handlers[ch]
		if idx < len(hs) {
			hs[idx] = nil
		}
	}
}

// Publish delivers ev to every handler subscribed on ev.Channel, in
// subscription order.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	hs := make([]Handler, len(b.handlers[ev.Channel]))
	copy(hs, b.handlers[ev.Channel])
	b.mu.Unlock()

	for _, h := range hs {
		if h != nil {
			h(ev)
		}
	}
}
