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

// Package infinite implements the sliding-window append-on-demand loader
// that backs infinite scrolling: threshold detection against the visible
// range, a single-flight onLoadMoreRows delegate, and front-pruning under
// a memory bound via a monotonically increasing virtual offset.
package infinite

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/loomtable/vgrid/grid"
)

// LoadMoreFunc fetches the next batch starting after currentRowCount
// rows have been loaded. An empty, nil-error result means the source is
// exhausted (hasMore becomes false).
type LoadMoreFunc func(ctx context.Context, currentRowCount int) ([]grid.Value, error)

// Controller drives the append/prune sliding window (spec §4.13). It is
// the single writer of virtualOffset: every consumer exposing apparent
// row coordinates must add virtualOffset to translate from in-memory
// index to apparent backing index.
type Controller struct {
	mu sync.Mutex

	bus *grid.Bus

	threshold      int
	windowSize     int
	pruneThreshold int
	pruneEnabled   bool

	onLoadMore LoadMoreFunc

	rowsInMemory  int
	totalLoaded   int
	virtualOffset int
	hasMore       bool

	inFlight bool
	token    int64
}

// Config configures a Controller's thresholds (spec §4.13 / S4 scenario).
type Config struct {
	// Threshold is how close to the end of loaded rows (in rows) the
	// visible range must get before a load is triggered.
	Threshold int

	// WindowSize is the row count the in-memory window is pruned down to.
	WindowSize int

	// PruneThreshold is the in-memory row count above which pruning
	// triggers. Zero disables sliding-window pruning entirely.
	PruneThreshold int

	OnLoadMore LoadMoreFunc
}

// New creates a Controller with hasMore=true and an empty window.
func New(bus *grid.Bus, cfg Config) *Controller {
	return &Controller{
		bus:            bus,
		threshold:      cfg.Threshold,
		windowSize:     cfg.WindowSize,
		pruneThreshold: cfg.PruneThreshold,
		pruneEnabled:   cfg.PruneThreshold > 0,
		onLoadMore:     cfg.OnLoadMore,
		hasMore:        true,
	}
}

// RowsInMemory returns the count of rows currently materialized.
func (c *Controller) RowsInMemory() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rowsInMemory
}

// TotalLoaded returns the cumulative count of rows ever loaded,
// including those since pruned out of memory.
func (c *Controller) TotalLoaded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLoaded
}

// VirtualOffset returns the current virtual offset: rowsInMemory +
// virtualOffset == totalLoaded always holds (property 7).
func (c *Controller) VirtualOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.virtualOffset
}

// HasMore reports whether the source may still have unloaded rows.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Busy reports whether a load is currently in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// OnViewportRange is the ChannelViewport "range" handler: it checks the
// threshold condition and triggers a load if the new range's end nears
// the end of the in-memory window, no load is in flight, and more rows
// may exist. Wire via bus.Subscribe(grid.ChannelViewport, ctrl.OnViewportRange).
func (c *Controller) OnViewportRange(ev grid.Event) {
	if ev.Kind != "range" {
		return
	}
	payload, ok := ev.Payload.(grid.ViewportRangeChanged)
	if !ok {
		return
	}
	c.MaybeLoadMore(context.Background(), payload.New)
}

// MaybeLoadMore triggers a load if newRange's end row is within
// threshold of the end of the in-memory window, no load is already in
// flight, and hasMore is true. Safe to call redundantly; it is a no-op
// when the condition doesn't hold.
func (c *Controller) MaybeLoadMore(ctx context.Context, newRange grid.VisibleRange) {
	c.mu.Lock()
	if c.inFlight || !c.hasMore {
		c.mu.Unlock()
		return
	}
	if newRange.EndRow < c.rowsInMemory-c.threshold {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.token++
	myToken := c.token
	currentCount := c.totalLoaded
	c.mu.Unlock()

	go c.load(ctx, myToken, currentCount)
}

// LoadMore synchronously triggers one load, bypassing the threshold
// check. Useful for host-initiated prefetch and for tests.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.token++
	myToken := c.token
	currentCount := c.totalLoaded
	c.mu.Unlock()

	return c.loadSync(ctx, myToken, currentCount)
}

func (c *Controller) load(ctx context.Context, token int64, currentCount int) {
	_ = c.loadSync(ctx, token, currentCount)
}

func (c *Controller) loadSync(ctx context.Context, token int64, currentCount int) error {
	rows, err := c.onLoadMore(ctx, currentCount)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		// A later request has superseded this one; discard (spec:
		// cancellation is "supersede").
		return nil
	}
	c.inFlight = false

	if err != nil {
		c.publishBackendError(err)
		return err
	}

	if len(rows) == 0 {
		c.hasMore = false
		return nil
	}

	c.rowsInMemory += len(rows)
	c.totalLoaded += len(rows)

	if c.pruneEnabled && c.rowsInMemory > c.pruneThreshold {
		dropped := c.rowsInMemory - c.windowSize
		c.rowsInMemory = c.windowSize
		c.virtualOffset += dropped
		c.publishPruned(dropped)
	}

	return nil
}

func (c *Controller) publishPruned(count int) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(grid.Event{
		Channel: grid.ChannelInfinite,
		Kind:    "pruned",
		Payload: grid.DataPruned{Count: count, VirtualOffset: c.virtualOffset},
	})
}

func (c *Controller) publishBackendError(err error) {
	log.Error().Err(err).Msg("infinite: onLoadMoreRows failed")
	if c.bus == nil {
		return
	}
	c.bus.Publish(grid.Event{
		Channel: grid.ChannelBackend,
		Kind:    "error",
		Payload: grid.BackendError{Operation: "loadMore", Err: err},
	})
}
