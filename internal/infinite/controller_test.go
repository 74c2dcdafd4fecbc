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

package infinite

import (
	"context"
	"errors"
	"testing"

	"github.com/loomtable/vgrid/grid"
)

func batchLoader(batchSize, totalBatches int) (LoadMoreFunc, *int) {
	calls := 0
	return func(ctx context.Context, currentRowCount int) ([]grid.Value, error) {
		calls++
		if calls > totalBatches {
			return nil, nil
		}
		rows := make([]grid.Value, batchSize)
		for i := range rows {
			rows[i] = grid.NewValue(currentRowCount+i, grid.TypeInt)
		}
		return rows, nil
	}, &calls
}

// S4: windowSize=500, pruneThreshold=600, 100-row batches x10 => after
// batch 7, 500 rows in memory, virtualOffset=200, totalLoaded=700.
func TestSlidingWindowPruneScenario(t *testing.T) {
	loader, _ := batchLoader(100, 10)
	c := New(nil, Config{
		Threshold:      0,
		WindowSize:     500,
		PruneThreshold: 600,
		OnLoadMore:     loader,
	})

	for i := 0; i < 7; i++ {
		if err := c.LoadMore(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if c.RowsInMemory() != 500 {
		t.Errorf("RowsInMemory() = %d, want 500", c.RowsInMemory())
	}
	if c.VirtualOffset() != 200 {
		t.Errorf("VirtualOffset() = %d, want 200", c.VirtualOffset())
	}
	if c.TotalLoaded() != 700 {
		t.Errorf("TotalLoaded() = %d, want 700", c.TotalLoaded())
	}
}

// Property 7: virtualOffset + rowsInMemory == totalRowsLoaded, always.
func TestVirtualOffsetInvariant(t *testing.T) {
	loader, _ := batchLoader(100, 10)
	c := New(nil, Config{WindowSize: 500, PruneThreshold: 600, OnLoadMore: loader})

	for i := 0; i < 10; i++ {
		if err := c.LoadMore(context.Background()); err != nil {
			t.Fatal(err)
		}
		if c.VirtualOffset()+c.RowsInMemory() != c.TotalLoaded() {
			t.Fatalf("invariant broken after load %d: offset=%d inMemory=%d total=%d",
				i, c.VirtualOffset(), c.RowsInMemory(), c.TotalLoaded())
		}
	}
}

func TestHasMoreFalseOnEmptyResult(t *testing.T) {
	loader, _ := batchLoader(100, 1)
	c := New(nil, Config{WindowSize: 500, PruneThreshold: 600, OnLoadMore: loader})

	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !c.HasMore() {
		t.Fatal("hasMore should still be true after the first batch")
	}

	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.HasMore() {
		t.Error("hasMore should be false after an empty result")
	}
}

func TestDataPrunedEventEmitted(t *testing.T) {
	bus := grid.NewBus()
	var got grid.DataPruned
	fired := false
	bus.Subscribe(grid.ChannelInfinite, func(ev grid.Event) {
		if ev.Kind == "pruned" {
			got = ev.Payload.(grid.DataPruned)
			fired = true
		}
	})

	loader, _ := batchLoader(100, 10)
	c := New(bus, Config{WindowSize: 500, PruneThreshold: 600, OnLoadMore: loader})
	for i := 0; i < 7; i++ {
		if err := c.LoadMore(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if !fired {
		t.Fatal("expected a pruned event")
	}
	if got.Count != 200 || got.VirtualOffset != 200 {
		t.Errorf("DataPruned = %+v, want Count=200 VirtualOffset=200", got)
	}
}

func TestThresholdGatesMaybeLoadMore(t *testing.T) {
	loader, calls := batchLoader(100, 10)
	c := New(nil, Config{Threshold: 10, WindowSize: 500, PruneThreshold: 600, OnLoadMore: loader})

	// Establish an in-memory window of 100 rows first.
	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := *calls

	// Far from the end of the 100-row window: no load triggered.
	c.MaybeLoadMore(context.Background(), grid.VisibleRange{EndRow: 5})
	if *calls != callsAfterFirst {
		t.Errorf("expected no load far from the window end, got %d calls (was %d)", *calls, callsAfterFirst)
	}

	// Near the end (within threshold of rowsInMemory=100): load triggers,
	// observable synchronously via Busy() before the goroutine completes.
	c.MaybeLoadMore(context.Background(), grid.VisibleRange{EndRow: 95})
	if !c.Busy() {
		t.Error("expected a load to be in flight near the window end")
	}
}

func TestBackendErrorEventOnLoadFailure(t *testing.T) {
	bus := grid.NewBus()
	fired := false
	bus.Subscribe(grid.ChannelBackend, func(ev grid.Event) {
		if ev.Kind == "error" {
			fired = true
		}
	})

	c := New(bus, Config{WindowSize: 500, PruneThreshold: 600, OnLoadMore: func(ctx context.Context, n int) ([]grid.Value, error) {
		return nil, errors.New("network error")
	}})

	if err := c.LoadMore(context.Background()); err == nil {
		t.Fatal("expected an error from LoadMore")
	}
	if !fired {
		t.Error("expected a backend:error event")
	}
}
