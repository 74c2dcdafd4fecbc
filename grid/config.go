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

import "fmt"

// RowHeightMode selects whether rows share a uniform height or are measured
// per row.
type RowHeightMode string

const (
	RowHeightUniform      RowHeightMode = "uniform"
	RowHeightContentAware RowHeightMode = "content-aware"
)

// SortMode selects whether SortManager sorts locally or delegates to the
// host via onSortRequest.
type SortMode string

const (
	SortModeFrontend SortMode = "frontend"
	SortModeBackend  SortMode = "backend"
	SortModeAuto     SortMode = "auto"
)

// FilterMode selects whether FilterEngine evaluates locally or delegates to
// the host via onFilterRequest.
type FilterMode string

const (
	FilterModeFrontend FilterMode = "frontend"
	FilterModeBackend  FilterMode = "backend"
)

// SelectionType names what a selection gesture selects.
type SelectionType string

const (
	SelectionCell   SelectionType = "cell"
	SelectionRow    SelectionType = "row"
	SelectionColumn SelectionType = "column"
	SelectionRange  SelectionType = "range"
)

// RowHeightConfig parameterizes content-aware row height measurement.
type RowHeightConfig struct {
	DefaultHeight float64
	Min           float64
	Max           float64
	DebounceMs    int
}

// RendererCacheConfig configures the fingerprint→artifact LRU.
type RendererCacheConfig struct {
	Enabled    bool
	Capacity   int
	TrackStats bool
}

// SortIcons names the glyphs a header renderer shows for each sort
// direction; the core never renders them, it only threads the names
// through to the host's header subsystem.
type SortIcons struct {
	Asc  string
	Desc string
}

// InfiniteScrollConfig configures the append-on-demand loader.
type InfiniteScrollConfig struct {
	Enabled             bool
	Threshold           int
	EnableSlidingWindow bool
	WindowSize          int
	PruneThreshold      int
}

// ColumnResizeConfig configures interactive column resize and auto-fit.
type ColumnResizeConfig struct {
	ResizeZoneWidth   float64
	DefaultMin        float64
	DefaultMax        float64
	AutoFitSampleSize int
	AutoFitPadding    float64
	AutoFitOnLoad     bool
}

// Config is the grid's recognized configuration surface (spec §6). It is a
// plain struct built by DefaultConfig and then adjusted by the host — there
// is no flag or environment parsing here, the grid is a library, not a
// CLI.
type Config struct {
	RowCount int
	ColCount int

	RowHeight    float64
	ColWidth     float64
	ColWidths    []float64
	OverscanRows int
	OverscanCols int

	RowHeightMode   RowHeightMode
	RowHeightConfig RowHeightConfig

	RendererCache RendererCacheConfig

	SortMode          SortMode
	FilterMode        FilterMode
	SortIcons         SortIcons
	InfiniteScrolling InfiniteScrollConfig
	ColumnResize      ColumnResizeConfig

	SelectionType        SelectionType
	EnableMultiSelection bool
}

// DefaultConfig returns the grid's default configuration: uniform 32px rows,
// 120px columns, overscan of 5 rows / 2 cols, a renderer cache capacity of
// 1000, auto sort mode, frontend filtering, sliding window disabled.
func DefaultConfig() Config {
	return Config{
		RowHeight:    32,
		ColWidth:     120,
		OverscanRows: 5,
		OverscanCols: 2,

		RowHeightMode: RowHeightUniform,
		RowHeightConfig: RowHeightConfig{
			DefaultHeight: 32,
			Min:           16,
			Max:           512,
			DebounceMs:    50,
		},

		RendererCache: RendererCacheConfig{
			Enabled:    true,
			Capacity:   1000,
			TrackStats: true,
		},

		SortMode:   SortModeAuto,
		FilterMode: FilterModeFrontend,
		SortIcons:  SortIcons{Asc: "▲", Desc: "▼"},

		InfiniteScrolling: InfiniteScrollConfig{
			Threshold:           20,
			EnableSlidingWindow: false,
			WindowSize:          500,
			PruneThreshold:      600,
		},

		ColumnResize: ColumnResizeConfig{
			ResizeZoneWidth:   6,
			DefaultMin:        40,
			DefaultMax:        2000,
			AutoFitSampleSize: 50,
			AutoFitPadding:    12,
		},

		SelectionType:        SelectionCell,
		EnableMultiSelection: false,
	}
}

// Validate rejects configuration values the grid cannot operate under,
// returning ErrConfig-wrapped errors rather than panicking.
func (c Config) Validate() error {
	if c.RowCount < 0 {
		return fmt.Errorf("%w: rowCount %d is negative", ErrConfig, c.RowCount)
	}
	if c.ColCount < 0 {
		return fmt.Errorf("%w: colCount %d is negative", ErrConfig, c.ColCount)
	}
	if c.OverscanRows < 0 || c.OverscanCols < 0 {
		return fmt.Errorf("%w: overscan must be non-negative", ErrConfig)
	}
	if c.RendererCache.Enabled && c.RendererCache.Capacity <= 0 {
		return fmt.Errorf("%w: rendererCache.capacity must be > 0 when enabled", ErrConfig)
	}
	if c.RowHeight <= 0 && c.RowHeightMode == RowHeightUniform {
		return fmt.Errorf("%w: rowHeight must be > 0 in uniform mode", ErrConfig)
	}
	if c.InfiniteScrolling.EnableSlidingWindow && c.InfiniteScrolling.WindowSize <= 0 {
		return fmt.Errorf("%w: infiniteScrolling.windowSize must be > 0 when sliding window is enabled", ErrConfig)
	}
	return nil
}
