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

import "errors"

// Common errors returned by the grid package.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrTypeMismatch is returned when a type comparison is invalid.
	ErrTypeMismatch = errors.New("type mismatch in comparison")

	// ErrNoRowSource is returned when a required data source is nil.
	ErrNoRowSource = errors.New("data source is nil")

	// ErrEmptyData is returned when data is empty where it shouldn't be.
	ErrEmptyData = errors.New("data is empty")

	// ErrColumnNotFound is returned when a column name is not found.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidSortColumn is returned when trying to sort by an invalid column.
	ErrInvalidSortColumn = errors.New("invalid sort column")

	// ErrExportFailed is returned when export operation fails.
	ErrExportFailed = errors.New("export failed")
)

// Error kinds classify failures across the grid's subsystems so callers can
// branch with errors.Is regardless of which component raised them. Every
// recovery path wraps one of these with fmt.Errorf("%w: ...") and also
// raises the matching event on the events bus; the kind is never the only
// signal a caller gets.
var (
	// ErrConfig marks a rejected configuration value (e.g. negative
	// overscan, zero row height in uniform mode).
	ErrConfig = errors.New("config error")

	// ErrBounds marks an out-of-range index into visible or virtual
	// coordinates (row, column, viewport offset, scroll position).
	ErrBounds = errors.New("bounds error")

	// ErrState marks an operation attempted in a state that forbids it
	// (e.g. requesting more rows while infinite scroll is already loading).
	ErrState = errors.New("state error")

	// ErrBackend marks a failure surfaced by a host-supplied callback
	// (onFilterRequest, onSortRequest, onLoadMoreRows).
	ErrBackend = errors.New("backend error")

	// ErrValidation marks a rejected filter/sort/column definition.
	ErrValidation = errors.New("validation error")

	// ErrIndexing marks a failure building or querying an auxiliary index
	// (suffix array, bloom filter, trie).
	ErrIndexing = errors.New("indexing error")
)
