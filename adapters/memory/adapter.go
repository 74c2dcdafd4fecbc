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

// Package memory provides an in-memory implementation of RowSource.
package memory

import (
	"fmt"
	"sync"

	"github.com/loomtable/vgrid/grid"
)

// MemoryDataSource is a thread-safe in-memory implementation of RowSource.
// It's suitable for small to medium datasets that fit in memory.
type MemoryDataSource struct {
	mu          sync.RWMutex
	data        [][]grid.Value
	columnNames []string
	columnTypes []grid.DataType
	metadata    grid.Metadata
}

// NewDataSource creates a new in-memory data source from string data.
// Every column is typed TypeString; no type inference is done.
func NewDataSource(data [][]string, columnNames []string) (*MemoryDataSource, error) {
	if len(columnNames) == 0 {
		return nil, fmt.Errorf("%w: no columns provided", grid.ErrEmptyData)
	}

	// All columns are typed as strings
	columnTypes := make([]grid.DataType, len(columnNames))
	for i := range columnTypes {
		columnTypes[i] = grid.TypeString // Default to string
	}

	// Convert string data to Values
	values := make([][]grid.Value, len(data))
	for i, row := range data {
		if len(row) != len(columnNames) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), len(columnNames))
		}
		values[i] = make([]grid.Value, len(row))
		for j, cell := range row {
			values[i][j] = grid.NewValue(cell, grid.TypeString)
		}
	}

	return &MemoryDataSource{
		data:        values,
		columnNames: columnNames,
		columnTypes: columnTypes,
		metadata:    make(grid.Metadata),
	}, nil
}

// NewDataSourceFromValues creates a new in-memory data source from typed Values.
func NewDataSourceFromValues(data [][]grid.Value, columnNames []string, columnTypes []grid.DataType) (*MemoryDataSource, error) {
	if len(columnNames) == 0 {
		return nil, fmt.Errorf("%w: no columns provided", grid.ErrEmptyData)
	}

	if len(columnNames) != len(columnTypes) {
		return nil, fmt.Errorf("column names (%d) and types (%d) length mismatch", len(columnNames), len(columnTypes))
	}

	// Validate data dimensions
	for i, row := range data {
		if len(row) != len(columnNames) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), len(columnNames))
		}
	}

	return &MemoryDataSource{
		data:        data,
		columnNames: columnNames,
		columnTypes: columnTypes,
		metadata:    make(grid.Metadata),
	}, nil
}

// RowCount returns the total number of rows.
func (m *MemoryDataSource) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// ColumnCount returns the total number of columns.
func (m *MemoryDataSource) ColumnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.columnNames)
}

// ColumnName returns the name of the column at the given index.
func (m *MemoryDataSource) ColumnName(col int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if col < 0 || col >= len(m.columnNames) {
		return "", fmt.Errorf("%w: %d (valid range: 0-%d)", grid.ErrInvalidColumn, col, len(m.columnNames)-1)
	}

	return m.columnNames[col], nil
}

// ColumnType returns the data type of the column at the given index.
func (m *MemoryDataSource) ColumnType(col int) (grid.DataType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if col < 0 || col >= len(m.columnTypes) {
		return grid.TypeString, fmt.Errorf("%w: %d (valid range: 0-%d)", grid.ErrInvalidColumn, col, len(m.columnTypes)-1)
	}

	return m.columnTypes[col], nil
}

// Cell returns the value at the specified row and column.
func (m *MemoryDataSource) Cell(row, col int) (grid.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if row < 0 || row >= len(m.data) {
		return grid.Value{}, fmt.Errorf("%w: %d (valid range: 0-%d)", grid.ErrInvalidRow, row, len(m.data)-1)
	}

	if col < 0 || col >= len(m.columnNames) {
		return grid.Value{}, fmt.Errorf("%w: %d (valid range: 0-%d)", grid.ErrInvalidColumn, col, len(m.columnNames)-1)
	}

	return m.data[row][col], nil
}

// Row returns all values for the specified row.
func (m *MemoryDataSource) Row(row int) ([]grid.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if row < 0 || row >= len(m.data) {
		return nil, fmt.Errorf("%w: %d (valid range: 0-%d)", grid.ErrInvalidRow, row, len(m.data)-1)
	}

	// Return a copy to prevent modification
	result := make([]grid.Value, len(m.data[row]))
	copy(result, m.data[row])
	return result, nil
}

// Metadata returns metadata about the data source.
func (m *MemoryDataSource) Metadata() grid.Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent modification
	result := make(grid.Metadata)
	for k, v := range m.metadata {
		result[k] = v
	}
	return result
}

// SetMetadata sets a metadata value (not part of RowSource interface).
func (m *MemoryDataSource) SetMetadata(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
}
