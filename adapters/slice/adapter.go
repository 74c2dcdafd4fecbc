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

// Package slice provides a RowSource adapter for Go slices.
package slice

import (
	"fmt"
	"sync"

	"github.com/loomtable/vgrid/grid"
)

// SliceDataSource implements RowSource for [][]any.
// It automatically converts any values to appropriate types.
type SliceDataSource struct {
	mu          sync.RWMutex
	data        [][]grid.Value
	columnNames []string
	columnTypes []grid.DataType
	metadata    grid.Metadata
}

// NewFromInterfaces creates a RowSource from [][]any.
// Column names must be provided. Types are inferred from data.
func NewFromInterfaces(data [][]any, columnNames []string) (*SliceDataSource, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if columnNames == nil || len(columnNames) == 0 {
		return nil, fmt.Errorf("column names cannot be empty")
	}

	// Validate column count consistency
	expectedCols := len(columnNames)
	for i, row := range data {
		if len(row) != expectedCols {
			return nil, fmt.Errorf("inconsistent column count at row %d: expected %d, got %d",
				i, expectedCols, len(row))
		}
	}

	// Convert to Value types
	valueData := make([][]grid.Value, len(data))
	for i, row := range data {
		valueRow := make([]grid.Value, len(row))
		for j, cell := range row {
			valueRow[j] = convertToValue(cell)
		}
		valueData[i] = valueRow
	}

	// Infer column types
	columnTypes := inferTypes(valueData, len(columnNames))

	return &SliceDataSource{
		data:        valueData,
		columnNames: columnNames,
		columnTypes: columnTypes,
		metadata:    make(grid.Metadata),
	}, nil
}

// NewFromStrings creates a RowSource from [][]string.
// This is a convenience function for string data.
func NewFromStrings(data [][]string, columnNames []string) (*SliceDataSource, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if columnNames == nil || len(columnNames) == 0 {
		return nil, fmt.Errorf("column names cannot be empty")
	}

	// Convert strings to any
	interfaceData := make([][]any, len(data))
	for i, row := range data {
		interfaceRow := make([]any, len(row))
		for j, cell := range row {
			interfaceRow[j] = cell
		}
		interfaceData[i] = interfaceRow
	}

	return NewFromInterfaces(interfaceData, columnNames)
}

// NewFromMaps creates a RowSource from []map[string]any.
// Column names are extracted from the first map's keys; their order is not
// defined (Go map iteration order).
func NewFromMaps(data []map[string]any) (*SliceDataSource, error) {
	if data == nil || len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}

	// Extract column names from first map
	var columnNames []string
	for key := range data[0] {
		columnNames = append(columnNames, key)
	}

	if len(columnNames) == 0 {
		return nil, fmt.Errorf("no columns found in data")
	}

	// Convert maps to rows
	rows := make([][]any, len(data))
	for i, rowMap := range data {
		row := make([]any, len(columnNames))
		for j, colName := range columnNames {
			row[j] = rowMap[colName]
		}
		rows[i] = row
	}

	return NewFromInterfaces(rows, columnNames)
}

// convertToValue converts an any to a Value with type inference.
func convertToValue(v any) grid.Value {
	if v == nil {
		return grid.NewNullValue(grid.TypeString)
	}

	switch val := v.(type) {
	case string:
		return grid.NewValue(val, grid.TypeString)
	case int:
		return grid.NewValue(fmt.Sprintf("%d", val), grid.TypeInt)
	case int32:
		return grid.NewValue(fmt.Sprintf("%d", val), grid.TypeInt)
	case int64:
		return grid.NewValue(fmt.Sprintf("%d", val), grid.TypeInt)
	case uint:
		return grid.NewValue(fmt.Sprintf("%d", val), grid.TypeInt)
	case uint32:
		return grid.NewValue(fmt.Sprintf("%d", val), grid.TypeInt)
	case uint64:
		return grid.NewValue(fmt.Sprintf("%d", val), grid.TypeInt)
	case float32:
		return grid.NewValue(fmt.Sprintf("%f", val), grid.TypeFloat)
	case float64:
		return grid.NewValue(fmt.Sprintf("%f", val), grid.TypeFloat)
	case bool:
		return grid.NewValue(fmt.Sprintf("%t", val), grid.TypeBool)
	default:
		// Fallback to string representation
		return grid.NewValue(fmt.Sprintf("%v", val), grid.TypeString)
	}
}

// inferTypes infers column types from the data.
func inferTypes(data [][]grid.Value, numCols int) []grid.DataType {
	types := make([]grid.DataType, numCols)

	// Count types for each column
	for col := 0; col < numCols; col++ {
		typeCount := make(map[grid.DataType]int)

		for row := 0; row < len(data); row++ {
			if col >= len(data[row]) {
				continue
			}

			value := data[row][col]
			if !value.IsNull {
				typeCount[value.Type]++
			}
		}

		// Use most common type, defaulting to String
		maxCount := 0
		types[col] = grid.TypeString

		for dtype, count := range typeCount {
			if count > maxCount {
				maxCount = count
				types[col] = dtype
			}
		}
	}

	return types
}

// RowSource interface implementation

func (ds *SliceDataSource) RowCount() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.data)
}

func (ds *SliceDataSource) ColumnCount() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.columnNames)
}

func (ds *SliceDataSource) ColumnName(col int) (string, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if col < 0 || col >= len(ds.columnNames) {
		return "", grid.ErrInvalidColumn
	}

	return ds.columnNames[col], nil
}

func (ds *SliceDataSource) ColumnType(col int) (grid.DataType, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if col < 0 || col >= len(ds.columnTypes) {
		return grid.TypeString, grid.ErrInvalidColumn
	}

	return ds.columnTypes[col], nil
}

func (ds *SliceDataSource) Cell(row, col int) (grid.Value, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if row < 0 || row >= len(ds.data) {
		return grid.Value{}, grid.ErrInvalidRow
	}

	if col < 0 || col >= len(ds.columnNames) {
		return grid.Value{}, grid.ErrInvalidColumn
	}

	return ds.data[row][col], nil
}

func (ds *SliceDataSource) Row(row int) ([]grid.Value, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if row < 0 || row >= len(ds.data) {
		return nil, grid.ErrInvalidRow
	}

	// Return a copy
	result := make([]grid.Value, len(ds.data[row]))
	copy(result, ds.data[row])
	return result, nil
}

func (ds *SliceDataSource) Metadata() grid.Metadata {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.metadata
}
