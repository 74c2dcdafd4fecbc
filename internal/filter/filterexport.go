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

package filter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/loomtable/vgrid/grid"
)

// opSQL maps the closed operator set to SQL comparison fragments.
var opSQL = map[grid.Operator]string{
	grid.OpEquals:             "=",
	grid.OpNotEquals:          "<>",
	grid.OpGreaterThan:        ">",
	grid.OpLessThan:           "<",
	grid.OpGreaterThanOrEqual: ">=",
	grid.OpLessThanOrEqual:    "<=",
}

// ToREST serializes filters as a query string, one repeated `filter`
// parameter per condition in `column:op:value` form, for a host's
// onFilterRequest REST backend.
func ToREST(filters []grid.ColumnFilter) string {
	v := url.Values{}
	for _, cf := range filters {
		for _, c := range cf.Conditions {
			v.Add("filter", fmt.Sprintf("%d:%s:%v", cf.Column, c.Op, c.Value))
		}
	}
	return v.Encode()
}

// ToGraphQL serializes filters as a nested `where` object shape suitable
// for a GraphQL variables payload: { column: { op: value, ... }, ... }.
func ToGraphQL(filters []grid.ColumnFilter) map[string]any {
	where := make(map[string]any, len(filters))
	for _, cf := range filters {
		condMap := make(map[string]any, len(cf.Conditions))
		for _, c := range cf.Conditions {
			condMap[string(c.Op)] = c.Value
		}
		where[fmt.Sprintf("col%d", cf.Column)] = condMap
	}
	return where
}

// SQLWhere is a parameterized SQL WHERE clause: `?` placeholders in
// Clause correspond positionally to Params, so the host never
// string-interpolates a filter value into SQL text.
type SQLWhere struct {
	Clause string
	Params []any
}

// ToSQL serializes filters into a parameterized WHERE clause. Conditions
// combine per cf.Logic; ColumnFilters combine by AND.
func ToSQL(filters []grid.ColumnFilter, columnNames func(int) string) SQLWhere {
	var clauses []string
	var params []any

	for _, cf := range filters {
		name := fmt.Sprintf("col%d", cf.Column)
		if columnNames != nil {
			name = columnNames(cf.Column)
		}

		var parts []string
		for _, c := range cf.Conditions {
			part, p := sqlFragment(name, c)
			parts = append(parts, part)
			params = append(params, p...)
		}
		if len(parts) == 0 {
			continue
		}
		logic := " AND "
		if cf.Logic == grid.LogicOR {
			logic = " OR "
		}
		clauses = append(clauses, "("+strings.Join(parts, logic)+")")
	}

	return SQLWhere{Clause: strings.Join(clauses, " AND "), Params: params}
}

func sqlFragment(name string, c grid.Condition) (string, []any) {
	switch c.Op {
	case grid.OpBlank:
		return fmt.Sprintf("%s IS NULL", name), nil
	case grid.OpNotBlank:
		return fmt.Sprintf("%s IS NOT NULL", name), nil
	case grid.OpContains:
		return fmt.Sprintf("%s LIKE ?", name), []any{"%" + fmt.Sprintf("%v", c.Value) + "%"}
	case grid.OpNotContains:
		return fmt.Sprintf("%s NOT LIKE ?", name), []any{"%" + fmt.Sprintf("%v", c.Value) + "%"}
	case grid.OpStartsWith:
		return fmt.Sprintf("%s LIKE ?", name), []any{fmt.Sprintf("%v", c.Value) + "%"}
	case grid.OpEndsWith:
		return fmt.Sprintf("%s LIKE ?", name), []any{"%" + fmt.Sprintf("%v", c.Value)}
	case grid.OpBetween:
		return fmt.Sprintf("%s BETWEEN ? AND ?", name), []any{c.Value, c.High}
	case grid.OpIn:
		return fmt.Sprintf("%s IN (?)", name), []any{c.Value}
	case grid.OpNotIn:
		return fmt.Sprintf("%s NOT IN (?)", name), []any{c.Value}
	case grid.OpRegex:
		return fmt.Sprintf("%s ~ ?", name), []any{c.Value}
	default:
		if sym, ok := opSQL[c.Op]; ok {
			return fmt.Sprintf("%s %s ?", name, sym), []any{c.Value}
		}
		return fmt.Sprintf("/* unsupported operator %s */ 1=1", c.Op), nil
	}
}
