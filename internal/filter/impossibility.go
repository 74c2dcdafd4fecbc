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

	"github.com/loomtable/vgrid/grid"
)

// Diagnostic is a best-effort, advisory warning about an AND group that
// can never be satisfied. Diagnostics never block the filter from being
// applied (spec §4.10: "surface as diagnostics without refusing to
// apply").
type Diagnostic struct {
	Column  int
	Message string
}

// DetectImpossible scans cf's AND conditions for the patterns spec §4.10
// names: col = A AND col = B with A != B, col > x AND col < y with x > y,
// and exact duplicate conditions.
func DetectImpossible(cf grid.ColumnFilter) []Diagnostic {
	if cf.Logic != grid.LogicAND {
		return nil
	}

	var diags []Diagnostic
	seen := make(map[string]bool)
	var equalsValue any
	haveEquals := false
	var gtValue, ltValue any
	haveGT, haveLT := false, false

	for _, c := range cf.Conditions {
		key := fmt.Sprintf("%s|%v|%v", c.Op, c.Value, c.High)
		if seen[key] {
			diags = append(diags, Diagnostic{
				Column:  cf.Column,
				Message: fmt.Sprintf("duplicate condition %s %v within AND group", c.Op, c.Value),
			})
		}
		seen[key] = true

		switch c.Op {
		case grid.OpEquals:
			if haveEquals && !equalValue(equalsValue, c.Value) {
				diags = append(diags, Diagnostic{
					Column:  cf.Column,
					Message: fmt.Sprintf("column %d: equals %v AND equals %v can never both hold", cf.Column, equalsValue, c.Value),
				})
			}
			equalsValue = c.Value
			haveEquals = true
		case grid.OpGreaterThan, grid.OpGreaterThanOrEqual:
			gtValue = c.Value
			haveGT = true
		case grid.OpLessThan, grid.OpLessThanOrEqual:
			ltValue = c.Value
			haveLT = true
		}
	}

	if haveGT && haveLT {
		gt, gtOK := toFloat(gtValue)
		lt, ltOK := toFloat(ltValue)
		if gtOK && ltOK && gt > lt {
			diags = append(diags, Diagnostic{
				Column:  cf.Column,
				Message: fmt.Sprintf("column %d: greaterThan %v AND lessThan %v is never satisfiable", cf.Column, gtValue, ltValue),
			})
		}
	}

	return diags
}

func equalValue(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	return parseFloat(fmt.Sprintf("%v", v))
}
