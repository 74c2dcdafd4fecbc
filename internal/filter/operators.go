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
	"regexp"
	"strconv"
	"strings"

	"github.com/loomtable/vgrid/grid"
)

// Predicate tests a single cell value against a compiled condition.
type Predicate func(grid.Value) bool

// compileKey identifies a cached compiled predicate by operator and the
// digest of its operand value(s), so repeated column filters with the
// same (op, value) pair reuse one compiled closure (spec §4.10: "Compiler
// caches by (operator, value-digest)").
type compileKey struct {
	op     grid.Operator
	digest string
}

func digest(v any) string {
	return fmt.Sprintf("%v", v)
}

// Compiler compiles grid.Condition values into Predicates, caching by
// (operator, value-digest).
type Compiler struct {
	cache map[compileKey]Predicate
}

// NewCompiler creates an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{cache: make(map[compileKey]Predicate)}
}

// Compile returns the Predicate for cond, from cache if a predicate was
// already compiled for this exact (operator, value) pair.
func (c *Compiler) Compile(cond grid.Condition) (Predicate, error) {
	key := compileKey{op: cond.Op, digest: digest(cond.Value) + "|" + digest(cond.High)}
	if p, ok := c.cache[key]; ok {
		return p, nil
	}

	p, err := compileOne(cond)
	if err != nil {
		return nil, err
	}
	c.cache[key] = p
	return p, nil
}

func compileOne(cond grid.Condition) (Predicate, error) {
	switch cond.Op {
	case grid.OpBlank:
		return func(v grid.Value) bool { return v.IsNull || v.Formatted == "" }, nil
	case grid.OpNotBlank:
		return func(v grid.Value) bool { return !v.IsNull && v.Formatted != "" }, nil
	case grid.OpEquals:
		return compareString(cond.Value, func(a, b string) bool { return strings.EqualFold(a, b) },
			func(a, b float64) bool { return a == b }), nil
	case grid.OpNotEquals:
		return negate(compareString(cond.Value, func(a, b string) bool { return strings.EqualFold(a, b) },
			func(a, b float64) bool { return a == b })), nil
	case grid.OpContains:
		return substringOp(cond.Value, strings.Contains), nil
	case grid.OpNotContains:
		return negate(substringOp(cond.Value, strings.Contains)), nil
	case grid.OpStartsWith:
		return substringOp(cond.Value, strings.HasPrefix), nil
	case grid.OpEndsWith:
		return substringOp(cond.Value, strings.HasSuffix), nil
	case grid.OpGreaterThan:
		return compareString(cond.Value, func(a, b string) bool { return a > b },
			func(a, b float64) bool { return a > b }), nil
	case grid.OpLessThan:
		return compareString(cond.Value, func(a, b string) bool { return a < b },
			func(a, b float64) bool { return a < b }), nil
	case grid.OpGreaterThanOrEqual:
		return compareString(cond.Value, func(a, b string) bool { return a >= b },
			func(a, b float64) bool { return a >= b }), nil
	case grid.OpLessThanOrEqual:
		return compareString(cond.Value, func(a, b string) bool { return a <= b },
			func(a, b float64) bool { return a <= b }), nil
	case grid.OpBetween:
		return betweenOp(cond.Value, cond.High), nil
	case grid.OpIn:
		return inOp(cond.Value, false), nil
	case grid.OpNotIn:
		return inOp(cond.Value, true), nil
	case grid.OpRegex:
		return regexOp(cond.Value)
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", grid.ErrValidation, cond.Op)
	}
}

func negate(p Predicate) Predicate {
	return func(v grid.Value) bool { return !p(v) }
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// compareString builds a predicate that compares numerically when both
// the cell and the operand parse as numbers, otherwise falls back to a
// locale-naive case-insensitive string compare (spec §9 open question:
// "coerce-to-string, locale-compare" for mixed-type columns).
func compareString(operand any, strCmp func(a, b string) bool, numCmp func(a, b float64) bool) Predicate {
	operandStr := fmt.Sprintf("%v", operand)
	operandNum, operandIsNum := parseFloat(operandStr)

	return func(v grid.Value) bool {
		if v.IsNull {
			return false
		}
		if operandIsNum {
			if n, ok := parseFloat(v.Formatted); ok {
				return numCmp(n, operandNum)
			}
		}
		return strCmp(strings.ToLower(v.Formatted), strings.ToLower(operandStr))
	}
}

func substringOp(operand any, test func(s, substr string) bool) Predicate {
	operandStr := strings.ToLower(fmt.Sprintf("%v", operand))
	return func(v grid.Value) bool {
		if v.IsNull {
			return false
		}
		return test(strings.ToLower(v.Formatted), operandStr)
	}
}

func betweenOp(low, high any) Predicate {
	lowStr := fmt.Sprintf("%v", low)
	highStr := fmt.Sprintf("%v", high)
	lowNum, lowIsNum := parseFloat(lowStr)
	highNum, highIsNum := parseFloat(highStr)

	return func(v grid.Value) bool {
		if v.IsNull {
			return false
		}
		if lowIsNum && highIsNum {
			if n, ok := parseFloat(v.Formatted); ok {
				return n >= lowNum && n <= highNum
			}
		}
		s := strings.ToLower(v.Formatted)
		return s >= strings.ToLower(lowStr) && s <= strings.ToLower(highStr)
	}
}

func inOp(operand any, negated bool) Predicate {
	var set []string
	if items, ok := operand.([]string); ok {
		set = items
	} else if items, ok := operand.([]any); ok {
		for _, it := range items {
			set = append(set, fmt.Sprintf("%v", it))
		}
	} else {
		set = []string{fmt.Sprintf("%v", operand)}
	}

	lower := make(map[string]bool, len(set))
	for _, s := range set {
		lower[strings.ToLower(s)] = true
	}

	return func(v grid.Value) bool {
		if v.IsNull {
			return negated
		}
		member := lower[strings.ToLower(v.Formatted)]
		if negated {
			return !member
		}
		return member
	}
}

func regexOp(operand any) (Predicate, error) {
	pattern, _ := operand.(string)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", grid.ErrValidation, pattern, err)
	}
	return func(v grid.Value) bool {
		if v.IsNull {
			return false
		}
		return re.MatchString(v.Formatted)
	}, nil
}
