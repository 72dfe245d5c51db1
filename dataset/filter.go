package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMalformedFilter = errors.New("filter must be a field,operator,value triplet")
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// Operator compares a row value against a filter value
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// ParseOperator validates an operator string. "==" is accepted as an alias of "=".
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.TrimSpace(s)); op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return op, nil
	case "==":
		return OpEqual, nil
	}
	return "", fmt.Errorf("%q, %w", s, ErrUnknownOperator)
}

// Filter matches rows whose field compares true against a value. Values that parse as numbers
// are compared numerically against numeric cells; anything else is compared as a string.
type Filter struct {
	Field string
	Op    Operator
	Value string

	num   float64
	isNum bool
}

// NewFilter validates and builds a filter
func NewFilter(field, op, value string) (Filter, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Filter{}, fmt.Errorf("empty field, %w", ErrMalformedFilter)
	}
	o, err := ParseOperator(op)
	if err != nil {
		return Filter{}, err
	}
	value = strings.TrimSpace(value)
	f := Filter{
		Field: field,
		Op:    o,
		Value: value,
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(v) {
		f.num = v
		f.isNum = true
	}
	return f, nil
}

// ParseFilters parses a semicolon delimited list of comma delimited field,operator,value
// triplets, for example "temperature,<,3000;alloy,=,UCSB-1". An empty expression yields no
// filters.
func ParseFilters(expr string) ([]Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var filters []Filter
	for _, triplet := range strings.Split(expr, ";") {
		if strings.TrimSpace(triplet) == "" {
			continue
		}
		pcs := strings.Split(triplet, ",")
		if len(pcs) != 3 {
			return nil, fmt.Errorf("%q has %d fields, %w", triplet, len(pcs), ErrMalformedFilter)
		}
		f, err := NewFilter(pcs[0], pcs[1], pcs[2])
		if err != nil {
			return nil, fmt.Errorf("unable to parse filter %q, %w", triplet, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Match reports whether a cell value satisfies the filter
func (f Filter) Match(cell string) bool {
	cell = strings.TrimSpace(cell)
	if f.isNum {
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			// NaN is unordered and equal to nothing
			if math.IsNaN(v) {
				return f.Op == OpNotEqual
			}
			return compare(f.Op, cmpFloat(v, f.num))
		}
	}
	return compare(f.Op, strings.Compare(cell, f.Value))
}

// String renders the filter as a space separated triplet for notes and reports
func (f Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.Field, f.Op, f.Value)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(op Operator, c int) bool {
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	}
	return false
}
