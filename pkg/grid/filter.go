package grid

import (
	"fmt"
	"strings"
)

// Operator is a filter comparison.
type Operator string

// Filter operators.
const (
	OpEq Operator = "=="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpGt Operator = ">"
	OpLe Operator = "<="
	OpGe Operator = ">="
)

// ParseOperator parses an operator. The empty string and "=" mean equality.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.TrimSpace(s)); op {
	case "", "=":
		return OpEq, nil
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return op, nil
	default:
		return "", fmt.Errorf("unknown filter operator %q", s)
	}
}

// Predicate tests one field of a row against a value.
type Predicate struct {
	Field string
	Op    Operator
	Value any
}

// Match evaluates the predicate. Values compare numerically when both sides
// are numbers or numeric text, otherwise by their text form.
func (p Predicate) Match(row Row) bool {
	c := looseCompare(row[p.Field], p.Value)
	switch p.Op {
	case "", OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpGt:
		return c > 0
	case OpLe:
		return c <= 0
	case OpGe:
		return c >= 0
	default:
		return false
	}
}

func looseCompare(a, b any) int {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return cmpOrdered(fa, fb)
	}
	return strings.Compare(formatText(a, nil), formatText(b, nil))
}

// MatchAny reports whether row satisfies at least one predicate.
func MatchAny(preds []Predicate, row Row) bool {
	for _, p := range preds {
		if p.Match(row) {
			return true
		}
	}
	return false
}

// SetFilter activates filtering with OR-combined predicates. Row order is
// not touched.
func (g *Grid) SetFilter(preds []Predicate) error {
	normalized, err := g.normalizeFilter(preds)
	if err != nil {
		return err
	}
	g.filter = normalized
	g.filtering = len(normalized) > 0
	g.logger.Debug("filter applied", "predicates", len(preds))
	g.invalidate()
	return nil
}

// ClearFilter makes every row visible again.
func (g *Grid) ClearFilter() {
	g.filter = nil
	g.filtering = false
	g.invalidate()
}

// Filter returns the active predicates, nil when filtering is off.
func (g *Grid) Filter() []Predicate { return clonePredicates(g.filter) }

// Filtering reports whether a filter is active.
func (g *Grid) Filtering() bool { return g.filtering }

// normalizeFilter validates preds and returns a copy with every operator in
// its canonical form, so "=" and " == " match like "==".
func (g *Grid) normalizeFilter(preds []Predicate) ([]Predicate, error) {
	out := clonePredicates(preds)
	for i, p := range out {
		field := fmt.Sprintf("filter[%d]", i)
		if !g.cols.has(p.Field) {
			return nil, configErrorf(field, "unknown column %q", p.Field)
		}
		op, err := ParseOperator(string(p.Op))
		if err != nil {
			return nil, configErrorf(field, "%v", err)
		}
		out[i].Op = op
	}
	return out, nil
}

// RowVisible reports whether row id passes the filter.
func (g *Grid) RowVisible(id int) bool {
	if id < 0 || id >= g.store.Len() {
		return false
	}
	return g.rowVisible(id)
}

func (g *Grid) rowVisible(id int) bool {
	return !g.filtering || MatchAny(g.filter, g.store.row(id))
}

// VisibleRows returns the ids of visible rows in order.
func (g *Grid) VisibleRows() []int {
	out := make([]int, 0, g.store.Len())
	for id := range g.store.Len() {
		if g.rowVisible(id) {
			out = append(out, id)
		}
	}
	return out
}

func clonePredicates(preds []Predicate) []Predicate {
	if len(preds) == 0 {
		return nil
	}
	return append([]Predicate(nil), preds...)
}
