// Package clause represents WHERE conditions, joins, ordering, and grouping
// as structured data and renders them to SQL fragments. Identifier slots
// accept only allow-list tokens, and every data value is routed through the
// positional binder, so no rendered fragment can carry unvalidated text.
package clause

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

// Comparator is the closed set of filter operators.
type Comparator int

const (
	Equal Comparator = iota
	NotEqual
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
	InSet
	Like
	IsNull
	IsNotNull
)

func (c Comparator) symbol() string {
	switch c {
	case Equal:
		return "="
	case NotEqual:
		return "<>"
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	case InSet:
		return "IN"
	case Like:
		return "LIKE"
	case IsNull:
		return "IS NULL"
	case IsNotNull:
		return "IS NOT NULL"
	default:
		return ""
	}
}

// Predicate is a renderable WHERE condition. The set of implementations is
// closed; callers combine them with And and Or rather than concatenating
// fragments.
type Predicate interface {
	// Render emits the SQL fragment and binds its values in left-to-right
	// order.
	Render(b *value.Binder) (string, error)

	predicate()
}

type filter struct {
	col  allowlist.ColumnRef
	cmp  Comparator
	vals []value.Value
}

func (f *filter) predicate() {}

func (f *filter) Render(b *value.Binder) (string, error) {
	if f.col.IsZero() {
		return "", fmt.Errorf("%w: filter column is not a validated reference", apperrors.ErrInvalidArgument)
	}
	switch f.cmp {
	case IsNull, IsNotNull:
		return f.col.SQL() + " " + f.cmp.symbol(), nil
	case InSet:
		if len(f.vals) == 0 {
			return "", fmt.Errorf("%w: IN requires at least one value", apperrors.ErrInvalidArgument)
		}
		places := make([]string, len(f.vals))
		for i, v := range f.vals {
			places[i] = b.Placeholder(v)
		}
		return f.col.SQL() + " IN (" + strings.Join(places, ", ") + ")", nil
	default:
		sym := f.cmp.symbol()
		if sym == "" {
			return "", fmt.Errorf("%w: unknown comparator", apperrors.ErrInvalidArgument)
		}
		return f.col.SQL() + " " + sym + " " + b.Placeholder(f.vals[0]), nil
	}
}

// Compare builds a binary comparison filter. IsNull/IsNotNull and InSet have
// their own constructors; passing them here fails at render time.
func Compare(col allowlist.ColumnRef, cmp Comparator, v value.Value) Predicate {
	return &filter{col: col, cmp: cmp, vals: []value.Value{v}}
}

// Eq builds column = value.
func Eq(col allowlist.ColumnRef, v value.Value) Predicate {
	return Compare(col, Equal, v)
}

// Neq builds column <> value.
func Neq(col allowlist.ColumnRef, v value.Value) Predicate {
	return Compare(col, NotEqual, v)
}

// Lt builds column < value.
func Lt(col allowlist.ColumnRef, v value.Value) Predicate {
	return Compare(col, Less, v)
}

// Lte builds column <= value.
func Lte(col allowlist.ColumnRef, v value.Value) Predicate {
	return Compare(col, LessOrEqual, v)
}

// Gt builds column > value.
func Gt(col allowlist.ColumnRef, v value.Value) Predicate {
	return Compare(col, Greater, v)
}

// Gte builds column >= value.
func Gte(col allowlist.ColumnRef, v value.Value) Predicate {
	return Compare(col, GreaterOrEqual, v)
}

// In builds column IN ($1, $2, ...) with one placeholder per element.
func In(col allowlist.ColumnRef, vals ...value.Value) Predicate {
	return &filter{col: col, cmp: InSet, vals: vals}
}

// LikePattern builds column LIKE pattern; the pattern is bound, never
// interpolated.
func LikePattern(col allowlist.ColumnRef, pattern string) Predicate {
	return Compare(col, Like, value.Text(pattern))
}

// Null builds column IS NULL.
func Null(col allowlist.ColumnRef) Predicate {
	return &filter{col: col, cmp: IsNull}
}

// NotNull builds column IS NOT NULL.
func NotNull(col allowlist.ColumnRef) Predicate {
	return &filter{col: col, cmp: IsNotNull}
}

type group struct {
	op    string
	preds []Predicate
}

func (g *group) predicate() {}

func (g *group) Render(b *value.Binder) (string, error) {
	if len(g.preds) == 0 {
		return "", fmt.Errorf("%w: empty %s group", apperrors.ErrInvalidArgument, g.op)
	}
	parts := make([]string, len(g.preds))
	for i, p := range g.preds {
		frag, err := p.Render(b)
		if err != nil {
			return "", err
		}
		parts[i] = frag
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+g.op+" ") + ")", nil
}

// And combines predicates with AND. Nesting depth is unbounded.
func And(preds ...Predicate) Predicate {
	return &group{op: "AND", preds: preds}
}

// Or combines predicates with OR; the group renders parenthesized so caller
// grouping survives composition.
func Or(preds ...Predicate) Predicate {
	return &group{op: "OR", preds: preds}
}
