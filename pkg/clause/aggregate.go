package clause

import (
	"fmt"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

// AggFunc is the closed set of aggregate functions usable in projections and
// HAVING conditions.
type AggFunc int

const (
	CountFunc AggFunc = iota
	SumFunc
	AvgFunc
	MinFunc
	MaxFunc
)

func (f AggFunc) keyword() string {
	switch f {
	case CountFunc:
		return "count"
	case SumFunc:
		return "sum"
	case AvgFunc:
		return "avg"
	case MinFunc:
		return "min"
	case MaxFunc:
		return "max"
	default:
		return ""
	}
}

// Aggregate is an aggregate over a validated column.
type Aggregate struct {
	fn  AggFunc
	col allowlist.ColumnRef
}

// Count builds count(col).
func Count(col allowlist.ColumnRef) Aggregate {
	return Aggregate{fn: CountFunc, col: col}
}

// Sum builds sum(col).
func Sum(col allowlist.ColumnRef) Aggregate {
	return Aggregate{fn: SumFunc, col: col}
}

// Avg builds avg(col).
func Avg(col allowlist.ColumnRef) Aggregate {
	return Aggregate{fn: AvgFunc, col: col}
}

// Min builds min(col).
func Min(col allowlist.ColumnRef) Aggregate {
	return Aggregate{fn: MinFunc, col: col}
}

// Max builds max(col).
func Max(col allowlist.ColumnRef) Aggregate {
	return Aggregate{fn: MaxFunc, col: col}
}

// Render emits the aggregate expression.
func (a Aggregate) Render() (string, error) {
	if a.col.IsZero() {
		return "", fmt.Errorf("%w: aggregate column is not a validated reference", apperrors.ErrInvalidArgument)
	}
	kw := a.fn.keyword()
	if kw == "" {
		return "", fmt.Errorf("%w: unknown aggregate function", apperrors.ErrInvalidArgument)
	}
	return kw + "(" + a.col.SQL() + ")", nil
}

// Name returns the result-row key for the aggregate projection, e.g.
// "count_amount".
func (a Aggregate) Name() string {
	return a.fn.keyword() + "_" + a.col.Name()
}

// Having is one HAVING condition over an aggregate. Only the binary
// comparators apply; set-membership and null tests are not part of the HAVING
// surface.
type Having struct {
	agg Aggregate
	cmp Comparator
	val value.Value
}

// NewHaving builds aggregate <cmp> value.
func NewHaving(agg Aggregate, cmp Comparator, v value.Value) Having {
	return Having{agg: agg, cmp: cmp, val: v}
}

// Render emits the condition fragment and binds its value.
func (h Having) Render(b *value.Binder) (string, error) {
	expr, err := h.agg.Render()
	if err != nil {
		return "", err
	}
	switch h.cmp {
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual:
		return expr + " " + h.cmp.symbol() + " " + b.Placeholder(h.val), nil
	default:
		return "", fmt.Errorf("%w: comparator not usable in HAVING", apperrors.ErrInvalidArgument)
	}
}
