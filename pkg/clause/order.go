package clause

import (
	"fmt"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
)

// Direction is the sort direction of one ORDER BY term.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// OrderBy is one ORDER BY term. Terms render in the order the caller added
// them.
type OrderBy struct {
	col allowlist.ColumnRef
	dir Direction
}

// Asc orders by col ascending.
func Asc(col allowlist.ColumnRef) OrderBy {
	return OrderBy{col: col, dir: Ascending}
}

// Desc orders by col descending.
func Desc(col allowlist.ColumnRef) OrderBy {
	return OrderBy{col: col, dir: Descending}
}

// Render emits the term fragment.
func (o OrderBy) Render() (string, error) {
	if o.col.IsZero() {
		return "", fmt.Errorf("%w: order-by column is not a validated reference", apperrors.ErrInvalidArgument)
	}
	if o.dir == Descending {
		return o.col.SQL() + " DESC", nil
	}
	return o.col.SQL() + " ASC", nil
}
