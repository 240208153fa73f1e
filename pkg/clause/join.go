package clause

import (
	"fmt"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
)

// JoinKind is the closed set of supported join types.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (k JoinKind) keyword() string {
	switch k {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL JOIN"
	default:
		return ""
	}
}

// Join is one join specification. Joins render in the order the caller added
// them; no reordering is performed.
type Join struct {
	kind  JoinKind
	table allowlist.TableRef
	left  allowlist.ColumnRef
	right allowlist.ColumnRef
}

// NewJoin builds a join of the given kind on left = right.
func NewJoin(kind JoinKind, table allowlist.TableRef, left, right allowlist.ColumnRef) Join {
	return Join{kind: kind, table: table, left: left, right: right}
}

// Inner builds an INNER JOIN on left = right.
func Inner(table allowlist.TableRef, left, right allowlist.ColumnRef) Join {
	return NewJoin(InnerJoin, table, left, right)
}

// Left builds a LEFT JOIN on left = right.
func Left(table allowlist.TableRef, left, right allowlist.ColumnRef) Join {
	return NewJoin(LeftJoin, table, left, right)
}

// Render emits the join fragment.
func (j Join) Render() (string, error) {
	if j.table.IsZero() || j.left.IsZero() || j.right.IsZero() {
		return "", fmt.Errorf("%w: join requires validated table and column references", apperrors.ErrInvalidArgument)
	}
	kw := j.kind.keyword()
	if kw == "" {
		return "", fmt.Errorf("%w: unknown join kind", apperrors.ErrInvalidArgument)
	}
	return fmt.Sprintf("%s %s ON %s = %s", kw, j.table.SQL(), j.left.SQL(), j.right.SQL()), nil
}
