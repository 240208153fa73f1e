// Package statement composes SELECT, INSERT, UPDATE, and DELETE statements
// from validated identifier references and structured clauses. A Request is
// built once, assembled once, and discarded; assembly never executes
// anything.
package statement

import (
	"fmt"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/clause"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

// Kind is the closed set of statement kinds. Assembly switches over it
// exhaustively so the unscoped-mutation guard cannot be bypassed for any
// kind.
type Kind int

const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
)

// String returns the SQL keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

type projKind int

const (
	projColumn projKind = iota
	projStar
	projAggregate
)

type projection struct {
	kind projKind
	col  allowlist.ColumnRef
	star allowlist.Star
	agg  clause.Aggregate
}

type assignment struct {
	col allowlist.ColumnRef
	val value.Value
}

// Request is a caller's full statement intent. Builder methods record the
// first usage error and Assemble reports it before any SQL is rendered.
type Request struct {
	kind        Kind
	table       allowlist.TableRef
	distinct    bool
	projections []projection
	joins       []clause.Join
	where       []clause.Predicate
	groupBy     []allowlist.ColumnRef
	having      []clause.Having
	orderBy     []clause.OrderBy
	limit       *int64
	offset      *int64
	assignments []assignment
	insertRows  [][]value.Value

	err error
}

// Select starts a SELECT request against the validated target table.
func Select(table allowlist.TableRef) *Request {
	return &Request{kind: KindSelect, table: table}
}

// Insert starts an INSERT request. Use Set for a single row, or Columns plus
// Row for multi-row inserts.
func Insert(table allowlist.TableRef) *Request {
	return &Request{kind: KindInsert, table: table}
}

// Update starts an UPDATE request. Assembly refuses it without a Where.
func Update(table allowlist.TableRef) *Request {
	return &Request{kind: KindUpdate, table: table}
}

// Delete starts a DELETE request. Assembly refuses it without a Where.
func Delete(table allowlist.TableRef) *Request {
	return &Request{kind: KindDelete, table: table}
}

func (r *Request) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Request) requireKind(op string, kinds ...Kind) bool {
	for _, k := range kinds {
		if r.kind == k {
			return true
		}
	}
	r.setErr(fmt.Errorf("%w: %s does not apply to %s", apperrors.ErrInvalidArgument, op, r.kind))
	return false
}

// Columns adds validated columns to the projection (SELECT) or the column
// list (INSERT).
func (r *Request) Columns(cols ...allowlist.ColumnRef) *Request {
	if !r.requireKind("Columns", KindSelect, KindInsert) {
		return r
	}
	for _, c := range cols {
		r.projections = append(r.projections, projection{kind: projColumn, col: c})
	}
	return r
}

// Star adds a validated wildcard projection.
func (r *Request) Star(s allowlist.Star) *Request {
	if !r.requireKind("Star", KindSelect) {
		return r
	}
	r.projections = append(r.projections, projection{kind: projStar, star: s})
	return r
}

// Aggregate adds an aggregate projection.
func (r *Request) Aggregate(a clause.Aggregate) *Request {
	if !r.requireKind("Aggregate", KindSelect) {
		return r
	}
	r.projections = append(r.projections, projection{kind: projAggregate, agg: a})
	return r
}

// Distinct marks the projection DISTINCT.
func (r *Request) Distinct() *Request {
	if !r.requireKind("Distinct", KindSelect) {
		return r
	}
	r.distinct = true
	return r
}

// Join appends a join; joins render in the order added.
func (r *Request) Join(joins ...clause.Join) *Request {
	if !r.requireKind("Join", KindSelect) {
		return r
	}
	r.joins = append(r.joins, joins...)
	return r
}

// Where appends filter predicates; multiple predicates combine with AND.
// Explicit OR grouping is expressed with clause.Or, never by fragment
// concatenation.
func (r *Request) Where(preds ...clause.Predicate) *Request {
	if !r.requireKind("Where", KindSelect, KindUpdate, KindDelete) {
		return r
	}
	r.where = append(r.where, preds...)
	return r
}

// GroupBy appends grouping columns.
func (r *Request) GroupBy(cols ...allowlist.ColumnRef) *Request {
	if !r.requireKind("GroupBy", KindSelect) {
		return r
	}
	r.groupBy = append(r.groupBy, cols...)
	return r
}

// Having appends aggregate conditions; multiple conditions combine with AND.
func (r *Request) Having(conds ...clause.Having) *Request {
	if !r.requireKind("Having", KindSelect) {
		return r
	}
	r.having = append(r.having, conds...)
	return r
}

// OrderBy appends ordering terms in the order given.
func (r *Request) OrderBy(terms ...clause.OrderBy) *Request {
	if !r.requireKind("OrderBy", KindSelect) {
		return r
	}
	r.orderBy = append(r.orderBy, terms...)
	return r
}

// Limit caps the row count. Zero is legal and returns zero rows; negative
// values are rejected before any SQL is rendered.
func (r *Request) Limit(n int64) *Request {
	if !r.requireKind("Limit", KindSelect) {
		return r
	}
	if n < 0 {
		r.setErr(fmt.Errorf("%w: negative limit %d", apperrors.ErrInvalidArgument, n))
		return r
	}
	r.limit = &n
	return r
}

// Offset skips rows. Zero is legal; negative values are rejected before any
// SQL is rendered.
func (r *Request) Offset(n int64) *Request {
	if !r.requireKind("Offset", KindSelect) {
		return r
	}
	if n < 0 {
		r.setErr(fmt.Errorf("%w: negative offset %d", apperrors.ErrInvalidArgument, n))
		return r
	}
	r.offset = &n
	return r
}

// Set assigns a value to a validated column. For UPDATE it adds one SET
// clause; for INSERT it appends to the column list and the single implicit
// row. Assignment order is preserved so columns and placeholders line up
// deterministically.
func (r *Request) Set(col allowlist.ColumnRef, v value.Value) *Request {
	if !r.requireKind("Set", KindInsert, KindUpdate) {
		return r
	}
	r.assignments = append(r.assignments, assignment{col: col, val: v})
	return r
}

// Row appends one VALUES row for a multi-row INSERT. The row arity must
// match the Columns list.
func (r *Request) Row(vals ...value.Value) *Request {
	if !r.requireKind("Row", KindInsert) {
		return r
	}
	r.insertRows = append(r.insertRows, vals)
	return r
}

// Kind returns the statement kind of the request.
func (r *Request) Kind() Kind {
	return r.kind
}
