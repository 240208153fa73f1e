// Package allowlist validates dynamic SQL identifiers against a static,
// caller-supplied set of permitted schema/table/column names.
//
// The validated reference types (TableRef, ColumnRef, Star) have no exported
// fields and no public constructors besides the AllowList methods, so the only
// way to get an identifier into statement text is through a successful
// validation. Raw strings are never accepted in identifier positions
// downstream.
package allowlist

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
)

// Kind tags which identifier class a candidate claims to be.
type Kind int

const (
	KindSchema Kind = iota
	KindTable
	KindColumn
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindTable:
		return "table"
	case KindColumn:
		return "column"
	default:
		return "unknown"
	}
}

// IdentifierRejectedError reports a candidate name that is not present in the
// allow-list. It is terminal for the request; callers must not retry with a
// mutated name.
type IdentifierRejectedError struct {
	Candidate string
	Kind      Kind
}

func (e *IdentifierRejectedError) Error() string {
	return fmt.Sprintf("%s %q is not in the allow-list", e.Kind, e.Candidate)
}

// Is makes errors.Is(err, apperrors.ErrIdentifierRejected) hold.
func (e *IdentifierRejectedError) Is(target error) bool {
	return target == apperrors.ErrIdentifierRejected
}

// Entry is one permitted name. Column is empty for a whole-table entry, which
// permits referencing the table itself and its wildcard projection.
type Entry struct {
	Schema string
	Table  string
	Column string
}

type tableKey struct {
	schema, table string
}

type columnKey struct {
	schema, table, column string
}

// AllowList is the immutable set of permitted identifiers. It is safe for
// concurrent use; nothing mutates it after New returns.
type AllowList struct {
	// wholeTables holds explicit (schema, table) entries; only these admit a
	// wildcard projection.
	wholeTables map[tableKey]struct{}
	// tables holds every table that may be referenced at all, including
	// tables implied by column entries.
	tables  map[tableKey]struct{}
	columns map[columnKey]struct{}
}

// New builds an AllowList from the application owner's entries. A column entry
// implies permission to reference its table (a column cannot be used without
// naming the table), but not the table's other columns and not the wildcard.
func New(entries ...Entry) *AllowList {
	a := &AllowList{
		wholeTables: make(map[tableKey]struct{}),
		tables:      make(map[tableKey]struct{}),
		columns:     make(map[columnKey]struct{}),
	}
	for _, e := range entries {
		tk := tableKey{schema: e.Schema, table: e.Table}
		a.tables[tk] = struct{}{}
		if e.Column == "" {
			a.wholeTables[tk] = struct{}{}
			continue
		}
		a.columns[columnKey{schema: e.Schema, table: e.Table, column: e.Column}] = struct{}{}
	}
	return a
}

// Table validates a (schema, table) pair. Matching is exact and
// case-sensitive; there is no normalization, wildcarding, or prefixing.
func (a *AllowList) Table(schema, table string) (TableRef, error) {
	if _, ok := a.tables[tableKey{schema: schema, table: table}]; !ok {
		return TableRef{}, &IdentifierRejectedError{Candidate: table, Kind: KindTable}
	}
	return TableRef{schema: schema, table: table}, nil
}

// Column validates a (schema, table, column) triple against an explicit
// column entry.
func (a *AllowList) Column(schema, table, column string) (ColumnRef, error) {
	if _, ok := a.columns[columnKey{schema: schema, table: table, column: column}]; !ok {
		return ColumnRef{}, &IdentifierRejectedError{Candidate: column, Kind: KindColumn}
	}
	return ColumnRef{schema: schema, table: table, column: column}, nil
}

// Star validates a wildcard projection of a table. It requires a whole-table
// entry; listing individual columns does not grant the wildcard.
func (a *AllowList) Star(schema, table string) (Star, error) {
	if _, ok := a.wholeTables[tableKey{schema: schema, table: table}]; !ok {
		return Star{}, &IdentifierRejectedError{Candidate: table, Kind: KindTable}
	}
	return Star{table: TableRef{schema: schema, table: table}}, nil
}

// TableRef is a validated table reference.
type TableRef struct {
	schema, table string
}

// SQL renders the schema-qualified, double-quoted table name.
func (t TableRef) SQL() string {
	return pgx.Identifier{t.schema, t.table}.Sanitize()
}

// IsZero reports whether the ref was never produced by a validation.
// Downstream builders reject zero refs before rendering.
func (t TableRef) IsZero() bool {
	return t.table == ""
}

func (t TableRef) String() string {
	return t.schema + "." + t.table
}

// ColumnRef is a validated column reference.
type ColumnRef struct {
	schema, table, column string
}

// SQL renders the fully qualified, double-quoted column name.
func (c ColumnRef) SQL() string {
	return pgx.Identifier{c.schema, c.table, c.column}.Sanitize()
}

// Name returns the bare column name, used as the result-row key.
func (c ColumnRef) Name() string {
	return c.column
}

// SQLName renders the double-quoted bare column name. INSERT column lists and
// UPDATE SET targets require the unqualified form.
func (c ColumnRef) SQLName() string {
	return pgx.Identifier{c.column}.Sanitize()
}

// Table returns the ref of the column's table.
func (c ColumnRef) Table() TableRef {
	return TableRef{schema: c.schema, table: c.table}
}

// IsZero reports whether the ref was never produced by a validation.
func (c ColumnRef) IsZero() bool {
	return c.column == ""
}

func (c ColumnRef) String() string {
	return c.schema + "." + c.table + "." + c.column
}

// Star is a validated "all columns of table" projection marker.
type Star struct {
	table TableRef
}

// SQL renders the quoted table name followed by ".*".
func (s Star) SQL() string {
	return s.table.SQL() + ".*"
}

// Table returns the table the wildcard projects.
func (s Star) Table() TableRef {
	return s.table
}

// IsZero reports whether the marker was never produced by a validation.
func (s Star) IsZero() bool {
	return s.table.IsZero()
}
