package statement

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

// Assembled is the final statement text plus its ordered parameter list.
// The text contains only validated identifiers and $n placeholders.
type Assembled struct {
	sql  string
	args []any
	kind Kind
}

// SQL returns the statement text.
func (a *Assembled) SQL() string {
	return a.sql
}

// Args returns the ordered parameter list; index i carries the value for
// placeholder $(i+1).
func (a *Assembled) Args() []any {
	return a.args
}

// Kind returns the statement kind.
func (a *Assembled) Kind() Kind {
	return a.kind
}

// Assemble validates the request shape and renders it into one statement.
// Validation and shape errors surface before any SQL is produced and are
// terminal for the request.
func (r *Request) Assemble() (*Assembled, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.table.IsZero() {
		return nil, fmt.Errorf("%w: target table is not a validated reference", apperrors.ErrInvalidArgument)
	}

	switch r.kind {
	case KindSelect:
		return r.assembleSelect()
	case KindInsert:
		return r.assembleInsert()
	case KindUpdate:
		return r.assembleUpdate()
	case KindDelete:
		return r.assembleDelete()
	default:
		return nil, fmt.Errorf("%w: unknown statement kind", apperrors.ErrInvalidArgument)
	}
}

func (r *Request) assembleSelect() (*Assembled, error) {
	if len(r.projections) == 0 {
		return nil, fmt.Errorf("%w: SELECT needs at least one column, aggregate, or wildcard marker", apperrors.ErrEmptyProjection)
	}

	b := &value.Binder{}
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if r.distinct {
		sb.WriteString("DISTINCT ")
	}

	projs := make([]string, len(r.projections))
	for i, p := range r.projections {
		frag, err := p.render()
		if err != nil {
			return nil, err
		}
		projs[i] = frag
	}
	sb.WriteString(strings.Join(projs, ", "))

	sb.WriteString(" FROM ")
	sb.WriteString(r.table.SQL())

	for _, j := range r.joins {
		frag, err := j.Render()
		if err != nil {
			return nil, err
		}
		sb.WriteString(" ")
		sb.WriteString(frag)
	}

	if err := renderWhere(&sb, b, r); err != nil {
		return nil, err
	}

	if len(r.groupBy) > 0 {
		cols := make([]string, len(r.groupBy))
		for i, c := range r.groupBy {
			if c.IsZero() {
				return nil, fmt.Errorf("%w: group-by column is not a validated reference", apperrors.ErrInvalidArgument)
			}
			cols[i] = c.SQL()
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(cols, ", "))
	}

	if len(r.having) > 0 {
		if len(r.groupBy) == 0 {
			return nil, fmt.Errorf("%w: HAVING requires GROUP BY", apperrors.ErrInvalidArgument)
		}
		conds := make([]string, len(r.having))
		for i, h := range r.having {
			frag, err := h.Render(b)
			if err != nil {
				return nil, err
			}
			conds[i] = frag
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if len(r.orderBy) > 0 {
		terms := make([]string, len(r.orderBy))
		for i, o := range r.orderBy {
			frag, err := o.Render()
			if err != nil {
				return nil, err
			}
			terms[i] = frag
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	// LIMIT and OFFSET values travel on the parameter channel like any other
	// value.
	if r.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.Placeholder(value.Int(*r.limit)))
	}
	if r.offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(b.Placeholder(value.Int(*r.offset)))
	}

	return &Assembled{sql: sb.String(), args: b.Args(), kind: KindSelect}, nil
}

func (r *Request) assembleInsert() (*Assembled, error) {
	cols, rows, err := r.insertShape()
	if err != nil {
		return nil, err
	}

	b := &value.Binder{}
	var sb strings.Builder

	sb.WriteString("INSERT INTO ")
	sb.WriteString(r.table.SQL())
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")

	rendered := make([]string, len(rows))
	for i, row := range rows {
		places := make([]string, len(row))
		for j, v := range row {
			places[j] = b.Placeholder(v)
		}
		rendered[i] = "(" + strings.Join(places, ", ") + ")"
	}
	sb.WriteString(strings.Join(rendered, ", "))

	return &Assembled{sql: sb.String(), args: b.Args(), kind: KindInsert}, nil
}

// insertShape resolves the two INSERT builder styles into one column list and
// row set.
func (r *Request) insertShape() ([]string, [][]value.Value, error) {
	if len(r.assignments) > 0 && (len(r.projections) > 0 || len(r.insertRows) > 0) {
		return nil, nil, fmt.Errorf("%w: use either Set or Columns/Row to build an INSERT, not both", apperrors.ErrInvalidArgument)
	}

	if len(r.assignments) > 0 {
		cols := make([]string, len(r.assignments))
		row := make([]value.Value, len(r.assignments))
		for i, a := range r.assignments {
			if a.col.IsZero() {
				return nil, nil, fmt.Errorf("%w: assignment column is not a validated reference", apperrors.ErrInvalidArgument)
			}
			cols[i] = a.col.SQLName()
			row[i] = a.val
		}
		return cols, [][]value.Value{row}, nil
	}

	if len(r.projections) == 0 || len(r.insertRows) == 0 {
		return nil, nil, fmt.Errorf("%w: INSERT needs a non-empty column list and at least one row", apperrors.ErrEmptyAssignment)
	}
	cols := make([]string, len(r.projections))
	for i, p := range r.projections {
		if p.kind != projColumn || p.col.IsZero() {
			return nil, nil, fmt.Errorf("%w: INSERT column list accepts validated columns only", apperrors.ErrInvalidArgument)
		}
		cols[i] = p.col.SQLName()
	}
	for i, row := range r.insertRows {
		if len(row) != len(cols) {
			return nil, nil, fmt.Errorf("%w: row %d has %d values for %d columns", apperrors.ErrInvalidArgument, i+1, len(row), len(cols))
		}
	}
	return cols, r.insertRows, nil
}

func (r *Request) assembleUpdate() (*Assembled, error) {
	if len(r.assignments) == 0 {
		return nil, fmt.Errorf("%w: UPDATE needs at least one SET assignment", apperrors.ErrEmptyAssignment)
	}
	if len(r.where) == 0 {
		return nil, fmt.Errorf("%w: UPDATE without a filter is refused", apperrors.ErrUnscopedMutation)
	}

	b := &value.Binder{}
	var sb strings.Builder

	sb.WriteString("UPDATE ")
	sb.WriteString(r.table.SQL())
	sb.WriteString(" SET ")

	sets := make([]string, len(r.assignments))
	for i, a := range r.assignments {
		if a.col.IsZero() {
			return nil, fmt.Errorf("%w: assignment column is not a validated reference", apperrors.ErrInvalidArgument)
		}
		sets[i] = a.col.SQLName() + " = " + b.Placeholder(a.val)
	}
	sb.WriteString(strings.Join(sets, ", "))

	if err := renderWhere(&sb, b, r); err != nil {
		return nil, err
	}

	return &Assembled{sql: sb.String(), args: b.Args(), kind: KindUpdate}, nil
}

func (r *Request) assembleDelete() (*Assembled, error) {
	if len(r.where) == 0 {
		return nil, fmt.Errorf("%w: DELETE without a filter is refused", apperrors.ErrUnscopedMutation)
	}

	b := &value.Binder{}
	var sb strings.Builder

	sb.WriteString("DELETE FROM ")
	sb.WriteString(r.table.SQL())

	if err := renderWhere(&sb, b, r); err != nil {
		return nil, err
	}

	return &Assembled{sql: sb.String(), args: b.Args(), kind: KindDelete}, nil
}

func renderWhere(sb *strings.Builder, b *value.Binder, r *Request) error {
	if len(r.where) == 0 {
		return nil
	}
	frags := make([]string, len(r.where))
	for i, p := range r.where {
		frag, err := p.Render(b)
		if err != nil {
			return err
		}
		frags[i] = frag
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(frags, " AND "))
	return nil
}

func (p projection) render() (string, error) {
	switch p.kind {
	case projColumn:
		if p.col.IsZero() {
			return "", fmt.Errorf("%w: projection column is not a validated reference", apperrors.ErrInvalidArgument)
		}
		return p.col.SQL(), nil
	case projStar:
		if p.star.IsZero() {
			return "", fmt.Errorf("%w: wildcard marker is not a validated reference", apperrors.ErrInvalidArgument)
		}
		return p.star.SQL(), nil
	case projAggregate:
		expr, err := p.agg.Render()
		if err != nil {
			return "", err
		}
		return expr + " AS " + pgx.Identifier{p.agg.Name()}.Sanitize(), nil
	default:
		return "", fmt.Errorf("%w: unknown projection", apperrors.ErrInvalidArgument)
	}
}
