package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/clause"
	"github.com/ekaya-inc/pgsafe/pkg/statement"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

// fakeDB records the statement it receives and replays canned results.
type fakeDB struct {
	gotSQL   string
	gotArgs  []any
	rows     *fakeRows
	tag      pgconn.CommandTag
	queryErr error
	execErr  error
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.gotSQL = sql
	f.gotArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.gotSQL = sql
	f.gotArgs = args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return f.tag, nil
}

// fakeRows replays canned field descriptions and cell values.
type fakeRows struct {
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
	err    error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}
func (r *fakeRows) Scan(_ ...any) error    { return errors.New("not implemented") }
func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func testRequest(t *testing.T) *statement.Request {
	t.Helper()
	a := allowlist.New(
		allowlist.Entry{Schema: "public", Table: "users", Column: "id"},
		allowlist.Entry{Schema: "public", Table: "users", Column: "username"},
	)
	users, err := a.Table("public", "users")
	require.NoError(t, err)
	id, err := a.Column("public", "users", "id")
	require.NoError(t, err)
	username, err := a.Column("public", "users", "username")
	require.NoError(t, err)
	return statement.Select(users).Columns(id, username).Where(clause.Eq(id, value.Int(1)))
}

func TestExecuteQuery(t *testing.T) {
	db := &fakeDB{
		rows: &fakeRows{
			fields: []pgconn.FieldDescription{
				{Name: "id", DataTypeOID: 20},
				{Name: "username", DataTypeOID: 25},
			},
			data: [][]any{
				{int64(1), "ada"},
			},
		},
	}
	client := NewClient(db, zap.NewNop())

	result, err := client.Execute(context.Background(), testRequest(t))
	require.NoError(t, err)

	assert.Equal(t, `SELECT "public"."users"."id", "public"."users"."username" FROM "public"."users" WHERE "public"."users"."id" = $1`, db.gotSQL)
	assert.Equal(t, []any{int64(1)}, db.gotArgs)

	assert.Equal(t, []string{"id", "username"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0]["id"].Equal(value.Int(1)))
	assert.True(t, result.Rows[0]["username"].Equal(value.Text("ada")))
	assert.Zero(t, result.RowsAffected)
}

func TestExecuteQueryNullCell(t *testing.T) {
	db := &fakeDB{
		rows: &fakeRows{
			fields: []pgconn.FieldDescription{{Name: "username", DataTypeOID: 25}},
			data:   [][]any{{nil}},
		},
	}
	client := NewClient(db, zap.NewNop())

	a := allowlist.New(allowlist.Entry{Schema: "public", Table: "users", Column: "username"})
	users, err := a.Table("public", "users")
	require.NoError(t, err)
	username, err := a.Column("public", "users", "username")
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), statement.Select(users).Columns(username))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0]["username"].IsNull())
}

func TestExecuteQueryUndecodableCellRejectsResult(t *testing.T) {
	db := &fakeDB{
		rows: &fakeRows{
			fields: []pgconn.FieldDescription{{Name: "id", DataTypeOID: 20}},
			data:   [][]any{{"not-an-int"}},
		},
	}
	client := NewClient(db, zap.NewNop())

	result, err := client.Execute(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTypeMismatch)
	assert.Nil(t, result)
}

func TestExecuteMutation(t *testing.T) {
	a := allowlist.New(
		allowlist.Entry{Schema: "public", Table: "users", Column: "id"},
		allowlist.Entry{Schema: "public", Table: "users", Column: "active"},
	)
	users, err := a.Table("public", "users")
	require.NoError(t, err)
	id, err := a.Column("public", "users", "id")
	require.NoError(t, err)
	active, err := a.Column("public", "users", "active")
	require.NoError(t, err)

	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 2")}
	client := NewClient(db, zap.NewNop())

	req := statement.Update(users).
		Set(active, value.Bool(false)).
		Where(clause.Gt(id, value.Int(10)))

	result, err := client.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RowsAffected)
	assert.Empty(t, result.Rows)
	assert.Equal(t, `UPDATE "public"."users" SET "active" = $1 WHERE "public"."users"."id" > $2`, db.gotSQL)
	assert.Equal(t, []any{false, int64(10)}, db.gotArgs)
}

func TestExecuteMutationZeroRowsIsNotAnError(t *testing.T) {
	a := allowlist.New(allowlist.Entry{Schema: "public", Table: "users", Column: "id"})
	users, err := a.Table("public", "users")
	require.NoError(t, err)
	id, err := a.Column("public", "users", "id")
	require.NoError(t, err)

	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 0")}
	client := NewClient(db, zap.NewNop())

	result, err := client.Execute(context.Background(), statement.Delete(users).Where(clause.Eq(id, value.Int(999))))
	require.NoError(t, err)
	assert.Zero(t, result.RowsAffected)
}

func TestExecuteAssemblyErrorNeverReachesDriver(t *testing.T) {
	a := allowlist.New(allowlist.Entry{Schema: "public", Table: "users", Column: "id"})
	users, err := a.Table("public", "users")
	require.NoError(t, err)

	db := &fakeDB{}
	client := NewClient(db, zap.NewNop())

	_, err = client.Execute(context.Background(), statement.Delete(users))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnscopedMutation)
	assert.Empty(t, db.gotSQL)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{name: "context cancelled", err: context.Canceled, want: CauseCancelled},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: CauseCancelled},
		{name: "wrapped cancellation", err: fmt.Errorf("query: %w", context.Canceled), want: CauseCancelled},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: CauseConstraint},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: CauseConstraint},
		{name: "not null violation", err: &pgconn.PgError{Code: "23502"}, want: CauseConstraint},
		{name: "syntax error is protocol", err: &pgconn.PgError{Code: "42601"}, want: CauseProtocol},
		{name: "undefined table is protocol", err: &pgconn.PgError{Code: "42P01"}, want: CauseProtocol},
		{name: "plain error is connection", err: errors.New("broken pipe"), want: CauseConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.want, got.Cause)
			assert.ErrorIs(t, got, apperrors.ErrExecution)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestExecuteClassifiesDriverFailure(t *testing.T) {
	db := &fakeDB{queryErr: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}
	client := NewClient(db, zap.NewNop())

	_, err := client.Execute(context.Background(), testRequest(t))
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, CauseConstraint, execErr.Cause)
}

func TestKindFromOID(t *testing.T) {
	tests := []struct {
		oid  uint32
		want value.Kind
	}{
		{oid: 16, want: value.KindBool},
		{oid: 20, want: value.KindInt},
		{oid: 21, want: value.KindInt},
		{oid: 23, want: value.KindInt},
		{oid: 700, want: value.KindFloat},
		{oid: 701, want: value.KindFloat},
		{oid: 1700, want: value.KindDecimal},
		{oid: 1082, want: value.KindDate},
		{oid: 1083, want: value.KindTime},
		{oid: 1114, want: value.KindTimestamp},
		{oid: 1184, want: value.KindTimestamp},
		{oid: 114, want: value.KindJSON},
		{oid: 3802, want: value.KindJSON},
		{oid: 25, want: value.KindText},
		{oid: 1043, want: value.KindText},
		{oid: 2950, want: value.KindText},
		{oid: 600, want: value.KindText}, // unlisted falls back to text
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, kindFromOID(tt.oid), "oid %d", tt.oid)
	}
}
