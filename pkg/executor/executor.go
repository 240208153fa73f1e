// Package executor dispatches assembled statements to the PostgreSQL driver
// and converts rows and command tags back into the typed value model. It
// performs no retries, caching, or pooling; those belong to the driver layer.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/statement"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

// Cause classifies why an execution failed.
type Cause int

const (
	CauseConnection Cause = iota
	CauseProtocol
	CauseConstraint
	CauseCancelled
)

// String returns the lower-case name of the cause.
func (c Cause) String() string {
	switch c {
	case CauseConnection:
		return "connection"
	case CauseProtocol:
		return "protocol"
	case CauseConstraint:
		return "constraint violation"
	case CauseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ExecutionError wraps a driver failure with its classified cause. The
// underlying error is preserved unmodified; retry policy belongs to the
// caller or the driver, never to this package.
type ExecutionError struct {
	Cause Cause
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed (%s): %v", e.Cause, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, apperrors.ErrExecution) hold.
func (e *ExecutionError) Is(target error) bool {
	return target == apperrors.ErrExecution
}

// RawExecutor is the call shape the external driver collaborator exposes.
// *pgxpool.Pool satisfies it.
type RawExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Row maps result column names to decoded values.
type Row map[string]value.Value

// QueryResult is the outcome of one statement execution. SELECT populates
// Columns and Rows; mutations populate RowsAffected (zero is a legal,
// non-error outcome).
type QueryResult struct {
	Columns      []string
	Rows         []Row
	RowsAffected int64
}

// Client translates between assembled statements and the driver collaborator.
type Client struct {
	db     RawExecutor
	logger *zap.Logger
}

// NewClient creates an execution client. The logger must not be nil; tests
// pass zap.NewNop().
func NewClient(db RawExecutor, logger *zap.Logger) *Client {
	return &Client{db: db, logger: logger}
}

// Execute assembles the request and dispatches it. Validation and shape
// errors surface before anything reaches the driver.
func (c *Client) Execute(ctx context.Context, req *statement.Request) (*QueryResult, error) {
	stmt, err := req.Assemble()
	if err != nil {
		return nil, err
	}
	return c.ExecuteAssembled(ctx, stmt)
}

// ExecuteAssembled dispatches an already-assembled statement.
func (c *Client) ExecuteAssembled(ctx context.Context, stmt *statement.Assembled) (*QueryResult, error) {
	c.warnOnInjectionPatterns(stmt.Args())

	if stmt.Kind() == statement.KindSelect {
		return c.query(ctx, stmt)
	}
	return c.exec(ctx, stmt)
}

func (c *Client) query(ctx context.Context, stmt *statement.Assembled) (*QueryResult, error) {
	rows, err := c.db.Query(ctx, stmt.SQL(), stmt.Args()...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	kinds := make([]value.Kind, len(fields))
	for i, fd := range fields {
		columns[i] = string(fd.Name)
		kinds[i] = kindFromOID(fd.DataTypeOID)
	}

	result := &QueryResult{Columns: columns, Rows: make([]Row, 0)}
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, classify(err)
		}

		row := make(Row, len(columns))
		for i, cell := range raw {
			v, err := value.Decode(cell, kinds[i])
			if err != nil {
				// A single undecodable cell rejects the whole result.
				return nil, fmt.Errorf("decode column %q: %w", columns[i], err)
			}
			row[columns[i]] = v
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return result, nil
}

func (c *Client) exec(ctx context.Context, stmt *statement.Assembled) (*QueryResult, error) {
	tag, err := c.db.Exec(ctx, stmt.SQL(), stmt.Args()...)
	if err != nil {
		return nil, classify(err)
	}

	affected := tag.RowsAffected()
	c.logger.Debug("statement executed",
		zap.String("kind", stmt.Kind().String()),
		zap.Int64("rows_affected", affected))

	return &QueryResult{RowsAffected: affected}, nil
}

// classify wraps a driver error with its cause. SQLSTATE class 23 covers the
// integrity-constraint violations.
func classify(err error) *ExecutionError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ExecutionError{Cause: CauseCancelled, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "23") {
			return &ExecutionError{Cause: CauseConstraint, Err: err}
		}
		return &ExecutionError{Cause: CauseProtocol, Err: err}
	}

	return &ExecutionError{Cause: CauseConnection, Err: err}
}
