package apperrors

import "errors"

// Sentinel errors for the statement-building pipeline. Typed errors in the
// individual packages carry the detail and match these via errors.Is.
var (
	ErrIdentifierRejected = errors.New("identifier rejected")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmptyProjection    = errors.New("empty projection")
	ErrEmptyAssignment    = errors.New("empty assignment")
	ErrUnscopedMutation   = errors.New("unscoped mutation")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrExecution          = errors.New("execution failed")
)
