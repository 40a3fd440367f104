package usecase

import (
	"context"
	"errors"
	"fmt"
	"net"

	"vacation-rental/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrMinimumStay           = errors.New("minimum stay not met")
	ErrDateRangeConflict     = errors.New("dates not available")
	ErrIDGenerationExhausted = errors.New("booking ID generation exhausted")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrTimeout               = errors.New("request timed out")
)

// Error carries a caller-facing message alongside its kind and cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// ValidationError lists the offending field paths.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func validationFailed(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// storeError classifies a repository failure. Deadlines become ErrTimeout,
// connectivity problems ErrStoreUnavailable, anything else stays unclassified.
func storeError(err error, operation string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), pgconn.Timeout(err):
		return &Error{Kind: ErrTimeout, Message: operation + " timed out", Err: err}
	case isConnectivity(err):
		return &Error{Kind: ErrStoreUnavailable, Message: operation + " failed: store unavailable", Err: err}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func isConnectivity(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}
