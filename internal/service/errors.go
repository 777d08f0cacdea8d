package service

import (
	"errors"
	"fmt"

	"vivafit/wellness-app/internal/repository"
)

// --- Error Taxonomy ---
//
// Handlers map these with errors.Is: ErrValidation -> 400,
// ErrNotFound -> 404, ErrConflict -> 409, ErrGateway -> 502.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrGateway    = errors.New("persistence gateway error")
)

// validationf wraps ErrValidation with a caller message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// notFoundf wraps ErrNotFound with a caller message.
func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// conflictf wraps ErrConflict with a caller message.
func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// gatewayErr classifies a repository failure. Repository sentinels keep
// their meaning; anything else is a gateway failure and is always
// surfaced, never swallowed into a default value.
func gatewayErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrGateway, op, err)
	}
}
