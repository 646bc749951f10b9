package calculator

import (
	"errors"
	"net/http"

	"go-decimal-calculator/internal/calculation"
	"go-decimal-calculator/internal/validation"
)

// statusFor maps calculator errors onto HTTP status codes: bad operands are
// the client's fault (400), well-formed operands outside an operation's
// domain are unprocessable (422) and an empty undo or redo stack is a
// conflict (409). Anything else is a server error.
func statusFor(err error) int {
	var vErr *validation.ValidationError
	var opErr *calculation.OperationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &opErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNothingToUndo), errors.Is(err, ErrNothingToRedo):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
