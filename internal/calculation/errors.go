package calculation

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by OperationError. Messages are shown to users
// verbatim, hence the capitalisation.
var (
	ErrDivisionByZero   = errors.New("Division by zero is not allowed")
	ErrNegativeExponent = errors.New("Negative exponents are not supported")
	ErrNegativeRoot     = errors.New("Cannot calculate root of negative number")
	ErrZeroRoot         = errors.New("Zero root is undefined")
	ErrZeroNegativeRoot = errors.New("Cannot calculate root of zero with a negative index")
	ErrNegativeFraction = errors.New("Cannot raise negative number to a fractional power")
	ErrOutOfRange       = errors.New("Result is out of range")
	ErrUndefinedResult  = errors.New("Result is undefined")
	ErrUnknownOperation = errors.New("Unknown operation")
	ErrInvalidData      = errors.New("Invalid calculation data")
)

// OperationError reports a calculation that cannot be performed or
// reconstructed.
type OperationError struct {
	Msg string
	Err error
}

func (e *OperationError) Error() string {
	return e.Msg
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(cause error) *OperationError {
	return &OperationError{Msg: cause.Error(), Err: cause}
}

// undefinedResult reports a failure of the underlying decimal routines under
// a user-facing message, keeping the original error reachable.
func undefinedResult(cause error) *OperationError {
	return &OperationError{
		Msg: ErrUndefinedResult.Error(),
		Err: errors.Join(ErrUndefinedResult, cause),
	}
}

func unknownOperation(name string) *OperationError {
	return &OperationError{
		Msg: fmt.Sprintf("%s: %s", ErrUnknownOperation, name),
		Err: ErrUnknownOperation,
	}
}

// invalidData wraps cause so that both ErrInvalidData and cause are
// reachable through errors.Is / errors.As.
func invalidData(cause error) *OperationError {
	return &OperationError{
		Msg: fmt.Sprintf("%s: %v", ErrInvalidData, cause),
		Err: errors.Join(ErrInvalidData, cause),
	}
}
