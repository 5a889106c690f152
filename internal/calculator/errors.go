package calculator

import (
	"errors"
	"fmt"
)

// ErrorText is displayed after a failed evaluation until the next Clear.
const ErrorText = "Error!\nTap CLR to continue."

var (
	// ErrMalformedExpression reports an operator without enough operands.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrDivisionByZero reports a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownKey reports a keypad character with no matching key.
	ErrUnknownKey = errors.New("unknown key")
)

// EvalError is returned for every expression that cannot be evaluated.
// The cause is kept for logging; callers present all of them the same way.
type EvalError struct {
	Expression string
	Err        error
}

func newEvalError(expr string, err error) *EvalError {
	return &EvalError{Expression: expr, Err: err}
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expression, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
