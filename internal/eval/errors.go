package eval

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// CodeTypeError indicates an operand of the wrong kind, such as a
	// comparison between a string and a number.
	CodeTypeError ErrorCode = "TYPE_ERROR"

	// CodeUnbound indicates a reference to an unbound variable.
	CodeUnbound ErrorCode = "UNBOUND"

	// CodeDivideByZero indicates integer or decimal division by zero.
	CodeDivideByZero ErrorCode = "DIVIDE_BY_ZERO"

	// CodeUnknownFunction indicates a call to a function the evaluator
	// does not implement.
	CodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"

	// CodeArity indicates a call with the wrong number of arguments.
	CodeArity ErrorCode = "ARITY"

	// CodeRebind indicates an Extend over a solution that already binds
	// the target variable. Unlike the codes above it aborts evaluation.
	CodeRebind ErrorCode = "REBIND"
)

// EvalError is an expression evaluation failure. Inside a Filter it
// makes the expression false for that solution; inside Extend it leaves
// the variable unbound.
type EvalError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errorf(code ErrorCode, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsTypeError reports whether err is a TYPE_ERROR EvalError.
// Uses errors.As to handle wrapped errors.
func IsTypeError(err error) bool {
	return hasCode(err, CodeTypeError)
}

// IsUnbound reports whether err is an UNBOUND EvalError.
func IsUnbound(err error) bool {
	return hasCode(err, CodeUnbound)
}

// IsEvalError reports whether err is any expression-level EvalError, as
// opposed to a storage failure or an aborting plan error.
func IsEvalError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Code != CodeRebind
}

func hasCode(err error, code ErrorCode) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}
