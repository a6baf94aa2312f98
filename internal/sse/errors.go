package sse

import "fmt"

// Syntax error codes.
const (
	CodeUnterminated = "UNTERMINATED"
	CodeUnexpected   = "UNEXPECTED_TOKEN"
	CodeUnknownForm  = "UNKNOWN_FORM"
	CodeBadTerm      = "BAD_TERM"
	CodeArity        = "ARITY"
)

// SyntaxError reports a problem in plan text with its 1-based position.
type SyntaxError struct {
	Code    string
	Line    int
	Col     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s [%s]", e.Line, e.Col, e.Message, e.Code)
}

func newSyntaxError(code string, line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Code:    code,
		Line:    line,
		Col:     col,
		Message: fmt.Sprintf(format, args...),
	}
}
