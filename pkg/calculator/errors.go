package calculator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies calculator failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnsupportedOperation
	KindDivisionByZero
	KindInvalidOperand
	KindEvaluation
)

// String returns the kind name used in JSON output and logs
func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedOperation:
		return "unsupported_operation"
	case KindDivisionByZero:
		return "division_by_zero"
	case KindInvalidOperand:
		return "invalid_operand"
	case KindEvaluation:
		return "evaluation"
	default:
		return "unknown"
	}
}

// Error provides structured error information for a failed calculation
type Error struct {
	Kind    ErrorKind
	Op      Operation
	Message string
	Cause   error
	Hint    string
}

// Sentinels for errors.Is checks. Any *Error of the same kind matches.
var (
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation, Message: "unsupported operation"}
	ErrDivisionByZero       = &Error{Kind: KindDivisionByZero, Message: "cannot divide by zero"}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a calculator error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindName returns the kind as a string for JSON error output
func (e *Error) KindName() string {
	return e.Kind.String()
}

// WithHint adds a helpful hint to the error
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// FormatWithHint returns the error message with hint if available
func (e *Error) FormatWithHint() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s\n  Hint: %s", e.Error(), e.Hint)
	}
	return e.Error()
}

// UnsupportedOperation creates an error for an identifier with no registered strategy
func UnsupportedOperation(op Operation) *Error {
	return &Error{
		Kind:    KindUnsupportedOperation,
		Op:      op,
		Message: fmt.Sprintf("operation '%s' is not supported", op),
		Hint:    "Run 'llm-calc ops' to list registered operations.",
	}
}

// DivisionByZero creates the error returned by the DIVIDE strategy
func DivisionByZero() *Error {
	return &Error{
		Kind:    KindDivisionByZero,
		Op:      Divide,
		Message: "cannot divide by zero",
	}
}

// InvalidOperand creates an error for an operand that could not be parsed
func InvalidOperand(value string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidOperand,
		Message: fmt.Sprintf("invalid operand: %q", value),
		Cause:   cause,
		Hint:    "Operands must be finite decimal numbers, e.g. 42, -3.5 or 1e6.",
	}
}

// EvaluationFailed creates an error for a strategy that failed for reasons other than division by zero
func EvaluationFailed(op Operation, cause error) *Error {
	return &Error{
		Kind:    KindEvaluation,
		Op:      op,
		Message: fmt.Sprintf("evaluation of '%s' failed", op),
		Cause:   cause,
	}
}

// KindOf returns the kind of a calculator error anywhere in err's chain
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
