package lower

import (
	"errors"
	"fmt"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/sem"
)

// Error represents a failure detected during lowering.
//
// Lowering failures are immediate and non-recoverable: a failed call
// produces no node, and the caller either aborts compilation of the
// containing query or reroutes the whole expression to the fallback
// execution path. Error includes structured fields so callers can report
// which operand and operator were involved.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Op identifies the operator being lowered.
	Op expr.OpKind

	// Left and Right are the operand declared types (zero when the
	// failure is not about a specific operand pair).
	Left  sem.Type
	Right sem.Type
}

// ErrorCode categorizes lowering errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedType indicates an operand type outside the
	// backend's support allow-list.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeUnsupportedOperator indicates an operator kind with no
	// lowering rule.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeUnsupportedModuloOperand indicates a pmod/remainder
	// operand outside {byte, short, int, long, float, double}.
	ErrCodeUnsupportedModuloOperand ErrorCode = "UNSUPPORTED_MODULO_OPERAND"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Left.Kind != sem.Invalid || e.Right.Kind != sem.Invalid {
		return fmt.Sprintf("%s: %s (op=%s, left=%s, right=%s)", e.Code, e.Message, e.Op, e.Left, e.Right)
	}
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
}

// IsUnsupportedType reports whether err is an unsupported-operand-type
// failure from the gate. Uses errors.As to handle wrapped errors.
func IsUnsupportedType(err error) bool {
	return hasCode(err, ErrCodeUnsupportedType)
}

// IsUnsupportedOperator reports whether err is an unrecognized-operator
// failure. Uses errors.As to handle wrapped errors.
func IsUnsupportedOperator(err error) bool {
	return hasCode(err, ErrCodeUnsupportedOperator)
}

// IsUnsupportedModuloOperand reports whether err is the eager pmod/
// remainder operand-type rejection. Uses errors.As to handle wrapped
// errors.
func IsUnsupportedModuloOperand(err error) bool {
	return hasCode(err, ErrCodeUnsupportedModuloOperand)
}

func hasCode(err error, code ErrorCode) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}
