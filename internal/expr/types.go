package expr

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/emberdb/ember/internal/sem"
)

// Expr represents a node in the input expression tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the compiler.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// OpKind identifies a binary arithmetic operator.
type OpKind int

const (
	OpInvalid OpKind = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPmod
	OpRemainder
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	case OpPmod:
		return "pmod"
	case OpRemainder:
		return "remainder"
	case OpBitwiseAnd:
		return "bitwise_and"
	case OpBitwiseOr:
		return "bitwise_or"
	case OpBitwiseXor:
		return "bitwise_xor"
	default:
		return "invalid"
	}
}

// OpKindFromName parses the operator name used in fixtures. It is the
// inverse of OpKind.String.
func OpKindFromName(name string) (OpKind, bool) {
	for _, k := range []OpKind{
		OpAdd, OpSubtract, OpMultiply, OpDivide, OpPmod, OpRemainder,
		OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor,
	} {
		if k.String() == name {
			return k, true
		}
	}
	return OpInvalid, false
}

// Column is a reference to an input field with its declared type.
type Column struct {
	Name string
	Type sem.Type
}

func (*Column) exprNode() {}

// Literal is a constant operand. Value carries the literal's runtime
// numeric value exactly; it is set for every numeric literal (integral
// values have scale zero) so the compiler can derive a minimal decimal
// type from the value itself.
type Literal struct {
	Value *apd.Decimal
	Type  sem.Type
}

func (*Literal) exprNode() {}

// Binary is a two-operand arithmetic operator with its declared result
// type as assigned by the host engine's analyzer.
type Binary struct {
	Op    OpKind
	Left  Expr
	Right Expr
	Type  sem.Type
}

func (*Binary) exprNode() {}

// Cast converts its child to Target.
type Cast struct {
	Child  Expr
	Target sem.Type
}

func (*Cast) exprNode() {}

// TypeOf returns a node's declared semantic type.
func TypeOf(e Expr) sem.Type {
	switch e := e.(type) {
	case *Column:
		return e.Type
	case *Literal:
		return e.Type
	case *Binary:
		return e.Type
	case *Cast:
		return e.Target
	default:
		return sem.Type{}
	}
}
