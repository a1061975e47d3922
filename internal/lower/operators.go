package lower

import (
	"fmt"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/native"
	"github.com/emberdb/ember/internal/sem"
)

// Lowered pairs a native call node with its resolved result type and the
// subtree's fast-path eligibility.
//
// Type always equals the RetType the node was built with; downstream
// consumers trust the pair without re-inspecting the node.
type Lowered struct {
	Node     *native.CallNode
	Type     sem.Type
	Eligible bool
}

// nativeName maps an operator kind to the backend function it lowers to.
// Remainder deliberately lowers to "mod": the backend kernel catalogue
// uses the SQL name, not the host engine's operator identifier.
func nativeName(op expr.OpKind) (string, bool) {
	switch op {
	case expr.OpAdd:
		return "add", true
	case expr.OpSubtract:
		return "subtract", true
	case expr.OpMultiply:
		return "multiply", true
	case expr.OpDivide:
		return "divide", true
	case expr.OpPmod:
		return "pmod", true
	case expr.OpRemainder:
		return "mod", true
	case expr.OpBitwiseAnd:
		return "bitwise_and", true
	case expr.OpBitwiseOr:
		return "bitwise_or", true
	case expr.OpBitwiseXor:
		return "bitwise_xor", true
	}
	return "", false
}

// narrowsLiterals reports whether the operator substitutes narrowed types
// for decimal literal operands before promotion.
func narrowsLiterals(op expr.OpKind) bool {
	return op == expr.OpMultiply || op == expr.OpDivide
}

// elideRedundantDecimalCast unwraps a decimal-to-decimal cast so the
// operand's true precision and scale reach the promotion rule. Composing
// this operator's own promotion with a no-op-shaped outer cast would
// otherwise force an extra, precision-losing intermediate cast.
func elideRedundantDecimalCast(e expr.Expr) expr.Expr {
	if c, ok := e.(*expr.Cast); ok && c.Target.IsDecimal() && expr.TypeOf(c.Child).IsDecimal() {
		return c.Child
	}
	return e
}

// lowerArith lowers add, subtract, multiply, and divide. forced, when
// non-nil, overrides the promotion rule with a caller-supplied result
// type; the factory only passes it for divide.
func (f *Factory) lowerArith(b *expr.Binary, forced *sem.Type) (Lowered, error) {
	name, _ := nativeName(b.Op)

	leftExpr := elideRedundantDecimalCast(b.Left)
	rightExpr := elideRedundantDecimalCast(b.Right)

	left, err := f.Lower(leftExpr)
	if err != nil {
		return Lowered{}, err
	}
	right, err := f.Lower(rightExpr)
	if err != nil {
		return Lowered{}, err
	}

	// Tighten decimal literal operands of multiply/divide to the type
	// their value actually needs before running the promotion rule.
	if narrowsLiterals(b.Op) && forced == nil {
		left = narrowLiteralOperand(leftExpr, left)
		right = narrowLiteralOperand(rightExpr, right)
	}

	var result sem.Type
	if forced != nil {
		result = *forced
	} else {
		result, err = Unify(b.Op, left.Type, right.Type)
		if err != nil {
			return Lowered{}, &Error{
				Code:    ErrCodeUnsupportedType,
				Message: err.Error(),
				Op:      b.Op,
				Left:    left.Type,
				Right:   right.Type,
			}
		}
	}

	leftNode := castTo(left, result)
	rightNode := castTo(right, result)

	eligible := true
	if b.Op == expr.OpMultiply {
		eligible = left.Eligible && right.Eligible
	}

	return Lowered{
		Node:     native.NewCall(name, result, leftNode, rightNode),
		Type:     result,
		Eligible: eligible,
	}, nil
}

// narrowLiteralOperand replaces a lowered decimal literal's type with the
// narrowed type derived from its value, casting its node accordingly. Any
// other operand passes through untouched.
func narrowLiteralOperand(e expr.Expr, l Lowered) Lowered {
	lit, ok := e.(*expr.Literal)
	if !ok || !lit.Type.IsDecimal() || lit.Value == nil {
		return l
	}
	narrowed := Narrow(lit.Value)
	if narrowed.Equal(l.Type) {
		return l
	}
	return Lowered{
		Node:     native.NewCast(l.Node, narrowed),
		Type:     narrowed,
		Eligible: l.Eligible,
	}
}

// castTo wraps a child node in a cast when its resolved type differs from
// the unified result type.
func castTo(l Lowered, result sem.Type) *native.CallNode {
	if l.Type.Equal(result) {
		return l.Node
	}
	return native.NewCast(l.Node, result)
}

// lowerBitwise lowers the bitwise and/or/xor family. Operand types are
// unified for the result but the children are used as-is; no casts are
// inserted even when the sides disagree.
func (f *Factory) lowerBitwise(b *expr.Binary) (Lowered, error) {
	name, _ := nativeName(b.Op)

	left, err := f.Lower(b.Left)
	if err != nil {
		return Lowered{}, err
	}
	right, err := f.Lower(b.Right)
	if err != nil {
		return Lowered{}, err
	}

	result, err := Unify(b.Op, left.Type, right.Type)
	if err != nil {
		return Lowered{}, &Error{
			Code:    ErrCodeUnsupportedType,
			Message: err.Error(),
			Op:      b.Op,
			Left:    left.Type,
			Right:   right.Type,
		}
	}

	return Lowered{
		Node:     native.NewCall(name, result, left.Node, right.Node),
		Type:     result,
		Eligible: true,
	}, nil
}

// moduloLowerer lowers pmod and remainder. Unlike the other operators it
// validates its operand types eagerly at construction, before any child
// is lowered, and it is never eligible for the accelerated path.
type moduloLowerer struct {
	op   expr.OpKind
	bin  *expr.Binary
	name string
}

// newModuloLowerer rejects any operand whose declared type is outside
// {byte, short, int, long, float, double}, naming the offending side.
func newModuloLowerer(b *expr.Binary) (*moduloLowerer, error) {
	name, _ := nativeName(b.Op)
	for _, side := range []struct {
		label string
		t     sem.Type
	}{
		{"left", expr.TypeOf(b.Left)},
		{"right", expr.TypeOf(b.Right)},
	} {
		if _, ok := numericRank(side.t.Kind); !ok {
			return nil, &Error{
				Code:    ErrCodeUnsupportedModuloOperand,
				Message: fmt.Sprintf("%s operand type %s not supported by %s", side.label, side.t, b.Op),
				Op:      b.Op,
				Left:    expr.TypeOf(b.Left),
				Right:   expr.TypeOf(b.Right),
			}
		}
	}
	return &moduloLowerer{op: b.Op, bin: b, name: name}, nil
}

// lower emits the call node. The result type is always the left
// operand's type; the right operand is only the modulus and is used
// as-is without reconciling its type.
func (m *moduloLowerer) lower(f *Factory) (Lowered, error) {
	left, err := f.Lower(m.bin.Left)
	if err != nil {
		return Lowered{}, err
	}
	right, err := f.Lower(m.bin.Right)
	if err != nil {
		return Lowered{}, err
	}

	result := left.Type
	return Lowered{
		Node:     native.NewCall(m.name, result, left.Node, right.Node),
		Type:     result,
		Eligible: false,
	}, nil
}
