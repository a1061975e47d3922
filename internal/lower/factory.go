package lower

import (
	"fmt"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/native"
	"github.com/emberdb/ember/internal/sem"
	"github.com/emberdb/ember/internal/support"
)

// Factory lowers expression trees for one backend configuration. It holds
// only the backend's type-support predicate, so a single Factory is safe
// for concurrent use across independent trees.
type Factory struct {
	supports support.Predicate
}

// NewFactory creates a Factory gated by the given predicate. A nil
// predicate means the stock backend support set.
func NewFactory(pred support.Predicate) *Factory {
	if pred == nil {
		pred = support.Default()
	}
	return &Factory{supports: pred}
}

// Lower compiles an expression subtree into a native call node, its
// resolved type, and its fast-path eligibility. A failed call produces no
// node.
func (f *Factory) Lower(e expr.Expr) (Lowered, error) {
	switch e := e.(type) {
	case *expr.Column:
		return Lowered{Node: native.FieldRef(e.Name, e.Type), Type: e.Type, Eligible: true}, nil

	case *expr.Literal:
		return Lowered{Node: literalNode(e), Type: e.Type, Eligible: true}, nil

	case *expr.Cast:
		child, err := f.Lower(e.Child)
		if err != nil {
			return Lowered{}, err
		}
		return Lowered{
			Node:     native.NewCast(child.Node, e.Target),
			Type:     e.Target,
			Eligible: child.Eligible,
		}, nil

	case *expr.Binary:
		return f.lowerBinary(e, nil)

	default:
		return Lowered{}, fmt.Errorf("unknown expression node %T", e)
	}
}

// LowerDivideWithType lowers a divide whose result type has already been
// fixed by an outer context, bypassing the divide promotion rule. Cast
// insertion proceeds as usual against the forced type. Only divide
// accepts a forced type; recomputing the promotion for any other operator
// cannot conflict with an enclosing cast.
func (f *Factory) LowerDivideWithType(left, right expr.Expr, result sem.Type) (Lowered, error) {
	b := &expr.Binary{Op: expr.OpDivide, Left: left, Right: right, Type: result}
	return f.lowerBinary(b, &result)
}

// lowerBinary gates operand types, then dispatches to the operator's
// lowering rule. The gate runs before any child is lowered, so a
// rejected operand never produces a partial native tree.
func (f *Factory) lowerBinary(b *expr.Binary, forced *sem.Type) (Lowered, error) {
	lt, rt := expr.TypeOf(b.Left), expr.TypeOf(b.Right)
	if !f.supports(lt) || !f.supports(rt) {
		return Lowered{}, &Error{
			Code:    ErrCodeUnsupportedType,
			Message: fmt.Sprintf("operand types %s, %s not supported by backend", lt, rt),
			Op:      b.Op,
			Left:    lt,
			Right:   rt,
		}
	}

	if forced != nil && b.Op != expr.OpDivide {
		return Lowered{}, &Error{
			Code:    ErrCodeUnsupportedOperator,
			Message: fmt.Sprintf("forced result type is only valid for divide, got %s", b.Op),
			Op:      b.Op,
		}
	}

	switch b.Op {
	case expr.OpAdd, expr.OpSubtract, expr.OpMultiply, expr.OpDivide:
		return f.lowerArith(b, forced)

	case expr.OpBitwiseAnd, expr.OpBitwiseOr, expr.OpBitwiseXor:
		return f.lowerBitwise(b)

	case expr.OpPmod, expr.OpRemainder:
		m, err := newModuloLowerer(b)
		if err != nil {
			return Lowered{}, err
		}
		return m.lower(f)

	default:
		return Lowered{}, &Error{
			Code:    ErrCodeUnsupportedOperator,
			Message: fmt.Sprintf("no lowering rule for operator %s", b.Op),
			Op:      b.Op,
		}
	}
}

// literalNode materializes a literal leaf. The value rides along as its
// exact decimal text; leaves with no runtime value (non-numeric
// constants) keep an empty value.
func literalNode(lit *expr.Literal) *native.CallNode {
	value := ""
	if lit.Value != nil {
		value = lit.Value.Text('f')
	}
	return native.LiteralNode(value, lit.Type)
}
