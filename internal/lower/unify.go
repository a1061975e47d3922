package lower

import (
	"fmt"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/sem"
)

// Unify computes the common result type for an operator's operand pair.
//
// When both operands are decimal, the operator's fixed-point promotion
// rule applies; the add, subtract, and multiply rules are symmetric under
// swapping operands. Otherwise the generic numeric lattice applies:
// byte < short < int < long < float < double, with a mixed integral/
// floating pair widening to the floating side.
//
// Pmod and remainder are the exception: the result type is always the
// left operand's type. The right operand is only the modulus and never
// widens the result.
func Unify(op expr.OpKind, left, right sem.Type) (sem.Type, error) {
	if op == expr.OpPmod || op == expr.OpRemainder {
		return left, nil
	}

	if left.IsDecimal() && right.IsDecimal() {
		return unifyDecimal(op, left, right)
	}
	if left.IsDecimal() || right.IsDecimal() {
		return sem.Type{}, fmt.Errorf("cannot unify %s with %s: mixed decimal operands need an explicit cast", left, right)
	}
	return unifyGeneric(left, right)
}

// unifyDecimal applies the operator's fixed-point promotion rule. Scale
// and precision grow so that no significant digits of either operand are
// lost, then the result is bounded to the backend's maximum precision.
func unifyDecimal(op expr.OpKind, left, right sem.Type) (sem.Type, error) {
	p1, s1 := left.Precision, left.Scale
	p2, s2 := right.Precision, right.Scale

	var p, s int32
	switch op {
	case expr.OpAdd, expr.OpSubtract:
		s = max32(s1, s2)
		p = max32(p1-s1, p2-s2) + s + 1
	case expr.OpMultiply:
		p = p1 + p2 + 1
		s = s1 + s2
	case expr.OpDivide:
		s = max32(sem.MinAdjustedScale, s1+p2+1)
		p = p1 - s1 + s2 + s
	default:
		return sem.Type{}, fmt.Errorf("no decimal promotion rule for operator %s", op)
	}
	return boundedDecimal(p, s), nil
}

// boundedDecimal clamps a promotion result to MaxPrecision. Integral
// digits are preferred over fractional ones, but scale is never reduced
// below min(scale, MinAdjustedScale).
func boundedDecimal(p, s int32) sem.Type {
	if p <= sem.MaxPrecision {
		return sem.DecimalOf(p, s)
	}
	intDigits := p - s
	minScale := min32(s, sem.MinAdjustedScale)
	adjusted := max32(sem.MaxPrecision-intDigits, minScale)
	return sem.DecimalOf(sem.MaxPrecision, adjusted)
}

// numericRank orders the generic promotion lattice. Floating kinds rank
// above every integral kind, so a mixed pair widens to the floating side.
func numericRank(k sem.Kind) (int, bool) {
	switch k {
	case sem.Byte:
		return 1, true
	case sem.Short:
		return 2, true
	case sem.Int:
		return 3, true
	case sem.Long:
		return 4, true
	case sem.Float:
		return 5, true
	case sem.Double:
		return 6, true
	}
	return 0, false
}

func unifyGeneric(left, right sem.Type) (sem.Type, error) {
	lr, ok := numericRank(left.Kind)
	if !ok {
		return sem.Type{}, fmt.Errorf("cannot unify non-numeric type %s", left)
	}
	rr, ok := numericRank(right.Kind)
	if !ok {
		return sem.Type{}, fmt.Errorf("cannot unify non-numeric type %s", right)
	}
	if lr >= rr {
		return left, nil
	}
	return right, nil
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
