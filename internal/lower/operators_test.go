package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/native"
	"github.com/emberdb/ember/internal/sem"
)

func col(name string, t sem.Type) *expr.Column {
	return &expr.Column{Name: name, Type: t}
}

func lit(t *testing.T, value string, typ sem.Type) *expr.Literal {
	t.Helper()
	return &expr.Literal{Value: mustDecimal(t, value), Type: typ}
}

func bin(op expr.OpKind, left, right expr.Expr, typ sem.Type) *expr.Binary {
	return &expr.Binary{Op: op, Left: left, Right: right, Type: typ}
}

func TestLower_AddDecimal(t *testing.T) {
	f := NewFactory(nil)

	e := bin(expr.OpAdd,
		col("a", sem.DecimalOf(10, 2)),
		col("b", sem.DecimalOf(12, 4)),
		sem.DecimalOf(13, 4))

	got, err := f.Lower(e)
	require.NoError(t, err)

	assert.Equal(t, "add", got.Node.FnName)
	assert.Equal(t, sem.DecimalOf(13, 4), got.Type)
	assert.Equal(t, got.Type, got.Node.RetType)
	assert.True(t, got.Eligible)

	// both sides differ from the result type, so both are cast
	require.Len(t, got.Node.Children, 2)
	assert.Equal(t, "cast_decimal", got.Node.Children[0].FnName)
	assert.Equal(t, sem.DecimalOf(13, 4), got.Node.Children[0].RetType)
	assert.Equal(t, "cast_decimal", got.Node.Children[1].FnName)
}

func TestLower_AddGeneric_CastsNarrowSide(t *testing.T) {
	f := NewFactory(nil)

	e := bin(expr.OpAdd,
		col("a", sem.Of(sem.Int)),
		col("b", sem.Of(sem.Long)),
		sem.Of(sem.Long))

	got, err := f.Lower(e)
	require.NoError(t, err)

	assert.Equal(t, sem.Of(sem.Long), got.Type)
	require.Len(t, got.Node.Children, 2)
	// int side widens to long, long side passes through untouched
	assert.Equal(t, "cast_int64", got.Node.Children[0].FnName)
	assert.Equal(t, "#b:long", got.Node.Children[1].String())
}

func TestLower_NativeNames(t *testing.T) {
	f := NewFactory(nil)
	long := sem.Of(sem.Long)

	testCases := []struct {
		op   expr.OpKind
		want string
	}{
		{expr.OpAdd, "add"},
		{expr.OpSubtract, "subtract"},
		{expr.OpMultiply, "multiply"},
		{expr.OpDivide, "divide"},
		{expr.OpPmod, "pmod"},
		{expr.OpBitwiseAnd, "bitwise_and"},
		{expr.OpBitwiseOr, "bitwise_or"},
		{expr.OpBitwiseXor, "bitwise_xor"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			got, err := f.Lower(bin(tc.op, col("a", long), col("b", long), long))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Node.FnName)
		})
	}
}

// Remainder lowers to "mod", the backend kernel's SQL name, not the host
// operator identifier. This remap is deliberate and load-bearing.
func TestLower_RemainderLowersToMod(t *testing.T) {
	f := NewFactory(nil)
	long := sem.Of(sem.Long)

	got, err := f.Lower(bin(expr.OpRemainder, col("a", long), col("b", long), long))
	require.NoError(t, err)
	assert.Equal(t, "mod", got.Node.FnName)
	assert.NotEqual(t, "remainder", got.Node.FnName)
}

func TestLower_BitwiseInsertsNoCasts(t *testing.T) {
	f := NewFactory(nil)

	e := bin(expr.OpBitwiseOr,
		col("a", sem.Of(sem.Int)),
		col("b", sem.Of(sem.Long)),
		sem.Of(sem.Long))

	got, err := f.Lower(e)
	require.NoError(t, err)

	assert.Equal(t, sem.Of(sem.Long), got.Type)
	require.Len(t, got.Node.Children, 2)
	// children used as-is even though the int side disagrees with the result
	assert.Equal(t, "#a:int", got.Node.Children[0].String())
	assert.Equal(t, "#b:long", got.Node.Children[1].String())
}

func TestLower_ModuloFamilyKeepsLeftType(t *testing.T) {
	f := NewFactory(nil)

	for _, op := range []expr.OpKind{expr.OpPmod, expr.OpRemainder} {
		e := bin(op,
			col("a", sem.Of(sem.Int)),
			col("b", sem.Of(sem.Double)),
			sem.Of(sem.Int))

		got, err := f.Lower(e)
		require.NoError(t, err)
		assert.Equal(t, sem.Of(sem.Int), got.Type, "%s result must be the left type", op)

		// no cast on either side
		require.Len(t, got.Node.Children, 2)
		assert.Equal(t, "#a:int", got.Node.Children[0].String())
		assert.Equal(t, "#b:double", got.Node.Children[1].String())
	}
}

func TestLower_ModuloFamilyNeverEligible(t *testing.T) {
	f := NewFactory(nil)

	for _, op := range []expr.OpKind{expr.OpPmod, expr.OpRemainder} {
		// plain integer operands, the friendliest possible shape
		got, err := f.Lower(bin(op,
			col("a", sem.Of(sem.Int)),
			col("b", sem.Of(sem.Int)),
			sem.Of(sem.Int)))
		require.NoError(t, err)
		assert.False(t, got.Eligible, "%s must never be fast-path eligible", op)
	}
}

// Pmod and remainder reject bad operand types eagerly, before any child
// is lowered, unlike the other operators whose rejection flows through
// the shared gate.
func TestLower_ModuloFamilyEagerOperandCheck(t *testing.T) {
	f := NewFactory(nil)

	for _, op := range []expr.OpKind{expr.OpPmod, expr.OpRemainder} {
		_, err := f.Lower(bin(op,
			col("a", sem.DecimalOf(10, 2)),
			col("b", sem.Of(sem.Int)),
			sem.DecimalOf(10, 2)))
		require.Error(t, err)
		assert.True(t, IsUnsupportedModuloOperand(err))
		assert.Contains(t, err.Error(), "left")
		assert.Contains(t, err.Error(), "decimal(10,2)")

		_, err = f.Lower(bin(op,
			col("a", sem.Of(sem.Int)),
			col("b", sem.Of(sem.String)),
			sem.Of(sem.Int)))
		require.Error(t, err)
		assert.True(t, IsUnsupportedModuloOperand(err))
		assert.Contains(t, err.Error(), "right")
	}
}

func TestLower_MultiplyEligibilityConjunctive(t *testing.T) {
	f := NewFactory(nil)
	long := sem.Of(sem.Long)

	eligible := func() expr.Expr {
		return bin(expr.OpAdd, col("a", long), col("b", long), long)
	}
	ineligible := func() expr.Expr {
		return bin(expr.OpPmod, col("c", long), col("d", long), long)
	}

	testCases := []struct {
		name        string
		left, right expr.Expr
		want        bool
	}{
		{"both eligible", eligible(), eligible(), true},
		{"left ineligible", ineligible(), eligible(), false},
		{"right ineligible", eligible(), ineligible(), false},
		{"both ineligible", ineligible(), ineligible(), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.Lower(bin(expr.OpMultiply, tc.left, tc.right, long))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Eligible)
		})
	}
}

// Ineligibility propagates transitively: a pmod buried two multiplies
// deep still taints the root.
func TestLower_EligibilityPropagatesTransitively(t *testing.T) {
	f := NewFactory(nil)
	long := sem.Of(sem.Long)

	inner := bin(expr.OpMultiply,
		col("a", long),
		bin(expr.OpPmod, col("b", long), col("c", long), long),
		long)
	root := bin(expr.OpMultiply, inner, col("d", long), long)

	got, err := f.Lower(root)
	require.NoError(t, err)
	assert.False(t, got.Eligible)
}

func TestLower_MultiplyNarrowsLiteral(t *testing.T) {
	f := NewFactory(nil)

	// nominal literal type (10,2) is far wider than the value 2.5 needs
	e := bin(expr.OpMultiply,
		lit(t, "2.5", sem.DecimalOf(10, 2)),
		col("b", sem.DecimalOf(10, 2)),
		sem.DecimalOf(21, 4))

	got, err := f.Lower(e)
	require.NoError(t, err)

	// promotion ran against the narrowed (2,1), not the nominal (10,2):
	// precision = 2+10+1 = 13, scale = 1+2 = 3
	assert.Equal(t, sem.DecimalOf(13, 3), got.Type)

	// the literal's node is first cast to its narrowed type
	leftChild := got.Node.Children[0]
	assert.Equal(t, "cast_decimal", leftChild.FnName)
	casts := collectCastTargets(leftChild)
	assert.Contains(t, casts, sem.DecimalOf(2, 1))
}

func TestLower_DivideNarrowsLiteral(t *testing.T) {
	f := NewFactory(nil)

	e := bin(expr.OpDivide,
		lit(t, "12.34", sem.DecimalOf(10, 2)),
		col("b", sem.DecimalOf(10, 2)),
		sem.DecimalOf(23, 13))

	got, err := f.Lower(e)
	require.NoError(t, err)

	// narrowed literal type is (4,2):
	// scale = max(6, 2+10+1) = 13, precision = 4-2+2+13 = 17
	assert.Equal(t, sem.DecimalOf(17, 13), got.Type)

	// children are cast at most to the promotion result type
	for _, child := range got.Node.Children {
		for _, target := range collectCastTargets(child) {
			assert.LessOrEqual(t, target.Precision, got.Type.Precision)
		}
	}
}

// A column operand is never narrowed; only literals carry a value to
// narrow from.
func TestLower_NarrowingSkipsColumns(t *testing.T) {
	f := NewFactory(nil)

	e := bin(expr.OpMultiply,
		col("a", sem.DecimalOf(10, 2)),
		col("b", sem.DecimalOf(10, 2)),
		sem.DecimalOf(21, 4))

	got, err := f.Lower(e)
	require.NoError(t, err)
	assert.Equal(t, sem.DecimalOf(21, 4), got.Type)
}

// Lowering Add(cast(x to decimal), y) where x is already decimal must
// behave exactly like Add(x, y): the redundant cast is elided and x's
// true precision and scale reach the promotion rule.
func TestLower_RedundantCastElision(t *testing.T) {
	f := NewFactory(nil)

	x := col("x", sem.DecimalOf(6, 1))
	y := col("y", sem.DecimalOf(10, 2))

	wrapped := bin(expr.OpAdd,
		&expr.Cast{Child: x, Target: sem.DecimalOf(20, 4)},
		y,
		sem.DecimalOf(11, 2))
	direct := bin(expr.OpAdd, x, y, sem.DecimalOf(11, 2))

	gotWrapped, err := f.Lower(wrapped)
	require.NoError(t, err)
	gotDirect, err := f.Lower(direct)
	require.NoError(t, err)

	assert.Equal(t, gotDirect.Type, gotWrapped.Type)
	assert.Equal(t, gotDirect.Node.String(), gotWrapped.Node.String())
}

// The elision only fires for decimal-to-decimal casts. A genuine
// conversion (e.g. long to decimal) is lowered as written.
func TestLower_ElisionRequiresDecimalChild(t *testing.T) {
	f := NewFactory(nil)

	e := bin(expr.OpAdd,
		&expr.Cast{Child: col("x", sem.Of(sem.Long)), Target: sem.DecimalOf(20, 0)},
		col("y", sem.DecimalOf(10, 2)),
		sem.DecimalOf(23, 2))

	got, err := f.Lower(e)
	require.NoError(t, err)

	// cast survives: the long column really is converted to decimal
	casts := collectCastTargets(got.Node.Children[0])
	assert.Contains(t, casts, sem.DecimalOf(20, 0))
}

// collectCastTargets walks a chain of cast nodes and returns every target
// type encountered, outermost first.
func collectCastTargets(n *native.CallNode) []sem.Type {
	var targets []sem.Type
	for n != nil && n.IsCast() {
		targets = append(targets, n.RetType)
		if len(n.Children) != 1 {
			break
		}
		n = n.Children[0]
	}
	return targets
}
