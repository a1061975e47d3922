// Package native defines the call-node tree consumed by the native
// execution backend. The compiler in internal/lower produces these trees;
// this package only models them and renders them deterministically.
package native

import (
	"fmt"
	"strings"

	"github.com/emberdb/ember/internal/sem"
)

// Function names the backend resolves for casts, field access, and
// literal materialization. Arithmetic function names live with their
// lowering rules in internal/lower.
const (
	fnFieldRef = "field_ref"
	fnLiteral  = "literal"
)

// CallNode is one node of the backend call tree: a function name, the
// already-built child nodes in argument order, and the declared result
// type the backend will produce.
//
// The declared type is trusted downstream without re-inspecting the node,
// so constructors in this package and in internal/lower always build the
// node and its RetType from the same value.
type CallNode struct {
	FnName   string
	Children []*CallNode
	RetType  sem.Type

	// Field is set only for field_ref leaves.
	Field string
	// Value is set only for literal leaves, as the literal's exact
	// decimal text.
	Value string
}

// NewCall builds an interior call node.
func NewCall(fn string, ret sem.Type, children ...*CallNode) *CallNode {
	return &CallNode{FnName: fn, Children: children, RetType: ret}
}

// FieldRef builds a leaf referencing an input column.
func FieldRef(name string, t sem.Type) *CallNode {
	return &CallNode{FnName: fnFieldRef, RetType: t, Field: name}
}

// LiteralNode builds a leaf materializing a constant. value is the exact
// decimal text of the literal.
func LiteralNode(value string, t sem.Type) *CallNode {
	return &CallNode{FnName: fnLiteral, RetType: t, Value: value}
}

// CastName returns the backend cast function for a target type, e.g.
// "cast_decimal" or "cast_int64". The target's precision and scale ride
// on the cast node's RetType, not its name.
func CastName(target sem.Type) string {
	switch target.Kind {
	case sem.Byte:
		return "cast_int8"
	case sem.Short:
		return "cast_int16"
	case sem.Int:
		return "cast_int32"
	case sem.Long:
		return "cast_int64"
	case sem.Float:
		return "cast_float32"
	case sem.Double:
		return "cast_float64"
	case sem.Decimal:
		return "cast_decimal"
	default:
		return "cast_" + target.Kind.String()
	}
}

// NewCast wraps child in a cast-call node converting it to target.
func NewCast(child *CallNode, target sem.Type) *CallNode {
	return NewCall(CastName(target), target, child)
}

// IsCast reports whether the node is a cast-call node.
func (n *CallNode) IsCast() bool {
	return strings.HasPrefix(n.FnName, "cast_")
}

// String renders the tree in compact prefix form, mainly for error
// messages and the CLI text output:
//
//	divide:decimal(13,8)(#a:decimal(10,2), cast_decimal:decimal(10,2)(literal[2.5]:decimal(2,1)))
func (n *CallNode) String() string {
	switch n.FnName {
	case fnFieldRef:
		return fmt.Sprintf("#%s:%s", n.Field, n.RetType)
	case fnLiteral:
		return fmt.Sprintf("literal[%s]:%s", n.Value, n.RetType)
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s:%s(%s)", n.FnName, n.RetType, strings.Join(parts, ", "))
}
