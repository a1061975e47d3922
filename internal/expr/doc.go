// Package expr defines the input expression tree handed to the lowering
// compiler by the host query engine.
//
// Expr is a sealed interface using the marker method pattern. Only types in
// this package implement it, which keeps type switches in the compiler
// exhaustive and prevents external extensions:
//
//	switch e := e.(type) {
//	case *Column:
//	    // field reference
//	case *Literal:
//	    // constant carrying its runtime decimal value
//	case *Binary:
//	    // binary arithmetic operator
//	case *Cast:
//	    // explicit cast to a target type
//	}
//
// The tree is owned by the caller. The compiler only reads it; nothing in
// this package mutates a node after construction.
//
// Modeling casts as an explicit variant (rather than a function call on a
// generic node) lets the compiler recognize a redundant decimal-to-decimal
// cast with a single match arm and unwrap it before promotion.
package expr
