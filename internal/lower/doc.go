// Package lower compiles binary arithmetic expressions into native
// backend call trees.
//
// The compiler is a pure, synchronous, bottom-up tree transform. A
// Factory gates operand types against the backend's support predicate,
// dispatches on the operator kind, recursively lowers the operand
// subtrees, unifies their types under the operator's promotion rule,
// inserts whatever casts the backend needs, and emits one call node plus
// its resolved result type.
//
// Alongside the node and type, every lowering reports whether the subtree
// qualifies for the accelerated execution path. Eligibility defaults to
// true; multiply requires both children eligible; pmod and remainder are
// never eligible and force the containing expression onto the fallback
// path.
//
// Nothing in this package holds state across calls, so independent
// expression trees may be lowered concurrently without coordination.
package lower
