package expr

import "fmt"

// ValidationResult contains structural analysis of an expression tree.
type ValidationResult struct {
	// OK indicates the tree is structurally sound and every declared
	// type is well formed.
	OK bool

	// Problems lists everything found wrong, in traversal order.
	// Empty when OK is true.
	Problems []string
}

// Validate checks an expression tree before it is handed to the compiler:
// no nil nodes, both operands present on every binary operator, and every
// declared type passing sem.Type.Validate (decimals in particular must
// satisfy precision >= scale >= 0).
//
// Validate is a pure function with no side effects. It never rejects a
// tree for type-support reasons; that is the compiler gate's job.
func Validate(e Expr) ValidationResult {
	v := &validator{problems: []string{}}
	v.validate(e, "root")

	return ValidationResult{
		OK:       len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// validate recursively checks a node. path names the node's position for
// problem messages ("root.left.right", ...).
func (v *validator) validate(e Expr, path string) {
	if e == nil {
		v.addProblem("%s: nil expression", path)
		return
	}

	if err := TypeOf(e).Validate(); err != nil {
		v.addProblem("%s: %v", path, err)
	}

	switch e := e.(type) {
	case *Column:
		if e.Name == "" {
			v.addProblem("%s: column with empty name", path)
		}
	case *Literal:
		if e.Value == nil && e.Type.IsNumeric() {
			v.addProblem("%s: numeric literal with no value", path)
		}
	case *Binary:
		if e.Op == OpInvalid {
			v.addProblem("%s: invalid operator kind", path)
		}
		v.validate(e.Left, path+".left")
		v.validate(e.Right, path+".right")
	case *Cast:
		v.validate(e.Child, path+".child")
	}
}
