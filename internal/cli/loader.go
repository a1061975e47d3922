package cli

import (
	"fmt"
	"os"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/lower"
	"github.com/emberdb/ember/internal/sem"
)

// LoadError represents an error that occurred during fixture loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// fixtureFile is the YAML shape of an expression fixture:
//
//	expression:
//	  op: divide
//	  left:
//	    literal: "12.34"
//	    type: decimal(10,2)
//	  right:
//	    column: price
//	    type: decimal(10,2)
type fixtureFile struct {
	Expression *fixtureNode `yaml:"expression"`
}

// fixtureNode is one node of the fixture tree. Exactly one of Op, Column,
// Literal, or Cast must be set.
type fixtureNode struct {
	Op      string       `yaml:"op,omitempty"`
	Left    *fixtureNode `yaml:"left,omitempty"`
	Right   *fixtureNode `yaml:"right,omitempty"`
	Column  string       `yaml:"column,omitempty"`
	Literal string       `yaml:"literal,omitempty"`
	Cast    *fixtureNode `yaml:"cast,omitempty"`
	Type    string       `yaml:"type,omitempty"`
}

// LoadFixture reads an expression fixture file and builds the input tree.
//
// Declared types may be omitted on operator nodes (they are recomputed
// with the operator's promotion rule, standing in for the host analyzer)
// and on literal nodes (the literal's minimal type is derived from its
// value). Columns always need an explicit type.
func LoadFixture(path string) (expr.Expr, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixture not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("read fixture: %v", err)}
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parse fixture: %v", err)}
	}
	if file.Expression == nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "fixture has no expression"}
	}

	e, err := buildExpr(file.Expression, "expression")
	if err != nil {
		return nil, err
	}
	return e, nil
}

// buildExpr converts a fixture node to an expr node. path names the
// node's position for error messages.
func buildExpr(n *fixtureNode, path string) (expr.Expr, error) {
	switch {
	case n.Column != "":
		t, err := requireType(n, path)
		if err != nil {
			return nil, err
		}
		return &expr.Column{Name: n.Column, Type: t}, nil

	case n.Literal != "":
		value, _, err := apd.NewFromString(n.Literal)
		if err != nil {
			return nil, parseError(path, "invalid literal %q: %v", n.Literal, err)
		}
		t := lower.Narrow(value)
		if n.Type != "" {
			if t, err = parseType(n.Type, path); err != nil {
				return nil, err
			}
		}
		return &expr.Literal{Value: value, Type: t}, nil

	case n.Cast != nil:
		t, err := requireType(n, path)
		if err != nil {
			return nil, err
		}
		child, err := buildExpr(n.Cast, path+".cast")
		if err != nil {
			return nil, err
		}
		return &expr.Cast{Child: child, Target: t}, nil

	case n.Op != "":
		return buildBinary(n, path)

	default:
		return nil, parseError(path, "node needs one of op, column, literal, cast")
	}
}

func buildBinary(n *fixtureNode, path string) (expr.Expr, error) {
	op, ok := expr.OpKindFromName(n.Op)
	if !ok {
		return nil, parseError(path, "unknown operator %q", n.Op)
	}
	if n.Left == nil || n.Right == nil {
		return nil, parseError(path, "operator %s needs left and right operands", op)
	}

	left, err := buildExpr(n.Left, path+".left")
	if err != nil {
		return nil, err
	}
	right, err := buildExpr(n.Right, path+".right")
	if err != nil {
		return nil, err
	}

	t := sem.Type{}
	if n.Type != "" {
		if t, err = parseType(n.Type, path); err != nil {
			return nil, err
		}
	} else {
		// Stand in for the host analyzer: declare the type the
		// operator's own promotion rule produces.
		t, err = lower.Unify(op, expr.TypeOf(left), expr.TypeOf(right))
		if err != nil {
			return nil, parseError(path, "cannot infer declared type: %v", err)
		}
	}

	return &expr.Binary{Op: op, Left: left, Right: right, Type: t}, nil
}

func requireType(n *fixtureNode, path string) (sem.Type, error) {
	if n.Type == "" {
		return sem.Type{}, parseError(path, "missing type")
	}
	return parseType(n.Type, path)
}

func parseType(s, path string) (sem.Type, error) {
	t, err := sem.ParseType(s)
	if err != nil {
		return sem.Type{}, parseError(path, "%v", err)
	}
	return t, nil
}

func parseError(path, format string, args ...any) *LoadError {
	return &LoadError{
		Code:    ErrCodeParseFailed,
		Message: fmt.Sprintf("%s: %s", path, fmt.Sprintf(format, args...)),
	}
}
