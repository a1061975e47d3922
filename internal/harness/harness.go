package harness

import (
	"fmt"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/lower"
	"github.com/emberdb/ember/internal/native"
	"github.com/emberdb/ember/internal/sem"
	"github.com/emberdb/ember/internal/support"
)

// Scenario describes one lowering run: the input tree and the factory
// configuration it is lowered under.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string

	// Expression is the input tree.
	Expression expr.Expr

	// Support overrides the backend support predicate; nil means the
	// stock set.
	Support support.Predicate

	// ForcedType, when non-nil, routes through the forced-result divide
	// entry point. Expression must then be a divide.
	ForcedType *sem.Type
}

// Snapshot is the serialized outcome of a scenario, rendered canonically
// so equal outcomes always produce identical bytes.
type Snapshot []byte

// Run lowers the scenario's expression and renders the snapshot.
func Run(s *Scenario) (Snapshot, error) {
	factory := lower.NewFactory(s.Support)

	var lowered lower.Lowered
	var err error
	if s.ForcedType != nil {
		b, ok := s.Expression.(*expr.Binary)
		if !ok || b.Op != expr.OpDivide {
			return nil, fmt.Errorf("scenario %s: forced type requires a divide root", s.Name)
		}
		lowered, err = factory.LowerDivideWithType(b.Left, b.Right, *s.ForcedType)
	} else {
		lowered, err = factory.Lower(s.Expression)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	tree, err := native.MarshalCanonical(lowered.Node)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: render tree: %w", s.Name, err)
	}

	// Keys in sorted order, matching the canonical tree rendering.
	snapshot := fmt.Sprintf(`{"eligible":%t,"result_type":%q,"scenario":%q,"tree":%s}`,
		lowered.Eligible, lowered.Type.String(), s.Name, tree)
	return Snapshot(snapshot), nil
}
