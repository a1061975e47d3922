package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberdb/ember/internal/expr"
	"github.com/emberdb/ember/internal/lower"
	"github.com/emberdb/ember/internal/native"
	"github.com/emberdb/ember/internal/sem"
	"github.com/emberdb/ember/internal/support"
)

// LowerOptions holds flags for the lower command.
type LowerOptions struct {
	*RootOptions
	SupportConfig string // allow-list config path
	ForcedType    string // forced result type, divide only
}

// LowerResult holds the lowered tree for output.
type LowerResult struct {
	Tree       json.RawMessage `json:"tree"`
	ResultType string          `json:"result_type"`
	Eligible   bool            `json:"eligible"`
}

// tokens issues run tokens; tests swap in a FixedGenerator.
var tokens TokenGenerator = UUIDv7Generator{}

// NewLowerCommand creates the lower command.
func NewLowerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LowerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lower <fixture.yaml>",
		Short: "Lower an expression fixture to a native call tree",
		Long: `Lower an arithmetic expression fixture into the native backend's
call tree, reporting the resolved result type and whether the tree is
eligible for the accelerated execution path.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SupportConfig, "support", "", "type-support allow-list config")
	cmd.Flags().StringVar(&opts.ForcedType, "forced-type", "", "force the divide result type, e.g. decimal(12,3)")

	return cmd
}

func runLower(opts *LowerOptions, fixturePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	e, err := LoadFixture(fixturePath)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load fixture", err)
	}

	if result := expr.Validate(e); !result.OK {
		formatter.Error(ErrCodeInvalidExpr, "expression failed validation", result.Problems)
		return NewExitError(ExitFailure, "expression failed validation")
	}

	pred, err := loadSupport(opts.SupportConfig)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load support config", err)
	}

	factory := lower.NewFactory(pred)
	formatter.VerboseLog("lowering %s", fixturePath)

	lowered, err := lowerExpr(factory, e, opts.ForcedType)
	if err != nil {
		formatter.Error(ErrCodeLowerFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "lowering failed", err)
	}

	return outputLowered(formatter, lowered)
}

// lowerExpr runs the normal entry point, or the forced-result divide
// entry point when --forced-type is set.
func lowerExpr(factory *lower.Factory, e expr.Expr, forcedType string) (lower.Lowered, error) {
	if forcedType == "" {
		return factory.Lower(e)
	}

	forced, err := sem.ParseType(forcedType)
	if err != nil {
		return lower.Lowered{}, err
	}
	b, ok := e.(*expr.Binary)
	if !ok || b.Op != expr.OpDivide {
		return lower.Lowered{}, fmt.Errorf("--forced-type requires a divide at the expression root")
	}
	return factory.LowerDivideWithType(b.Left, b.Right, forced)
}

func loadSupport(path string) (support.Predicate, error) {
	if path == "" {
		return support.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open support config: %w", err)
	}
	defer f.Close()

	reg, err := support.LoadYAML(f)
	if err != nil {
		return nil, err
	}
	return reg.Supports, nil
}

func outputLowered(formatter *OutputFormatter, lowered lower.Lowered) error {
	if formatter.Format == "json" {
		tree, err := native.MarshalCanonical(lowered.Node)
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "marshal lowered tree", err)
		}
		return formatter.Success(LowerResult{
			Tree:       tree,
			ResultType: lowered.Type.String(),
			Eligible:   lowered.Eligible,
		}, tokens.Generate())
	}

	fmt.Fprintf(formatter.Writer, "%s\n", lowered.Node)
	fmt.Fprintf(formatter.Writer, "result type: %s\n", lowered.Type)
	fmt.Fprintf(formatter.Writer, "fast path eligible: %t\n", lowered.Eligible)
	return nil
}
