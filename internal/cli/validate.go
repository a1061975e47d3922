package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/emberdb/ember/internal/expr"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixture.yaml>",
		Short: "Validate an expression fixture without lowering",
		Long: `Validate an expression fixture's structure and declared types
without running the compiler. Faster feedback than lower when iterating
on fixtures.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, fixturePath string, cmd *cobra.Command) error {
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

	result := expr.Validate(e)
	if !result.OK {
		formatter.Error(ErrCodeInvalidExpr, "expression failed validation", result.Problems)
		return NewExitError(ExitFailure, "expression failed validation")
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true}, tokens.Generate())
	}
	formatter.VerboseLog("validated %s", fixturePath)
	return formatter.Success("expression is valid", "")
}
