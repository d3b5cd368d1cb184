package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
)

// ErrInvalidSpec is returned by validate when the specification cannot be used.
var ErrInvalidSpec = errors.New("specification is invalid")

// NewValidateCommand creates the validate command.
func NewValidateCommand(global *GlobalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <spec-file>",
		Short: "Validate a grammar specification against its schema and lint rules",
		Long: `Validate checks a grammar specification for missing or mistyped fields,
then reports lint findings such as duplicate rule names or overlapping
placeholders. The exit code is 2 when the specification is invalid.

Examples:
  grammargen validate gen.json
  grammargen validate --strict gen.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := global.setup(cmd)
			if err != nil {
				return err
			}

			if strict {
				rt.cfg.Spec.StrictNames = true
			}

			return rt.close(runValidate(rt, args[0]))
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat duplicate rule names as errors")

	return cmd
}

func runValidate(rt *runtime, path string) error {
	loadOpts, err := rt.loadOptions()
	if err != nil {
		return err
	}

	spec, err := grammar.Load(path, loadOpts)
	if err != nil {
		var schemaErr *grammar.SchemaError
		if !errors.As(err, &schemaErr) {
			return loadExitError(err)
		}

		rt.printf(color.New(color.FgRed), "Specification does not match schema (%s)\n", path)

		for _, fe := range schemaErr.Errors {
			rt.printf(color.New(color.FgRed), "  - %s: %s\n", fe.Field, fe.Description)
		}

		return &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%w: %s", ErrInvalidSpec, path)}
	}

	findings := grammar.Lint(spec, rt.cfg.Spec.StrictNames)

	for _, f := range findings {
		rt.printf(severityColor(f.Severity), "  %-7s %s: %s\n", f.Severity, f.Code, f.Message)
	}

	if grammar.HasErrors(findings) {
		rt.printf(color.New(color.FgRed), "Specification has errors (%s)\n", path)

		return &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%w: %s", ErrInvalidSpec, path)}
	}

	rt.printf(color.New(color.FgGreen), "Specification is valid (%s): %d comment rules, %d expression rules\n",
		path, len(spec.Comments), len(spec.Expressions))

	return nil
}

func severityColor(s grammar.Severity) *color.Color {
	switch s {
	case grammar.SeverityError:
		return color.New(color.FgRed)
	case grammar.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
