package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
	"github.com/Sumatoshi-tech/grammargen/pkg/observability"
	"github.com/Sumatoshi-tech/grammargen/pkg/sink"
	"github.com/Sumatoshi-tech/grammargen/pkg/staging"
)

// ErrLintFailed is returned when a specification has error-level lint findings.
var ErrLintFailed = errors.New("specification has lint errors")

// GenerateCommand holds the flags of the generate command.
type GenerateCommand struct {
	global *GlobalOptions

	source      string
	target      string
	specPath    string
	name        string
	scopeName   string
	output      string
	indent      string
	strict      bool
	force       bool
	noStage     bool
	interactive bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(global *GlobalOptions) *cobra.Command {
	gc := &GenerateCommand{global: global}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Stage an extension skeleton and write its TextMate grammar",
		Long: `Generate copies an extension skeleton to a target directory, expands the
placeholders of a grammar specification and writes the resulting TextMate
grammar to <target>/syntaxes/grammar.json.

Values not given as flags are asked for interactively.

Examples:
  grammargen generate --source skeleton --target my-ext --spec gen.json
  grammargen generate --no-stage --target my-ext --spec gen.yaml --indent "  "
  grammargen generate -i`,
		Args: cobra.NoArgs,
		RunE: gc.run,
	}

	flags := cmd.Flags()
	flags.StringVarP(&gc.source, "source", "s", "", "extension skeleton directory to copy")
	flags.StringVarP(&gc.target, "target", "t", "", "target directory name")
	flags.StringVar(&gc.specPath, "spec", "", "grammar specification file (JSON or YAML)")
	flags.StringVar(&gc.name, "name", "", "grammar name (overrides config)")
	flags.StringVar(&gc.scopeName, "scope-name", "", "grammar scope name (overrides config)")
	flags.StringVarP(&gc.output, "output", "o", "", "grammar path relative to the target (overrides config)")
	flags.StringVar(&gc.indent, "indent", "", "indent the grammar JSON with this string")
	flags.BoolVar(&gc.strict, "strict", false, "reject duplicate rule names")
	flags.BoolVarP(&gc.force, "force", "f", false, "copy into an existing target directory")
	flags.BoolVar(&gc.noStage, "no-stage", false, "skip copying a skeleton; write into the target as is")
	flags.BoolVarP(&gc.interactive, "interactive", "i", false, "prompt for every input, even when flagged")

	return cmd
}

// generateRequest is one fully resolved generate run.
type generateRequest struct {
	Source   string
	Target   string
	SpecPath string
}

// generateReport summarizes a finished run.
type generateReport struct {
	Staged      *staging.Stats
	OutputPath  string
	Bytes       int
	Comments    int
	Expressions int
	Overwritten []string
}

func (gc *GenerateCommand) run(cmd *cobra.Command, _ []string) error {
	rt, err := gc.global.setup(cmd)
	if err != nil {
		return err
	}

	err = gc.execute(cmd, rt)

	return rt.close(err)
}

func (gc *GenerateCommand) execute(cmd *cobra.Command, rt *runtime) error {
	gc.applyOverrides(cmd, rt)

	err := rt.cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	req, err := gc.resolve(cmd)
	if err != nil {
		return err
	}

	report, err := generate(cmd.Context(), rt, req)
	if err != nil {
		return err
	}

	printGenerateReport(rt, req, report)

	return nil
}

func (gc *GenerateCommand) applyOverrides(cmd *cobra.Command, rt *runtime) {
	flags := cmd.Flags()

	if flags.Changed("name") {
		rt.cfg.Grammar.Name = gc.name
	}

	if flags.Changed("scope-name") {
		rt.cfg.Grammar.ScopeName = gc.scopeName
	}

	if flags.Changed("output") {
		rt.cfg.Output.Path = gc.output
	}

	if flags.Changed("indent") {
		rt.cfg.Output.Indent = gc.indent
	}

	if gc.strict {
		rt.cfg.Spec.StrictNames = true
	}

	if gc.force {
		rt.cfg.Staging.Overwrite = true
	}
}

func (gc *GenerateCommand) resolve(cmd *cobra.Command) (generateRequest, error) {
	req := generateRequest{Source: gc.source, Target: gc.target, SpecPath: gc.specPath}

	ask := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

	if !gc.noStage {
		err := ask.fill(&req.Source, promptSource, gc.interactive)
		if err != nil {
			return req, err
		}
	}

	err := ask.fill(&req.Target, promptTarget, gc.interactive)
	if err != nil {
		return req, err
	}

	err = ask.fill(&req.SpecPath, promptSpec, gc.interactive)
	if err != nil {
		return req, err
	}

	if gc.noStage {
		req.Source = ""
	}

	return req, nil
}

// generate runs stage, load, lint, assemble, verify, encode and write.
// A failure after staging leaves the staged copy in place.
func generate(ctx context.Context, rt *runtime, req generateRequest) (report generateReport, err error) {
	start := time.Now()

	ctx, span := rt.tracer.Start(ctx, "grammargen.generate", trace.WithAttributes(
		attribute.String("target", req.Target),
		attribute.String("spec", req.SpecPath),
	))

	defer func() {
		status := observability.StatusOK

		if err != nil {
			status = observability.StatusError

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		rt.metrics.RecordGeneration(ctx, status, time.Since(start))
		span.End()
	}()

	if req.Source != "" {
		stats, stageErr := staging.Copy(ctx, req.Source, req.Target, staging.Options{Overwrite: rt.cfg.Staging.Overwrite})
		if stageErr != nil {
			return report, fmt.Errorf("stage workspace: %w", stageErr)
		}

		report.Staged = &stats

		rt.logger.DebugContext(ctx, "staged workspace",
			"source", req.Source, "target", req.Target, "files", stats.Files, "bytes", stats.Bytes)
	}

	doc, result, err := buildDocument(ctx, rt, req.SpecPath)
	if err != nil {
		return report, err
	}

	data, err := grammar.Encode(doc, rt.cfg.Output.Indent)
	if err != nil {
		return report, err
	}

	dest, err := sink.Write(req.Target, rt.cfg.Output.Path, data)
	if err != nil {
		return report, fmt.Errorf("write grammar: %w", err)
	}

	report.OutputPath = dest
	report.Bytes = len(data)
	report.Comments = result.comments
	report.Expressions = result.expressions
	report.Overwritten = result.overwritten

	rt.logger.InfoContext(ctx, "grammar written", "path", dest, "bytes", len(data))

	return report, nil
}

type buildResult struct {
	comments    int
	expressions int
	overwritten []string
	fragments   *grammar.Fragments
	spec        *grammar.Specification
}

// buildDocument loads, lints, assembles and verifies the grammar for specPath.
func buildDocument(ctx context.Context, rt *runtime, specPath string) (*grammar.Document, buildResult, error) {
	var result buildResult

	loadOpts, err := rt.loadOptions()
	if err != nil {
		return nil, result, err
	}

	spec, err := grammar.Load(specPath, loadOpts)
	if err != nil {
		return nil, result, loadExitError(err)
	}

	strict := rt.cfg.Spec.StrictNames

	if rt.logFindings(ctx, grammar.Lint(spec, strict)) {
		return nil, result, &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%w: %s", ErrLintFailed, specPath)}
	}

	assembled, err := grammar.Assemble(spec, grammar.Options{Identity: rt.identity(), Strict: strict})
	if err != nil {
		return nil, result, &ExitError{Code: ExitInvalid, Err: err}
	}

	err = assembled.Document.Verify()
	if err != nil {
		return nil, result, err
	}

	rt.metrics.RecordRules(ctx, len(spec.Comments), len(spec.Expressions))

	result = buildResult{
		comments:    len(spec.Comments),
		expressions: len(spec.Expressions),
		overwritten: assembled.Overwritten,
		fragments:   assembled.Fragments,
		spec:        spec,
	}

	return assembled.Document, result, nil
}

// loadExitError marks schema and syntax errors as invalid input. Read and
// size errors keep the generic failure code.
func loadExitError(err error) error {
	var schemaErr *grammar.SchemaError
	if errors.As(err, &schemaErr) || errors.Is(err, grammar.ErrMalformedSpec) {
		return &ExitError{Code: ExitInvalid, Err: err}
	}

	return err
}

func printGenerateReport(rt *runtime, req generateRequest, report generateReport) {
	if report.Staged != nil {
		rt.printf(nil, "Staged %s -> %s (%d files, %s)\n",
			req.Source, req.Target, report.Staged.Files, humanize.Bytes(report.Staged.Bytes))
	}

	for _, name := range report.Overwritten {
		rt.printf(color.New(color.FgYellow), "  rule %q defined more than once; last definition kept\n", name)
	}

	rt.printf(color.New(color.FgGreen), "Wrote %s (%d comment rules, %d expression rules, %s)\n",
		report.OutputPath, report.Comments, report.Expressions, humanize.Bytes(uint64(report.Bytes)))
}
