// Package commands implements CLI command handlers for grammargen.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/grammargen/pkg/config"
	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
	"github.com/Sumatoshi-tech/grammargen/pkg/observability"
	"github.com/Sumatoshi-tech/grammargen/pkg/version"
)

// Exit codes returned through [ExitError].
const (
	ExitFailure = 1
	ExitInvalid = 2
)

const envOTLPHeaders = "OTEL_EXPORTER_OTLP_HEADERS"

// ExitError carries a process exit code alongside the error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	LogJSON    bool
	NoColor    bool
}

// Bind registers the persistent flags on root.
func (g *GlobalOptions) Bind(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&g.ConfigPath, "config", "", "config file (default is ./.grammargen.yaml)")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&g.Quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&g.LogJSON, "log-json", false, "emit logs as JSON")
	flags.BoolVar(&g.NoColor, "no-color", false, "disable colored output")
}

// runtime is the per-invocation environment built from config and flags.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *observability.GenerationMetrics
	out      io.Writer
	quiet    bool
	shutdown func(ctx context.Context) error
}

func (g *GlobalOptions) setup(cmd *cobra.Command) (*runtime, error) {
	if g.NoColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	if g.Verbose {
		level = slog.LevelDebug
	}

	if g.Quiet {
		level = slog.LevelError
	}

	obsCfg := observabilityConfig(cfg, cmd, level, g.LogJSON)

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewGenerationMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &runtime{
		cfg:      cfg,
		logger:   providers.Logger,
		tracer:   providers.Tracer,
		metrics:  metrics,
		out:      cmd.OutOrStdout(),
		quiet:    g.Quiet,
		shutdown: providers.Shutdown,
	}, nil
}

// observabilityConfig maps the loaded config and flags onto telemetry settings.
func observabilityConfig(cfg *config.Config, cmd *cobra.Command, level slog.Level, logJSON bool) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Command = cmd.Name()
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv(envOTLPHeaders))
	obsCfg.DebugTrace = cfg.Telemetry.DebugTrace
	obsCfg.LogLevel = level
	obsCfg.LogJSON = logJSON || cfg.Logging.Format == "json"
	obsCfg.LogOutput = cmd.ErrOrStderr()

	return obsCfg
}

// close flushes telemetry and returns runErr unchanged. Flush failures are only logged.
func (rt *runtime) close(runErr error) error {
	shutdownErr := rt.shutdown(context.Background())
	if shutdownErr != nil {
		rt.logger.Warn("telemetry shutdown failed", "error", shutdownErr)
	}

	return runErr
}

func (rt *runtime) printf(c *color.Color, format string, args ...any) {
	if rt.quiet {
		return
	}

	if c == nil {
		fmt.Fprintf(rt.out, format, args...)

		return
	}

	c.Fprintf(rt.out, format, args...)
}

func (rt *runtime) identity() grammar.Identity {
	return grammar.Identity{Name: rt.cfg.Grammar.Name, ScopeName: rt.cfg.Grammar.ScopeName}
}

func (rt *runtime) loadOptions() (grammar.LoadOptions, error) {
	maxSize, err := rt.cfg.MaxSpecBytes()
	if err != nil {
		return grammar.LoadOptions{}, err
	}

	return grammar.LoadOptions{MaxSize: maxSize}, nil
}

// logFindings writes lint findings to the logger and reports whether any is an error.
func (rt *runtime) logFindings(ctx context.Context, findings []grammar.Finding) bool {
	for _, f := range findings {
		level := slog.LevelInfo

		switch f.Severity {
		case grammar.SeverityWarning:
			level = slog.LevelWarn
		case grammar.SeverityError:
			level = slog.LevelError
		case grammar.SeverityInfo:
		}

		rt.logger.Log(ctx, level, f.Message, "code", f.Code)
	}

	return grammar.HasErrors(findings)
}
