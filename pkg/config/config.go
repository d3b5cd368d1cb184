// Package config provides configuration loading and validation for grammargen.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidMaxSize    = errors.New("invalid spec max size")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidLogFormat  = errors.New("invalid log format")
	ErrEmptyScopeName    = errors.New("grammar scope name must not be empty")
	ErrInvalidOutputPath = errors.New("output path must be relative and stay inside the target")
)

// Default configuration values.
const (
	defaultGrammarName = "CSCSCA"
	defaultScopeName   = "source.sca"
	defaultOutputPath  = "syntaxes/grammar.json"
	defaultMaxSpecSize = "1MB"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"

	envPrefix = "GRAMMARGEN"
)

// Config holds all configuration for grammargen.
type Config struct {
	Grammar   GrammarConfig   `mapstructure:"grammar"`
	Output    OutputConfig    `mapstructure:"output"`
	Spec      SpecConfig      `mapstructure:"spec"`
	Staging   StagingConfig   `mapstructure:"staging"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GrammarConfig holds the identity of the generated grammar.
type GrammarConfig struct {
	Name      string `mapstructure:"name"`
	ScopeName string `mapstructure:"scope_name"`
}

// OutputConfig controls where and how the grammar is written.
type OutputConfig struct {
	// Path is relative to the target directory.
	Path   string `mapstructure:"path"`
	Indent string `mapstructure:"indent"`
}

// SpecConfig controls specification loading.
type SpecConfig struct {
	MaxSize     string `mapstructure:"max_size"`
	StrictNames bool   `mapstructure:"strict_names"`
}

// StagingConfig controls copying of the extension skeleton.
type StagingConfig struct {
	Overwrite bool `mapstructure:"overwrite"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	// DebugTrace samples every trace regardless of OTEL_TRACES_SAMPLER.
	DebugTrace bool `mapstructure:"debug_trace"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches the default locations; a missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".grammargen")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/grammargen")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Grammar: GrammarConfig{Name: defaultGrammarName, ScopeName: defaultScopeName},
		Output:  OutputConfig{Path: defaultOutputPath},
		Spec:    SpecConfig{MaxSize: defaultMaxSpecSize},
		Logging: LoggingConfig{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("grammar.name", def.Grammar.Name)
	viperCfg.SetDefault("grammar.scope_name", def.Grammar.ScopeName)

	viperCfg.SetDefault("output.path", def.Output.Path)
	viperCfg.SetDefault("output.indent", def.Output.Indent)

	viperCfg.SetDefault("spec.max_size", def.Spec.MaxSize)
	viperCfg.SetDefault("spec.strict_names", def.Spec.StrictNames)

	viperCfg.SetDefault("staging.overwrite", def.Staging.Overwrite)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("telemetry.otlp_endpoint", def.Telemetry.OTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", def.Telemetry.OTLPInsecure)
	viperCfg.SetDefault("telemetry.debug_trace", def.Telemetry.DebugTrace)
}

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Grammar.ScopeName) == "" {
		return ErrEmptyScopeName
	}

	if !IsLocalPath(c.Output.Path) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputPath, c.Output.Path)
	}

	_, err := c.MaxSpecBytes()
	if err != nil {
		return err
	}

	_, err = c.LogLevel()
	if err != nil {
		return err
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// MaxSpecBytes parses Spec.MaxSize (e.g. "1MB", "512KiB").
func (c *Config) MaxSpecBytes() (uint64, error) {
	size, err := humanize.ParseBytes(c.Spec.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxSize, c.Spec.MaxSize, err)
	}

	if size == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxSize, c.Spec.MaxSize)
	}

	return size, nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}

// IsLocalPath reports whether p is a non-empty relative path that does not escape its base.
func IsLocalPath(p string) bool {
	return p != "" && filepath.IsLocal(p)
}
