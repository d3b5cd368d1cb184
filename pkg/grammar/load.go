package grammar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Format is a specification file encoding.
type Format string

// Supported specification formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultMaxSpecSize caps specification files when no limit is configured.
const DefaultMaxSpecSize = 1 << 20

// Sentinel loading errors.
var (
	ErrSpecRead      = errors.New("cannot read specification")
	ErrSpecTooLarge  = errors.New("specification file too large")
	ErrMalformedSpec = errors.New("malformed specification")
)

// LoadOptions control [Load].
type LoadOptions struct {
	// MaxSize is the largest accepted file in bytes. Zero means DefaultMaxSpecSize.
	MaxSize uint64
	// Format overrides detection by file extension.
	Format Format
}

// FormatForPath picks the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the specification at path.
func Load(path string, opts LoadOptions) (*Specification, error) {
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxSpecSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpecRead, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSpecRead, path)
	}

	if uint64(info.Size()) > maxSize {
		return nil, fmt.Errorf("%w: %s is %s, limit %s", ErrSpecTooLarge, path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(maxSize))
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpecRead, err)
	}

	format := opts.Format
	if format == "" {
		format = FormatForPath(path)
	}

	spec, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// Parse decodes data in the given format, validates it against the schema
// and returns the specification. Any missing or mistyped field fails the
// whole parse.
func Parse(data []byte, format Format) (*Specification, error) {
	generic, err := decodeGeneric(data, format)
	if err != nil {
		return nil, err
	}

	err = ValidateSchema(generic)
	if err != nil {
		return nil, err
	}

	var spec Specification

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &spec)
	default:
		err = json.Unmarshal(data, &spec)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSpec, err)
	}

	return &spec, nil
}

func decodeGeneric(data []byte, format Format) (any, error) {
	var generic any

	switch format {
	case FormatYAML:
		err := yaml.Unmarshal(data, &generic)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSpec, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		err := dec.Decode(&generic)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSpec, err)
		}

		if dec.More() {
			return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedSpec)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrMalformedSpec, format)
	}

	return generic, nil
}
