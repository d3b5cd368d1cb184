package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
)

// checkIndent indents both sides of a drift diff.
const checkIndent = "  "

// ErrGrammarDrift is returned when an existing grammar differs from a fresh generation.
var ErrGrammarDrift = errors.New("grammar is out of date")

// NewCheckCommand creates the check command.
func NewCheckCommand(global *GlobalOptions) *cobra.Command {
	var specPath, grammarPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that a written grammar matches its specification",
		Long: `Check regenerates the grammar for a specification and compares it with an
existing grammar file. Formatting, key order and string escapes are
ignored. On drift a line diff is printed and the exit code is 1.

Examples:
  grammargen check --spec gen.json --grammar my-ext/syntaxes/grammar.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := global.setup(cmd)
			if err != nil {
				return err
			}

			return rt.close(runCheck(cmd, rt, specPath, grammarPath))
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "grammar specification file")
	cmd.Flags().StringVar(&grammarPath, "grammar", "", "existing grammar JSON file")

	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("grammar")

	return cmd
}

func runCheck(cmd *cobra.Command, rt *runtime, specPath, grammarPath string) error {
	doc, _, err := buildDocument(cmd.Context(), rt, specPath)
	if err != nil {
		return err
	}

	generated, err := grammar.Encode(doc, "")
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(grammarPath) //nolint:gosec // path is supplied by the operator.
	if err != nil {
		return fmt.Errorf("read grammar: %w", err)
	}

	want, err := decodeGrammar(generated)
	if err != nil {
		return err
	}

	got, err := decodeGrammar(existing)
	if err != nil {
		return fmt.Errorf("parse grammar %s: %w", grammarPath, err)
	}

	if reflect.DeepEqual(got, want) {
		rt.printf(color.New(color.FgGreen), "Grammar is up to date (%s)\n", grammarPath)

		return nil
	}

	before, err := canonicalJSON(got)
	if err != nil {
		return err
	}

	after, err := canonicalJSON(want)
	if err != nil {
		return err
	}

	rt.printf(color.New(color.FgRed), "Grammar differs from specification (%s)\n", grammarPath)
	printLineDiff(rt, before, after)

	return fmt.Errorf("%w: %s", ErrGrammarDrift, grammarPath)
}

// decodeGrammar decodes a grammar into generic values. Key order and
// string escapes do not survive, so equal grammars decode equal.
func decodeGrammar(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any

	err := dec.Decode(&value)
	if err != nil {
		return nil, err
	}

	return value, nil
}

// canonicalJSON renders a decoded grammar with sorted keys for diffing.
func canonicalJSON(value any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", checkIndent)

	err := enc.Encode(value)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// printLineDiff prints a line-oriented diff from before to after.
func printLineDiff(rt *runtime, before, after string) {
	dmp := diffmatchpatch.New()

	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			line = strings.TrimSuffix(line, "\n")

			switch d.Type {
			case diffmatchpatch.DiffDelete:
				rt.printf(removed, "- %s\n", line)
			case diffmatchpatch.DiffInsert:
				rt.printf(added, "+ %s\n", line)
			case diffmatchpatch.DiffEqual:
			}
		}
	}
}
