package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
)

func codes(findings []grammar.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Code)
	}

	return out
}

func TestLint_Clean(t *testing.T) {
	t.Parallel()

	spec := newSpec(grammar.BreakingChar{Char: " "})
	spec.Comments = []grammar.Rule{rule("c", "comment", "#$W")}

	assert.Empty(t, grammar.Lint(spec, false))
}

func TestLint_DuplicateNames(t *testing.T) {
	t.Parallel()

	spec := newSpec(grammar.BreakingChar{Char: " "})
	spec.Comments = []grammar.Rule{rule("dup", "comment", "#$W")}
	spec.Expressions = []grammar.Rule{rule("dup", "keyword", "$W")}

	findings := grammar.Lint(spec, false)
	assert.Equal(t, []string{grammar.CodeDuplicateName}, codes(findings))
	assert.Equal(t, grammar.SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "comments[0]")
	assert.False(t, grammar.HasErrors(findings))

	findings = grammar.Lint(spec, true)
	assert.True(t, grammar.HasErrors(findings))
}

func TestLint_ReservedName(t *testing.T) {
	t.Parallel()

	spec := newSpec(grammar.BreakingChar{Char: " "})
	spec.Expressions = []grammar.Rule{rule("comment", "keyword", "$W")}

	findings := grammar.Lint(spec, false)
	assert.Equal(t, []string{grammar.CodeReservedName}, codes(findings))
	assert.True(t, grammar.HasErrors(findings))
	assert.Contains(t, findings[0].Message, `"comment" would replace the include list`)
}

func TestLint_OverlappingPlaceholders(t *testing.T) {
	t.Parallel()

	spec := newSpec(grammar.BreakingChar{Char: " "})
	spec.WordPlaceholder = "$"
	spec.Comments = []grammar.Rule{rule("c", "comment", "#$W")}

	findings := grammar.Lint(spec, false)
	assert.Equal(t, []string{grammar.CodeOverlappingPlaceholder, grammar.CodeOverlappingPlaceholder}, codes(findings))
}

func TestLint_EmptyBreakingSetAndUnused(t *testing.T) {
	t.Parallel()

	spec := newSpec()
	spec.Comments = []grammar.Rule{rule("c", "comment", "#.*")}

	assert.ElementsMatch(t,
		[]string{grammar.CodeEmptyBreakingSet, grammar.CodeUnusedPlaceholders},
		codes(grammar.Lint(spec, false)))
}

func TestSeverity_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "info", grammar.SeverityInfo.String())
	assert.Equal(t, "warning", grammar.SeverityWarning.String())
	assert.Equal(t, "error", grammar.SeverityError.String())
	assert.Equal(t, "severity(7)", grammar.Severity(7).String())
}
