package grammar_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
)

func newSpec(chars ...grammar.BreakingChar) *grammar.Specification {
	return &grammar.Specification{
		WordPlaceholder:           "$W",
		BreakingBehindPlaceholder: "$B",
		BreakingAheadPlaceholder:  "$A",
		BreakingChars:             chars,
	}
}

func TestExpand_NoPlaceholdersIsIdentity(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec(grammar.BreakingChar{Char: ";"}))

	patterns := []string{
		"",
		`\b(if|else)\b`,
		"//.*$",
		`"[^"]*"`,
		"$ W and B$",
	}

	for _, p := range patterns {
		assert.Equal(t, p, frag.Expand(p))
	}
}

func TestExpand_WordFragmentWithEscapable(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec(
		grammar.BreakingChar{Char: ".", Escapable: false},
		grammar.BreakingChar{Char: ",", Escapable: true},
	))

	assert.Equal(t, "[^.,]", frag.NonBreaking)
	assert.Equal(t, `\\,`, frag.EscapedBreaking)
	assert.Equal(t, `(\\,|[^.,])++`, frag.Word)
	assert.Equal(t, `(\\,|[^.,])++`, frag.Expand("$W"))
}

func TestExpand_WordFragmentSemantics(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec(
		grammar.BreakingChar{Char: ".", Escapable: false},
		grammar.BreakingChar{Char: ",", Escapable: true},
	))

	// Go's regexp has no possessive quantifier; the greedy form accepts the same language.
	re := regexp.MustCompile(`^(` + frag.EscapedBreaking + `|` + frag.NonBreaking + `)+$`)

	assert.True(t, re.MatchString("abc"))
	assert.True(t, re.MatchString(`a\,b`))
	assert.False(t, re.MatchString("a,b"))
	assert.False(t, re.MatchString("a.b"))
	assert.False(t, re.MatchString(""))
}

func TestExpand_WordFragmentWithoutEscapable(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec(grammar.BreakingChar{Char: ";"}))

	assert.Empty(t, frag.EscapedBreaking)
	assert.Equal(t, "([^;])++", frag.Word)
}

func TestExpand_Lookarounds(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec(
		grammar.BreakingChar{Char: "+"},
		grammar.BreakingChar{Char: "-"},
	))

	assert.Equal(t, "+|-", frag.Breaking)
	assert.Equal(t, "(?<=+|-)", frag.Expand("$B"))
	assert.Equal(t, "(?=+|-)", frag.Expand("$A"))
}

func TestExpand_LookaroundsMirror(t *testing.T) {
	t.Parallel()

	sets := [][]grammar.BreakingChar{
		nil,
		{{Char: " "}},
		{{Char: `\s`}, {Char: `\(`, Escapable: true}, {Char: `\)`}},
		{{Char: "a"}, {Char: "b"}, {Char: "c", Escapable: true}},
	}

	for _, chars := range sets {
		frag := grammar.NewFragments(newSpec(chars...))

		assert.Equal(t, "(?<="+frag.Breaking+")", frag.Behind)
		assert.Equal(t, "(?="+frag.Breaking+")", frag.Ahead)
	}
}

func TestExpand_EmptyBreakingSet(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec())

	assert.Equal(t, "([^])++", frag.Word)
	assert.Equal(t, "(?<=)", frag.Behind)
	assert.Equal(t, "(?=)", frag.Ahead)
}

func TestExpand_EveryOccurrence(t *testing.T) {
	t.Parallel()

	frag := grammar.NewFragments(newSpec(grammar.BreakingChar{Char: " "}))

	got := frag.Expand("$B$W=$W$A")
	assert.Equal(t, "(?<= )([^ ])++=([^ ])++(?= )", got)
}

func TestExpand_FragmentsAreNotRescanned(t *testing.T) {
	t.Parallel()

	// The word fragment contains "^", which is also the ahead placeholder here.
	spec := &grammar.Specification{
		WordPlaceholder:           "W",
		BreakingBehindPlaceholder: "<B>",
		BreakingAheadPlaceholder:  "^",
		BreakingChars:             []grammar.BreakingChar{{Char: "x"}},
	}

	frag := grammar.NewFragments(spec)

	assert.Equal(t, "([^x])++", frag.Expand("W"))
	assert.Equal(t, "([^x])++(?=x)", frag.Expand("W^"))
}

func TestExpand_AccidentalSubstringIsReplaced(t *testing.T) {
	t.Parallel()

	spec := newSpec(grammar.BreakingChar{Char: ";"})
	spec.WordPlaceholder = "W"

	frag := grammar.NewFragments(spec)

	require.Equal(t, "([^;])++ORD", frag.Expand("WORD"))
}

func TestExpand_EmptyPlaceholderIsSkipped(t *testing.T) {
	t.Parallel()

	spec := newSpec(grammar.BreakingChar{Char: ";"})
	spec.BreakingAheadPlaceholder = ""

	frag := grammar.NewFragments(spec)

	assert.Equal(t, "ab([^;])++", frag.Expand("ab$W"))
}
