package grammar

import "strings"

// escapePrefix is a regex-escaped backslash. An escapable breaking char
// preceded by it counts as word content.
const escapePrefix = `\\`

// Fragments holds the regular expression fragments derived from a
// specification's breaking characters. It is computed once and reused for
// every rule.
type Fragments struct {
	// NonBreaking is the negated class of all breaking chars.
	NonBreaking string
	// EscapedBreaking is the alternation of escaped escapable chars; empty if none.
	EscapedBreaking string
	// Breaking is the plain alternation of all breaking chars.
	Breaking string
	// Word replaces the word placeholder.
	Word string
	// Behind replaces the breaking-behind placeholder.
	Behind string
	// Ahead replaces the breaking-ahead placeholder.
	Ahead string

	replacer *strings.Replacer
}

// NewFragments derives the expansion fragments for spec.
func NewFragments(spec *Specification) *Fragments {
	var class strings.Builder

	escaped := make([]string, 0, len(spec.BreakingChars))
	plain := make([]string, 0, len(spec.BreakingChars))

	for _, bc := range spec.BreakingChars {
		class.WriteString(bc.Char)
		plain = append(plain, bc.Char)

		if bc.Escapable {
			escaped = append(escaped, escapePrefix+bc.Char)
		}
	}

	frag := &Fragments{
		NonBreaking:     "[^" + class.String() + "]",
		EscapedBreaking: strings.Join(escaped, "|"),
		Breaking:        strings.Join(plain, "|"),
	}

	if frag.EscapedBreaking == "" {
		frag.Word = "(" + frag.NonBreaking + ")++"
	} else {
		frag.Word = "(" + frag.EscapedBreaking + "|" + frag.NonBreaking + ")++"
	}

	frag.Behind = "(?<=" + frag.Breaking + ")"
	frag.Ahead = "(?=" + frag.Breaking + ")"

	var pairs []string

	for _, p := range []struct{ token, fragment string }{
		{spec.WordPlaceholder, frag.Word},
		{spec.BreakingBehindPlaceholder, frag.Behind},
		{spec.BreakingAheadPlaceholder, frag.Ahead},
	} {
		// Replacing "" would splice the fragment between every byte.
		if p.token != "" {
			pairs = append(pairs, p.token, p.fragment)
		}
	}

	frag.replacer = strings.NewReplacer(pairs...)

	return frag
}

// Expand replaces every placeholder occurrence in pattern with its fragment.
// Expanded text is never re-scanned, and a pattern without placeholders is
// returned unchanged.
func (f *Fragments) Expand(pattern string) string {
	return f.replacer.Replace(pattern)
}
