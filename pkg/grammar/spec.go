// Package grammar expands a compact grammar specification into a TextMate
// grammar document.
//
// A [Specification] names three placeholder tokens and a set of breaking
// characters. [NewFragments] derives the regular expression fragments those
// placeholders stand for, and [Assemble] expands every rule and builds the
// cross-referenced [Document].
package grammar

// BreakingChar is a character (or character-class fragment) that terminates a word.
type BreakingChar struct {
	// Char is the regex-safe literal or class fragment for the character.
	Char string `json:"char" yaml:"char"`
	// Escapable marks that a backslash-escaped occurrence is word content.
	Escapable bool `json:"escapable" yaml:"escapable"`
}

// Rule is one named lexical rule.
type Rule struct {
	Name      string `json:"name"       yaml:"name"`
	TokenType string `json:"token_type" yaml:"token_type"`
	Match     string `json:"match"      yaml:"match"`
}

// Specification is the author's input. It is not mutated after load.
type Specification struct {
	BreakingAheadPlaceholder  string         `json:"breaking_ahead_placeholder"  yaml:"breaking_ahead_placeholder"`
	BreakingBehindPlaceholder string         `json:"breaking_behind_placeholder" yaml:"breaking_behind_placeholder"`
	WordPlaceholder           string         `json:"word_placeholder"            yaml:"word_placeholder"`
	BreakingChars             []BreakingChar `json:"breaking_chars"              yaml:"breaking_chars"`
	Comments                  []Rule         `json:"comments"                    yaml:"comments"`
	Expressions               []Rule         `json:"expressions"                 yaml:"expressions"`
}

// Rules returns the comment rules followed by the expression rules.
// The returned slice is freshly allocated.
func (s *Specification) Rules() []Rule {
	rules := make([]Rule, 0, len(s.Comments)+len(s.Expressions))
	rules = append(rules, s.Comments...)
	rules = append(rules, s.Expressions...)

	return rules
}

// Placeholders returns the word, breaking-behind and breaking-ahead tokens in that order.
func (s *Specification) Placeholders() []string {
	return []string{s.WordPlaceholder, s.BreakingBehindPlaceholder, s.BreakingAheadPlaceholder}
}
