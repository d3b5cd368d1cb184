package grammar

import (
	"fmt"
	"strings"
)

// Severity ranks a lint finding.
type Severity int

// Severities in increasing order.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Lint finding codes.
const (
	CodeDuplicateName          = "duplicate-name"
	CodeReservedName           = "reserved-name"
	CodeOverlappingPlaceholder = "overlapping-placeholders"
	CodeEmptyBreakingSet       = "empty-breaking-set"
	CodeUnusedPlaceholders     = "unused-placeholders"
)

// Finding is one lint result.
type Finding struct {
	Severity Severity
	Code     string
	Message  string
}

// Lint reports problems in spec that do not stop generation by themselves.
// Under strict, duplicate names are reported as errors.
func Lint(spec *Specification, strict bool) []Finding {
	var findings []Finding

	findings = append(findings, lintNames(spec, strict)...)
	findings = append(findings, lintPlaceholders(spec)...)

	if len(spec.BreakingChars) == 0 {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Code:     CodeEmptyBreakingSet,
			Message:  "no breaking chars: word fragment matches any character and lookarounds are empty",
		})
	}

	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity >= SeverityError {
			return true
		}
	}

	return false
}

func lintNames(spec *Specification, strict bool) []Finding {
	var findings []Finding

	dupSeverity := SeverityWarning
	if strict {
		dupSeverity = SeverityError
	}

	origin := make(map[string]string)

	add := func(kind string, rules []Rule) {
		for i, rule := range rules {
			where := fmt.Sprintf("%s[%d]", kind, i)

			if rule.Name == CommentKey || rule.Name == ExpressionKey {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Code:     CodeReservedName,
					Message:  fmt.Sprintf("%s: name %q would replace the include list of the same name", where, rule.Name),
				})
			}

			if first, seen := origin[rule.Name]; seen {
				findings = append(findings, Finding{
					Severity: dupSeverity,
					Code:     CodeDuplicateName,
					Message:  fmt.Sprintf("%s: name %q already used by %s and will overwrite it", where, rule.Name, first),
				})

				continue
			}

			origin[rule.Name] = where
		}
	}

	add("comments", spec.Comments)
	add("expressions", spec.Expressions)

	return findings
}

func lintPlaceholders(spec *Specification) []Finding {
	var findings []Finding

	named := []struct{ label, token string }{
		{"word_placeholder", spec.WordPlaceholder},
		{"breaking_behind_placeholder", spec.BreakingBehindPlaceholder},
		{"breaking_ahead_placeholder", spec.BreakingAheadPlaceholder},
	}

	for i := range named {
		for j := i + 1; j < len(named); j++ {
			a, b := named[i], named[j]
			if a.token == "" || b.token == "" {
				continue
			}

			if strings.Contains(a.token, b.token) || strings.Contains(b.token, a.token) {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Code:     CodeOverlappingPlaceholder,
					Message:  fmt.Sprintf("%s %q and %s %q overlap", a.label, a.token, b.label, b.token),
				})
			}
		}
	}

	for _, rule := range spec.Rules() {
		for _, p := range named {
			if p.token != "" && strings.Contains(rule.Match, p.token) {
				return findings
			}
		}
	}

	if len(spec.Comments)+len(spec.Expressions) > 0 {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Code:     CodeUnusedPlaceholders,
			Message:  "no rule uses any placeholder",
		})
	}

	return findings
}
