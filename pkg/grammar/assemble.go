package grammar

import (
	"errors"
	"fmt"
)

// Sentinel assembly errors.
var (
	ErrDuplicateRuleName = errors.New("duplicate rule name")
	ErrReservedRuleName  = errors.New("rule name is reserved")
)

// Identity names the target language of a generated grammar.
type Identity struct {
	Name      string
	ScopeName string
}

// DefaultIdentity returns the built-in CSCSCA identity.
func DefaultIdentity() Identity {
	return Identity{Name: DefaultName, ScopeName: DefaultScopeName}
}

// Options control [Assemble].
type Options struct {
	// Identity sets the document name and scope name. Zero fields fall back to the defaults.
	Identity Identity
	// Strict rejects rule name collisions instead of letting the later rule win.
	Strict bool
}

// Result is an assembled document plus the names that were overwritten.
type Result struct {
	Document *Document
	// Overwritten lists rule names that collided, in the order collisions occurred.
	Overwritten []string
	// Fragments are the expansion fragments used for every rule.
	Fragments *Fragments
}

// Assemble expands every rule of spec and builds the grammar document.
//
// Comments are processed before expressions. Without Options.Strict a
// repeated name silently replaces the earlier entry; with it the collision
// is an error. The names "comment" and "expression" are always rejected
// since they hold the include lists.
func Assemble(spec *Specification, opts Options) (*Result, error) {
	identity := opts.Identity
	if identity.Name == "" {
		identity.Name = DefaultName
	}

	if identity.ScopeName == "" {
		identity.ScopeName = DefaultScopeName
	}

	rules := spec.Rules()

	// A rule under an include-list key would silently replace that list.
	for _, rule := range rules {
		if rule.Name == CommentKey || rule.Name == ExpressionKey {
			return nil, fmt.Errorf("%w: %q", ErrReservedRuleName, rule.Name)
		}
	}

	repo := NewRepository()
	repo.Set(CommentKey, referencesTo(spec.Comments))
	repo.Set(ExpressionKey, referencesTo(spec.Expressions))

	frag := NewFragments(spec)

	var overwritten []string

	for _, rule := range rules {
		entry := RuleEntry{Name: rule.TokenType, Match: frag.Expand(rule.Match)}

		if repo.Set(rule.Name, entry) {
			if opts.Strict {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateRuleName, rule.Name)
			}

			overwritten = append(overwritten, rule.Name)
		}
	}

	doc := &Document{
		Name:       identity.Name,
		ScopeName:  identity.ScopeName,
		Patterns:   []Reference{CommentKey, ExpressionKey},
		Repository: repo,
	}

	return &Result{Document: doc, Overwritten: overwritten, Fragments: frag}, nil
}

func referencesTo(rules []Rule) ReferenceList {
	refs := make(ReferenceList, 0, len(rules))
	for _, rule := range rules {
		refs = append(refs, Reference(rule.Name))
	}

	return refs
}
