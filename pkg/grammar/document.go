package grammar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Fixed repository keys holding the include lists.
const (
	CommentKey    = "comment"
	ExpressionKey = "expression"
)

// Default document identity.
const (
	DefaultName      = "CSCSCA"
	DefaultScopeName = "source.sca"
)

// ErrDanglingReference is returned by [Document.Verify] when a reference has no repository entry.
var ErrDanglingReference = errors.New("reference does not resolve to a repository entry")

// Reference points at a repository entry by name.
type Reference string

// MarshalJSON encodes the reference as {"include":"#name"}.
func (r Reference) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Include string `json:"include"`
	}{Include: "#" + string(r)})
}

// Entry is a repository value: either a [ReferenceList] or a [RuleEntry].
type Entry interface {
	references() []Reference
}

// ReferenceList is an ordered include list.
type ReferenceList []Reference

func (l ReferenceList) references() []Reference { return l }

// MarshalJSON encodes the list as {"patterns":[...]}.
func (l ReferenceList) MarshalJSON() ([]byte, error) {
	patterns := []Reference(l)
	if patterns == nil {
		patterns = []Reference{}
	}

	return marshalNoEscape(struct {
		Patterns []Reference `json:"patterns"`
	}{Patterns: patterns})
}

// RuleEntry is an expanded rule.
type RuleEntry struct {
	// Name is the token type (the TextMate scope).
	Name  string `json:"name"`
	Match string `json:"match"`
}

func (RuleEntry) references() []Reference { return nil }

// Repository is an insertion-ordered map of entry name to entry.
type Repository struct {
	keys    []string
	entries map[string]Entry
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{entries: make(map[string]Entry)}
}

// Set stores e under name. Overwriting keeps the key's original position.
// It reports whether an existing entry was replaced.
func (r *Repository) Set(name string, e Entry) bool {
	_, replaced := r.entries[name]
	if !replaced {
		r.keys = append(r.keys, name)
	}

	r.entries[name] = e

	return replaced
}

// Get returns the entry stored under name.
func (r *Repository) Get(name string) (Entry, bool) {
	e, ok := r.entries[name]

	return e, ok
}

// Keys returns entry names in insertion order.
func (r *Repository) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of entries.
func (r *Repository) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the repository as a JSON object in insertion order.
func (r *Repository) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := marshalNoEscape(key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", key, err)
		}

		valJSON, err := marshalNoEscape(r.entries[key])
		if err != nil {
			return nil, fmt.Errorf("encode entry %q: %w", key, err)
		}

		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Document is an assembled TextMate grammar.
type Document struct {
	Name       string      `json:"name"`
	ScopeName  string      `json:"scopeName"`
	Patterns   []Reference `json:"patterns"`
	Repository *Repository `json:"repository"`
}

// Verify checks that every top-level and list reference resolves to a repository key.
func (d *Document) Verify() error {
	var dangling []string

	check := func(from string, refs []Reference) {
		for _, ref := range refs {
			if _, ok := d.Repository.Get(string(ref)); !ok {
				dangling = append(dangling, fmt.Sprintf("%s -> #%s", from, ref))
			}
		}
	}

	check("patterns", d.Patterns)

	for _, key := range d.Repository.Keys() {
		entry, _ := d.Repository.Get(key)
		check(key, entry.references())
	}

	if len(dangling) > 0 {
		return fmt.Errorf("%w: %s", ErrDanglingReference, strings.Join(dangling, ", "))
	}

	return nil
}

// Encode serializes doc. An empty indent yields compact JSON. The output ends with a newline.
func Encode(doc *Document, indent string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent != "" {
		enc.SetIndent("", indent)
	}

	err := enc.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encode grammar document: %w", err)
	}

	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the caller with entry context.
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
