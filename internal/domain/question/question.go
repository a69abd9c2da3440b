// Package question normalizes raw natural-language questions and peels
// off an optional document-type scope prefix.
package question

import (
	"strings"
)

// DefaultTrimCutset is the set of bracketing characters stripped from
// both ends of a question when no override is configured.
const DefaultTrimCutset = "[? ]"

// Question is a parsed, normalized question.
type Question struct {
	raw     string
	text    string
	docType string
}

// Raw returns the question as received.
func (q *Question) Raw() string { return q.raw }

// Text returns the normalized question text.
func (q *Question) Text() string { return q.text }

// DocType returns the document-type scope, or "" if the question had none.
func (q *Question) DocType() string { return q.docType }

// IsEmpty reports whether normalization left no searchable text.
func (q *Question) IsEmpty() bool { return q.text == "" }

// Normalizer parses raw questions. Pure and reentrant; one instance is
// shared by all requests.
type Normalizer struct {
	docTypes   map[string]struct{}
	trimCutset string
}

// NewNormalizer creates a normalizer recognizing the given doc-type
// prefixes (lower-case). trimCutset may be empty to use the default.
func NewNormalizer(docTypes []string, trimCutset string) *Normalizer {
	set := make(map[string]struct{}, len(docTypes))
	for _, dt := range docTypes {
		if dt != "" {
			set[strings.ToLower(dt)] = struct{}{}
		}
	}
	if trimCutset == "" {
		trimCutset = DefaultTrimCutset
	}
	return &Normalizer{docTypes: set, trimCutset: trimCutset}
}

// Parse splits an optional "<doctype>:" prefix off the raw text and
// normalizes the remainder. An unrecognized prefix is ordinary text and
// the colon survives normalization.
func (n *Normalizer) Parse(raw string) Question {
	text := raw
	docType := ""

	if before, after, ok := strings.Cut(raw, ":"); ok {
		tag := strings.ToLower(before)
		if _, supported := n.docTypes[tag]; supported {
			docType = tag
			text = after
		}
	}

	return Question{raw: raw, text: n.Normalize(text), docType: docType}
}

// Normalize strips presentation punctuation and collapses whitespace.
// Idempotent: normalizing already-normalized text is a no-op. One
// replacement can expose another ("drug's.x" only grows a possessive
// boundary once the period becomes a space), so the pass repeats until
// the text is stable. Every changed pass removes at least one
// punctuation character, so the loop terminates.
func (n *Normalizer) Normalize(text string) string {
	for {
		next := n.normalizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func (n *Normalizer) normalizeOnce(text string) string {
	text = strings.ReplaceAll(text, ",", " ")
	text = strings.ReplaceAll(text, "'s ", " ")
	text = strings.ReplaceAll(text, ".", " ")
	text = strings.Trim(text, n.trimCutset)
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}
