// Package termindex implements the process-wide prefix tree mapping
// token sequences to knowledge-base entity references.
//
// The index is built once at startup and shared read-only by every
// request; Match is safe for unrestricted concurrent use after Insert
// calls stop.
package termindex

import "strings"

// EntityRef points at a knowledge-base entity reachable through a term.
type EntityRef struct {
	ID       string
	Category string
	// Canonical is the entity's preferred surface form, used for
	// display and backend query construction.
	Canonical string
}

// Match is a contiguous token span bound to one or more entities.
type Match struct {
	start    int
	end      int
	terms    []string
	entities []EntityRef
}

// NewMatch creates a match over tokens [start, end).
func NewMatch(start, end int, terms []string, entities []EntityRef) Match {
	return Match{start: start, end: end, terms: terms, entities: entities}
}

// Start returns the index of the first matched token.
func (m *Match) Start() int { return m.start }

// End returns the index one past the last matched token.
func (m *Match) End() int { return m.end }

// Terms returns the matched tokens in source order.
func (m *Match) Terms() []string { return m.terms }

// Text returns the matched span as a single string.
func (m *Match) Text() string { return strings.Join(m.terms, " ") }

// Entities returns every entity reference attached to the span.
// Multiple entries mean the span is a synonym shared by several entities.
func (m *Match) Entities() []EntityRef { return m.entities }

type node struct {
	children map[string]*node
	entities []EntityRef
}

// Index is the term trie. Zero value is not usable; use New.
type Index struct {
	root  *node
	terms int
}

// New creates an empty index.
func New() *Index {
	return &Index{root: &node{}}
}

// Insert adds a term phrase mapped to the given entity references.
// Tokens are matched case-insensitively. Inserting the same phrase
// twice appends entities (synonymy), it does not replace.
// Not safe for concurrent use; call only during startup construction.
func (ix *Index) Insert(phrase string, refs ...EntityRef) {
	tokens := tokenize(phrase)
	if len(tokens) == 0 || len(refs) == 0 {
		return
	}

	cur := ix.root
	for _, tok := range tokens {
		if cur.children == nil {
			cur.children = make(map[string]*node)
		}
		next, ok := cur.children[tok]
		if !ok {
			next = &node{}
			cur.children[tok] = next
		}
		cur = next
	}
	if len(cur.entities) == 0 {
		ix.terms++
	}
	cur.entities = append(cur.entities, refs...)
}

// Terms returns the number of distinct term phrases in the index.
func (ix *Index) Terms() int { return ix.terms }

// Match scans normalized text token-by-token, selecting at each position
// the longest token sequence that forms a known term (greedy, no
// backtracking across a confirmed match). Unmatched tokens are skipped
// one at a time. Empty text yields zero matches.
func (ix *Index) Match(text string) []Match {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	lowered := make([]string, len(tokens))
	for i, t := range tokens {
		lowered[i] = strings.ToLower(t)
	}

	var matches []Match
	i := 0
	for i < len(tokens) {
		end, entities := ix.longestFrom(lowered, i)
		if end < 0 {
			i++
			continue
		}
		matches = append(matches, NewMatch(i, end, tokens[i:end], entities))
		i = end
	}
	return matches
}

// longestFrom walks the trie from position start and returns the end of
// the longest span whose terminal node carries entities, or -1.
func (ix *Index) longestFrom(tokens []string, start int) (int, []EntityRef) {
	cur := ix.root
	bestEnd := -1
	var bestEntities []EntityRef

	for j := start; j < len(tokens); j++ {
		next, ok := cur.children[tokens[j]]
		if !ok {
			break
		}
		cur = next
		if len(cur.entities) > 0 {
			bestEnd = j + 1
			bestEntities = cur.entities
		}
	}
	return bestEnd, bestEntities
}

func tokenize(phrase string) []string {
	fields := strings.Fields(phrase)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}
