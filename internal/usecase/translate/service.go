// Package translate turns a normalized question plus a caller policy
// into structured, executable queries.
package translate

import (
	"fmt"

	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
	"github.com/kailas-cloud/kbsearch/internal/domain/question"
)

// Service is the query translator. Stateless; safe for concurrent use.
type Service struct {
	index TermMatcher
}

// New creates a translator over the shared term index.
func New(index TermMatcher) *Service {
	return &Service{index: index}
}

// categoryGroup accumulates surviving matches for one entity category.
type categoryGroup struct {
	entityIDs []string
	entitySet map[string]struct{}
	terms     []string
	termSet   map[string]struct{}
}

// Form resolves term matches, filters them through the policy, and
// groups survivors into one formed query per entity category (scoped by
// the question's doc type). An empty result means nothing meaningful
// survived; callers must treat it as a terminal outcome, not as an
// execution with zero hits.
func (s *Service) Form(q *question.Question, pol policy.Policy) ([]query.Formed, error) {
	if q.IsEmpty() {
		return nil, nil
	}

	matches := s.index.Match(q.Text())
	if len(matches) == 0 {
		return nil, nil
	}

	groups := make(map[string]*categoryGroup)
	var order []string

	for i := range matches {
		m := &matches[i]
		for _, ent := range m.Entities() {
			// Policy filters entity categories, not raw text.
			if !pol.AllowsCategory(ent.Category) {
				continue
			}

			g, ok := groups[ent.Category]
			if !ok {
				g = &categoryGroup{
					entitySet: make(map[string]struct{}),
					termSet:   make(map[string]struct{}),
				}
				groups[ent.Category] = g
				order = append(order, ent.Category)
			}

			if _, dup := g.entitySet[ent.ID]; !dup {
				g.entitySet[ent.ID] = struct{}{}
				g.entityIDs = append(g.entityIDs, ent.ID)
			}
			text := m.Text()
			if _, dup := g.termSet[text]; !dup {
				g.termSet[text] = struct{}{}
				g.terms = append(g.terms, text)
			}
		}
	}

	if len(order) == 0 {
		return nil, nil
	}

	// Query order follows first occurrence of each category in the
	// question, so pagination over the saved sequence is deterministic.
	formed := make([]query.Formed, 0, len(order))
	for _, category := range order {
		g := groups[category]
		fq, err := query.New(category, q.DocType(), g.entityIDs, g.terms, pol.Attributes())
		if err != nil {
			return nil, fmt.Errorf("form %s query: %w", category, err)
		}
		formed = append(formed, fq)
	}
	return formed, nil
}
