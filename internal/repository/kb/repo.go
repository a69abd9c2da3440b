// Package kb executes formed queries against the knowledge base index.
package kb

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/kbsearch/internal/db"
	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
)

// Document fields requested from the backend for every hit.
var returnFields = []string{"title", "snippet", "doc_type", "entity_id", "category"}

// Repo translates formed queries into backend searches.
type Repo struct {
	store     db.Searcher
	indexName string
	topK      int
}

// New creates a knowledge base repository.
func New(store db.Searcher, indexName string, topK int) *Repo {
	return &Repo{store: store, indexName: indexName, topK: topK}
}

// Execute runs one formed query and returns its hits. The query's
// entity ids, category, doc-type scope, and policy attributes all become
// tag constraints on the backend index.
func (r *Repo) Execute(ctx context.Context, q *query.Formed) ([]answer.Hit, error) {
	tags := map[string][]string{
		"entity_id": q.EntityIDs(),
		"category":  {q.Category()},
	}
	if q.DocType() != "" {
		tags["doc_type"] = []string{q.DocType()}
	}
	for k, v := range q.Attributes() {
		tags[k] = []string{v}
	}

	res, err := r.store.Search(ctx, &db.TextQuery{
		IndexName:    r.indexName,
		Tags:         tags,
		TopK:         r.topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s query: %w", q.Category(), err)
	}

	hits := make([]answer.Hit, len(res.Entries))
	for i, e := range res.Entries {
		hits[i] = answer.NewHit(e.Key, e.Score, e.Fields)
	}
	return hits, nil
}
