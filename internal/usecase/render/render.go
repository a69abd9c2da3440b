// Package render shapes raw execution results into the caller-selected
// presentation mode.
package render

import (
	"sort"

	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
)

// Response is the presentation-ready result set. It always carries the
// transaction id so a caller can page through the saved queries later.
type Response struct {
	TransID string        `json:"trans_id"`
	Mode    answer.Mode   `json:"mode"`
	Total   int           `json:"total_queries"`
	Results []QueryResult `json:"results"`
}

// QueryResult is the rendered outcome of one formed query.
type QueryResult struct {
	Category    string    `json:"category"`
	DocType     string    `json:"doc_type,omitempty"`
	Terms       []string  `json:"terms,omitempty"`
	Hits        []HitView `json:"hits"`
	Unavailable bool      `json:"unavailable,omitempty"`
}

// HitView is one rendered knowledge base hit.
type HitView struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet,omitempty"`
	DocType string  `json:"doc_type,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// Render builds a new presentation structure from raw results without
// mutating them. App mode is compact: no terms, snippets, or scores,
// results sorted by category. Search mode keeps full hit detail in
// query order. Failed executions render as unavailable entries.
func Render(results []answer.RawResult, mode answer.Mode, transID string, total int) Response {
	rendered := make([]QueryResult, 0, len(results))
	for i := range results {
		rendered = append(rendered, renderOne(&results[i], mode))
	}

	if mode == answer.App {
		sort.SliceStable(rendered, func(i, j int) bool {
			return rendered[i].Category < rendered[j].Category
		})
	}

	return Response{
		TransID: transID,
		Mode:    mode,
		Total:   total,
		Results: rendered,
	}
}

func renderOne(r *answer.RawResult, mode answer.Mode) QueryResult {
	q := r.Query()
	out := QueryResult{
		Category: q.Category(),
		DocType:  q.DocType(),
	}
	if mode == answer.Search {
		out.Terms = q.Terms()
	}

	if r.Failed() {
		out.Unavailable = true
		out.Hits = []HitView{}
		return out
	}

	hits := r.Hits()
	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	if mode == answer.App {
		sort.SliceStable(order, func(i, j int) bool {
			return hits[order[i]].Score() > hits[order[j]].Score()
		})
	}

	out.Hits = make([]HitView, 0, len(hits))
	for _, i := range order {
		h := &hits[i]
		view := HitView{
			ID:    h.ID(),
			Title: h.Field("title"),
		}
		if mode == answer.Search {
			view.Snippet = h.Field("snippet")
			view.DocType = h.Field("doc_type")
			view.Score = h.Score()
		}
		out.Hits = append(out.Hits, view)
	}
	return out
}
