// Package answer models raw execution results and their presentation.
package answer

import "github.com/kailas-cloud/kbsearch/internal/domain/query"

// Hit is a single knowledge-base document returned by the backend.
type Hit struct {
	id     string
	score  float64
	fields map[string]string
}

// NewHit creates a hit.
func NewHit(id string, score float64, fields map[string]string) Hit {
	return Hit{id: id, score: score, fields: fields}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Field returns a named document field, or "" when absent.
func (h *Hit) Field(name string) string { return h.fields[name] }

// Fields returns the document fields.
func (h *Hit) Fields() map[string]string { return h.fields }

// RawResult is the outcome of executing one formed query. A failed
// execution is recorded alongside successful ones so the formatter can
// render the item as unavailable instead of dropping it.
type RawResult struct {
	query  query.Formed
	hits   []Hit
	failed bool
	errMsg string
}

// NewRawResult creates a successful execution result.
func NewRawResult(q query.Formed, hits []Hit) RawResult {
	return RawResult{query: q, hits: hits}
}

// NewFailedResult records a per-query execution failure.
func NewFailedResult(q query.Formed, err error) RawResult {
	msg := "execution failed"
	if err != nil {
		msg = err.Error()
	}
	return RawResult{query: q, failed: true, errMsg: msg}
}

// Query returns the formed query that produced this result.
func (r *RawResult) Query() query.Formed { return r.query }

// Hits returns the backend hits, empty when the execution failed.
func (r *RawResult) Hits() []Hit { return r.hits }

// Failed reports whether this query's execution failed.
func (r *RawResult) Failed() bool { return r.failed }

// ErrMsg returns the failure description, "" on success.
func (r *RawResult) ErrMsg() string { return r.errMsg }
