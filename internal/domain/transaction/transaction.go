// Package transaction models a persisted, identified batch of formed
// queries supporting later paginated retrieval.
package transaction

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
)

// PageSize is the fixed number of formed queries per pagination page.
const PageSize = 10

// Metadata describes the owning request of a transaction.
type Metadata struct {
	tenantID  string
	userID    string
	mode      answer.Mode
	createdAt time.Time
}

// NewMetadata creates transaction metadata.
func NewMetadata(tenantID, userID string, mode answer.Mode, createdAt time.Time) Metadata {
	return Metadata{tenantID: tenantID, userID: userID, mode: mode, createdAt: createdAt}
}

// TenantID returns the owning tenant.
func (m Metadata) TenantID() string { return m.tenantID }

// UserID returns the owning user.
func (m Metadata) UserID() string { return m.userID }

// Mode returns the presentation mode chosen at creation.
func (m Metadata) Mode() answer.Mode { return m.mode }

// CreatedAt returns the creation time.
func (m Metadata) CreatedAt() time.Time { return m.createdAt }

// Transaction owns an ordered sequence of formed queries under an
// opaque identifier. Created on a fresh question, read-only afterwards.
type Transaction struct {
	id      string
	queries []query.Formed
	meta    Metadata
}

// New validates and creates a transaction.
func New(id string, queries []query.Formed, meta Metadata) (Transaction, error) {
	if id == "" {
		return Transaction{}, fmt.Errorf("transaction id is required")
	}
	if len(queries) == 0 {
		return Transaction{}, fmt.Errorf("at least one formed query is required")
	}
	return Transaction{id: id, queries: queries, meta: meta}, nil
}

// ID returns the opaque transaction identifier.
func (t *Transaction) ID() string { return t.id }

// Queries returns the full ordered query sequence.
func (t *Transaction) Queries() []query.Formed { return t.queries }

// Meta returns the transaction metadata.
func (t *Transaction) Meta() Metadata { return t.meta }

// Page returns the slice [page*PageSize, page*PageSize+PageSize) of the
// query sequence, clipped to its actual length. An offset at or beyond
// the end returns an empty slice; order is preserved.
func (t *Transaction) Page(page int) []query.Formed {
	// The upper bound also keeps page*PageSize from overflowing.
	if page < 0 || page > len(t.queries)/PageSize {
		return nil
	}
	offset := page * PageSize
	if offset >= len(t.queries) {
		return nil
	}
	end := offset + PageSize
	if end > len(t.queries) {
		end = len(t.queries)
	}
	return t.queries[offset:end]
}
