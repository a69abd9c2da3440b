package transaction

import (
	"time"

	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
	"github.com/kailas-cloud/kbsearch/internal/domain/transaction"
)

// Storage DTOs: the persisted shape is decoupled from domain types so
// the wire format stays stable across refactors.

type formedDTO struct {
	Category   string            `json:"category"`
	DocType    string            `json:"doc_type,omitempty"`
	EntityIDs  []string          `json:"entity_ids"`
	Terms      []string          `json:"terms,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type transactionDTO struct {
	Queries   []formedDTO `json:"queries"`
	TenantID  string      `json:"tenant_id"`
	UserID    string      `json:"user_id"`
	Mode      string      `json:"mode"`
	CreatedAt time.Time   `json:"created_at"`
}

func toDTO(txn *transaction.Transaction) transactionDTO {
	queries := txn.Queries()
	dtos := make([]formedDTO, len(queries))
	for i := range queries {
		q := &queries[i]
		dtos[i] = formedDTO{
			Category:   q.Category(),
			DocType:    q.DocType(),
			EntityIDs:  q.EntityIDs(),
			Terms:      q.Terms(),
			Attributes: q.Attributes(),
		}
	}
	meta := txn.Meta()
	return transactionDTO{
		Queries:   dtos,
		TenantID:  meta.TenantID(),
		UserID:    meta.UserID(),
		Mode:      string(meta.Mode()),
		CreatedAt: meta.CreatedAt(),
	}
}

func fromDTO(id string, dto transactionDTO) (transaction.Transaction, error) {
	queries := make([]query.Formed, 0, len(dto.Queries))
	for _, d := range dto.Queries {
		q, err := query.New(d.Category, d.DocType, d.EntityIDs, d.Terms, d.Attributes)
		if err != nil {
			return transaction.Transaction{}, err
		}
		queries = append(queries, q)
	}
	meta := transaction.NewMetadata(dto.TenantID, dto.UserID, answer.Mode(dto.Mode), dto.CreatedAt)
	return transaction.New(id, queries, meta)
}
