// Package transaction persists formed-query batches for later paginated
// retrieval, keyed by an opaque transaction identifier.
package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/kbsearch/internal/db"
	"github.com/kailas-cloud/kbsearch/internal/domain"
	"github.com/kailas-cloud/kbsearch/internal/domain/transaction"
)

// store is the consumer interface for transaction persistence.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store implements the transaction store on top of db KV with TTL.
// Save is the only writer; repeated Fetch calls never mutate.
type Store struct {
	kv        store
	keyPrefix string
	ttl       time.Duration
}

// New creates a transaction store. ttl bounds how long a saved
// transaction stays fetchable.
func New(kv store, keyPrefix string, ttl time.Duration) *Store {
	return &Store{kv: kv, keyPrefix: keyPrefix, ttl: ttl}
}

// Save persists the transaction, fully overwriting any prior record
// under the same identifier.
func (s *Store) Save(ctx context.Context, txn *transaction.Transaction) error {
	data, err := json.Marshal(toDTO(txn))
	if err != nil {
		return fmt.Errorf("marshal transaction %s: %w", txn.ID(), err)
	}
	if err := s.kv.SetWithTTL(ctx, s.key(txn.ID()), data, s.ttl); err != nil {
		return fmt.Errorf("save transaction %s: %w", txn.ID(), err)
	}
	return nil
}

// Fetch returns the stored transaction with its full query sequence.
// A missing or expired id returns ErrTransactionNotFound.
func (s *Store) Fetch(ctx context.Context, id string) (transaction.Transaction, error) {
	data, err := s.kv.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return transaction.Transaction{}, domain.ErrTransactionNotFound
		}
		return transaction.Transaction{}, fmt.Errorf("fetch transaction %s: %w", id, err)
	}

	var dto transactionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return transaction.Transaction{}, fmt.Errorf("unmarshal transaction %s: %w", id, err)
	}

	txn, err := fromDTO(id, dto)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("rebuild transaction %s: %w", id, err)
	}
	return txn, nil
}

func (s *Store) key(id string) string {
	return s.keyPrefix + "txn:" + id
}
