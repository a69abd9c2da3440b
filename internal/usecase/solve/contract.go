package solve

import (
	"context"

	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
	"github.com/kailas-cloud/kbsearch/internal/domain/question"
	"github.com/kailas-cloud/kbsearch/internal/domain/transaction"
)

// Translator forms structured queries from a question and policy.
type Translator interface {
	Form(q *question.Question, pol policy.Policy) ([]query.Formed, error)
}

// TransactionStore persists formed-query batches for pagination.
type TransactionStore interface {
	Save(ctx context.Context, txn *transaction.Transaction) error
	Fetch(ctx context.Context, id string) (transaction.Transaction, error)
}

// Executor runs one formed query against the knowledge backend.
type Executor interface {
	Execute(ctx context.Context, q *query.Formed) ([]answer.Hit, error)
}
