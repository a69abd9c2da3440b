package solve

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
	"github.com/kailas-cloud/kbsearch/internal/domain/question"
	"github.com/kailas-cloud/kbsearch/internal/domain/transaction"
)

type fakeTranslator struct {
	formed []query.Formed
	err    error
}

func (f *fakeTranslator) Form(*question.Question, policy.Policy) ([]query.Formed, error) {
	return f.formed, f.err
}

type fakeTxnStore struct {
	saved   *transaction.Transaction
	saveErr error

	fetchTxn transaction.Transaction
	fetchErr error

	calls *[]string
}

func (f *fakeTxnStore) Save(_ context.Context, txn *transaction.Transaction) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, "save")
	}
	f.saved = txn
	return f.saveErr
}

func (f *fakeTxnStore) Fetch(_ context.Context, _ string) (transaction.Transaction, error) {
	return f.fetchTxn, f.fetchErr
}

type fakeExecutor struct {
	hits    map[string][]answer.Hit
	failFor map[string]error

	calls *[]string
}

func (f *fakeExecutor) Execute(_ context.Context, q *query.Formed) ([]answer.Hit, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, "execute:"+q.Category())
	}
	if err, ok := f.failFor[q.Category()]; ok {
		return nil, err
	}
	return f.hits[q.Category()], nil
}

func mustQuery(t *testing.T, category string) query.Formed {
	t.Helper()
	q, err := query.New(category, "", []string{"ent-" + category}, []string{category}, nil)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

func manyQueries(t *testing.T, n int) []query.Formed {
	t.Helper()
	out := make([]query.Formed, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mustQuery(t, fmt.Sprintf("cat-%02d", i)))
	}
	return out
}

func fixedID(id string) Option {
	return WithIDGenerator(func() string { return id })
}

func newService(tr Translator, txns TransactionStore, ex Executor, opts ...Option) *Service {
	norm := question.NewNormalizer([]string{"policy", "label"}, "")
	return New(norm, tr, txns, ex, opts...)
}

func TestSolve_SavesBeforeExecuting(t *testing.T) {
	var calls []string
	txns := &fakeTxnStore{calls: &calls}
	ex := &fakeExecutor{calls: &calls}
	svc := newService(
		&fakeTranslator{formed: []query.Formed{mustQuery(t, "topic")}},
		txns, ex, fixedID("trans-1"),
	)

	resp, err := svc.Solve(context.Background(), "dosage", Caller{TenantID: "t1", UserID: "u1"},
		answer.Search, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if len(calls) != 2 || calls[0] != "save" || calls[1] != "execute:topic" {
		t.Errorf("call order = %v, want save before execute", calls)
	}
	if resp.TransID != "trans-1" {
		t.Errorf("TransID = %q", resp.TransID)
	}
	if txns.saved == nil || txns.saved.ID() != "trans-1" {
		t.Fatalf("transaction not saved: %+v", txns.saved)
	}
	meta := txns.saved.Meta()
	if meta.TenantID() != "t1" || meta.UserID() != "u1" || meta.Mode() != answer.Search {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestSolve_EmptyTranslation(t *testing.T) {
	txns := &fakeTxnStore{}
	svc := newService(&fakeTranslator{formed: nil}, txns, &fakeExecutor{})

	_, err := svc.Solve(context.Background(), "unrelated words", Caller{},
		answer.Search, policy.New(nil, nil))
	if !errors.Is(err, domain.ErrEmptyTranslation) {
		t.Fatalf("err = %v, want ErrEmptyTranslation", err)
	}
	if txns.saved != nil {
		t.Error("empty translation should not persist a transaction")
	}
}

func TestSolve_ExecutesFirstPageOnly(t *testing.T) {
	var calls []string
	formed := manyQueries(t, transaction.PageSize+5)
	svc := newService(
		&fakeTranslator{formed: formed},
		&fakeTxnStore{},
		&fakeExecutor{calls: &calls},
		fixedID("trans-2"),
	)

	resp, err := svc.Solve(context.Background(), "q", Caller{}, answer.Search, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	executed := 0
	for _, c := range calls {
		if c != "save" {
			executed++
		}
	}
	if executed != transaction.PageSize {
		t.Errorf("executed %d queries, want %d", executed, transaction.PageSize)
	}
	if resp.Total != len(formed) {
		t.Errorf("Total = %d, want %d", resp.Total, len(formed))
	}
}

func TestSolve_PartialFailureDegrades(t *testing.T) {
	svc := newService(
		&fakeTranslator{formed: []query.Formed{mustQuery(t, "topic"), mustQuery(t, "drug")}},
		&fakeTxnStore{},
		&fakeExecutor{
			hits:    map[string][]answer.Hit{"topic": {answer.NewHit("d1", 1, nil)}},
			failFor: map[string]error{"drug": errors.New("backend timeout")},
		},
		fixedID("trans-3"),
	)

	resp, err := svc.Solve(context.Background(), "q", Caller{}, answer.Search, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].Unavailable {
		t.Error("successful query marked unavailable")
	}
	if !resp.Results[1].Unavailable {
		t.Error("failed query should be unavailable")
	}
}

func TestSolve_AllFailedIsBackendUnavailable(t *testing.T) {
	svc := newService(
		&fakeTranslator{formed: []query.Formed{mustQuery(t, "topic"), mustQuery(t, "drug")}},
		&fakeTxnStore{},
		&fakeExecutor{failFor: map[string]error{
			"topic": errors.New("down"),
			"drug":  errors.New("down"),
		}},
		fixedID("trans-4"),
	)

	_, err := svc.Solve(context.Background(), "q", Caller{}, answer.Search, policy.New(nil, nil))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestSolve_FailFastAbortsOnFirstError(t *testing.T) {
	var calls []string
	execErr := errors.New("backend timeout")
	svc := newService(
		&fakeTranslator{formed: []query.Formed{mustQuery(t, "topic"), mustQuery(t, "drug")}},
		&fakeTxnStore{},
		&fakeExecutor{calls: &calls, failFor: map[string]error{"topic": execErr}},
		fixedID("trans-5"), WithFailFast(true),
	)

	_, err := svc.Solve(context.Background(), "q", Caller{}, answer.Search, policy.New(nil, nil))
	if !errors.Is(err, execErr) {
		t.Fatalf("err = %v, want wrapped execution error", err)
	}
	executed := 0
	for _, c := range calls {
		if c != "save" {
			executed++
		}
	}
	if executed != 1 {
		t.Errorf("executed %d queries after failure, want 1", executed)
	}
}

func TestSolve_SaveFailureAborts(t *testing.T) {
	var calls []string
	svc := newService(
		&fakeTranslator{formed: []query.Formed{mustQuery(t, "topic")}},
		&fakeTxnStore{calls: &calls, saveErr: errors.New("store down")},
		&fakeExecutor{calls: &calls},
		fixedID("trans-6"),
	)

	_, err := svc.Solve(context.Background(), "q", Caller{}, answer.Search, policy.New(nil, nil))
	if err == nil {
		t.Fatal("expected save error")
	}
	for _, c := range calls {
		if c != "save" {
			t.Fatalf("executed %q after failed save", c)
		}
	}
}

func savedTxn(t *testing.T, id string, n int, mode answer.Mode) transaction.Transaction {
	t.Helper()
	meta := transaction.NewMetadata("t1", "u1", mode, time.Now())
	txn, err := transaction.New(id, manyQueries(t, n), meta)
	if err != nil {
		t.Fatalf("transaction.New: %v", err)
	}
	return txn
}

func TestPaginate_ServesSavedPage(t *testing.T) {
	var calls []string
	svc := newService(
		&fakeTranslator{},
		&fakeTxnStore{fetchTxn: savedTxn(t, "trans-1", transaction.PageSize+1, answer.App)},
		&fakeExecutor{calls: &calls},
	)

	resp, err := svc.Paginate(context.Background(), "trans-1", 1)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if resp.TransID != "trans-1" {
		t.Errorf("TransID = %q", resp.TransID)
	}
	// Mode comes from the saved transaction, not the request.
	if resp.Mode != answer.App {
		t.Errorf("Mode = %q, want app", resp.Mode)
	}
	if resp.Total != transaction.PageSize+1 {
		t.Errorf("Total = %d, want %d", resp.Total, transaction.PageSize+1)
	}
	// Page 1 holds only the query past the first page boundary.
	if len(calls) != 1 || calls[0] != "execute:cat-10" {
		t.Errorf("calls = %v", calls)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestPaginate_BeyondEndIsEmpty(t *testing.T) {
	var calls []string
	svc := newService(
		&fakeTranslator{},
		&fakeTxnStore{fetchTxn: savedTxn(t, "trans-1", 3, answer.Search)},
		&fakeExecutor{calls: &calls},
	)

	resp, err := svc.Paginate(context.Background(), "trans-1", 99)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %+v, want empty", resp.Results)
	}
	if len(calls) != 0 {
		t.Errorf("executed %v for empty page", calls)
	}
}

func TestPaginate_UnknownTransaction(t *testing.T) {
	svc := newService(
		&fakeTranslator{},
		&fakeTxnStore{fetchErr: domain.ErrTransactionNotFound},
		&fakeExecutor{},
	)

	_, err := svc.Paginate(context.Background(), "missing", 0)
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("err = %v, want ErrTransactionNotFound", err)
	}
}
