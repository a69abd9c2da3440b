// Package solve orchestrates the question pipeline: normalize,
// translate, persist, execute, render.
package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/domain/query"
	"github.com/kailas-cloud/kbsearch/internal/domain/question"
	"github.com/kailas-cloud/kbsearch/internal/domain/transaction"
	"github.com/kailas-cloud/kbsearch/internal/logger"
	"github.com/kailas-cloud/kbsearch/internal/metrics"
	"github.com/kailas-cloud/kbsearch/internal/usecase/render"
)

// Caller is the authenticated identity a request runs under.
type Caller struct {
	TenantID string
	UserID   string
}

// Service runs the end-to-end solve and pagination flows.
type Service struct {
	normalizer *question.Normalizer
	translator Translator
	txns       TransactionStore
	executor   Executor

	// failFast aborts the whole request on the first backend failure
	// instead of degrading to partial results.
	failFast bool

	newID func() string
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFailFast makes any single backend failure fail the whole request.
func WithFailFast(on bool) Option {
	return func(s *Service) { s.failFast = on }
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// New creates the solve service.
func New(
	normalizer *question.Normalizer,
	translator Translator,
	txns TransactionStore,
	executor Executor,
	opts ...Option,
) *Service {
	s := &Service{
		normalizer: normalizer,
		translator: translator,
		txns:       txns,
		executor:   executor,
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve answers a fresh question: it forms queries, saves them under a
// new transaction id, executes the first page, and renders the result.
// The transaction is saved before any execution so pagination works
// even when the backend is degraded. An empty translation returns
// domain.ErrEmptyTranslation.
func (s *Service) Solve(
	ctx context.Context, raw string, caller Caller, mode answer.Mode, pol policy.Policy,
) (render.Response, error) {
	start := s.now()
	log := logger.FromContext(ctx)

	q := s.normalizer.Parse(raw)
	formed, err := s.translator.Form(&q, pol)
	if err != nil {
		return render.Response{}, fmt.Errorf("translate question: %w", err)
	}
	if len(formed) == 0 {
		metrics.TranslationsTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
		log.Info("question yielded no formed queries",
			zap.String("mode", string(mode)),
			zap.Duration("duration", s.now().Sub(start)),
		)
		return render.Response{}, domain.ErrEmptyTranslation
	}
	metrics.TranslationsTotal.WithLabelValues(metrics.OutcomeFormed).Inc()
	metrics.FormedQueriesTotal.Add(float64(len(formed)))

	transID := s.newID()
	ctx = logger.WithTransaction(ctx, transID)
	log = logger.FromContext(ctx)

	meta := transaction.NewMetadata(caller.TenantID, caller.UserID, mode, start)
	txn, err := transaction.New(transID, formed, meta)
	if err != nil {
		return render.Response{}, fmt.Errorf("build transaction: %w", err)
	}
	if err := s.txns.Save(ctx, &txn); err != nil {
		return render.Response{}, err
	}

	results, err := s.execute(ctx, txn.Page(0))
	if err != nil {
		return render.Response{}, err
	}

	resp := render.Render(results, mode, transID, len(formed))
	log.Info("question solved",
		zap.String("mode", string(mode)),
		zap.Int("formed_queries", len(formed)),
		zap.Int("executed", len(results)),
		zap.Bool("end", len(formed) <= transaction.PageSize),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return resp, nil
}

// Paginate executes one saved page of a prior transaction. A page past
// the end of the sequence is a valid, empty response. The saved record
// is never mutated, so any page can be re-fetched in any order.
func (s *Service) Paginate(ctx context.Context, transID string, page int) (render.Response, error) {
	start := s.now()
	ctx = logger.WithTransaction(ctx, transID)
	log := logger.FromContext(ctx)

	txn, err := s.txns.Fetch(ctx, transID)
	if err != nil {
		return render.Response{}, err
	}

	queries := txn.Page(page)
	results, err := s.execute(ctx, queries)
	if err != nil {
		return render.Response{}, err
	}

	resp := render.Render(results, txn.Meta().Mode(), transID, len(txn.Queries()))
	log.Info("transaction page served",
		zap.Int("page", page),
		zap.Int("executed", len(results)),
		zap.Bool("end", (page+1)*transaction.PageSize >= len(txn.Queries())),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return resp, nil
}

// execute runs each query, recording per-query failures as unavailable
// results. When every query fails the backend is considered down.
func (s *Service) execute(ctx context.Context, queries []query.Formed) ([]answer.RawResult, error) {
	results := make([]answer.RawResult, 0, len(queries))
	failed := 0
	for i := range queries {
		q := &queries[i]
		hits, err := s.executor.Execute(ctx, q)
		if err != nil {
			if s.failFast {
				return nil, fmt.Errorf("execute queries: %w", err)
			}
			metrics.QueryExecFailuresTotal.Inc()
			logger.FromContext(ctx).Warn("query execution failed",
				zap.String("category", q.Category()),
				zap.Error(err),
			)
			results = append(results, answer.NewFailedResult(*q, err))
			failed++
			continue
		}
		results = append(results, answer.NewRawResult(*q, hits))
	}

	if len(queries) > 0 && failed == len(queries) {
		return nil, domain.ErrBackendUnavailable
	}
	return results, nil
}
