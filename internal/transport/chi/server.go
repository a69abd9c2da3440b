// Package chi wires the HTTP surface: routing, credential gating, and
// domain error mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	"github.com/kailas-cloud/kbsearch/internal/domain/answer"
	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/logger"
	"github.com/kailas-cloud/kbsearch/internal/transport/credgate"
	healthuc "github.com/kailas-cloud/kbsearch/internal/usecase/health"
	"github.com/kailas-cloud/kbsearch/internal/usecase/render"
	solveuc "github.com/kailas-cloud/kbsearch/internal/usecase/solve"
)

// Solver runs the question and pagination flows.
type Solver interface {
	Solve(ctx context.Context, raw string, caller solveuc.Caller,
		mode answer.Mode, pol policy.Policy) (render.Response, error)
	Paginate(ctx context.Context, transID string, page int) (render.Response, error)
}

// CredentialGate resolves caller identity and access policy.
type CredentialGate interface {
	Authenticate(ctx context.Context, creds credgate.Credentials) (credgate.Identity, error)
	Authorize(ctx context.Context, creds credgate.Credentials, userID string) (credgate.Grant, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	solver     Solver
	gate       CredentialGate
	health     HealthChecker
	userPolicy policy.Policy
	logger     *zap.Logger
}

// NewServer creates an HTTP API server. userPolicy is the caller-tier
// policy applied when the request comes from the app surface.
func NewServer(
	solver Solver,
	gate CredentialGate,
	health HealthChecker,
	userPolicy policy.Policy,
	logger *zap.Logger,
) *Server {
	return &Server{
		solver:     solver,
		gate:       gate,
		health:     health,
		userPolicy: userPolicy,
		logger:     logger,
	}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/solve", s.Solve)
	r.Get("/solve_es", s.Solve)
	r.Get("/pagination", s.Paginate)
	r.Get("/metrics", s.Metrics)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// caller is the resolved request context: who is asking and under
// which policy.
type caller struct {
	identity credgate.Identity
	mode     answer.Mode
	policy   policy.Policy
}

// resolveCaller gates the request through the credential services. The
// app surface gets the configured user-tier policy; every other caller
// gets the authorizer's resolved grant.
func (s *Server) resolveCaller(r *http.Request) (caller, error) {
	creds := credgate.Credentials{
		Authorization: r.Header.Get(credgate.HeaderAuthorization),
		Host:          r.Header.Get(credgate.HeaderHost),
	}
	if !creds.Present() {
		return caller{}, domain.ErrUnresolvedUser
	}

	identity, err := s.gate.Authenticate(r.Context(), creds)
	if err != nil {
		return caller{}, err
	}

	mode := answer.ModeForLocation(r.URL.Query().Get("location"))
	if mode == answer.App {
		return caller{identity: identity, mode: mode, policy: s.userPolicy}, nil
	}

	grant, err := s.gate.Authorize(r.Context(), creds, identity.UserID)
	if err != nil {
		return caller{}, err
	}
	pol := policy.New(grant.Policy.Categories, grant.Policy.Attributes)
	return caller{identity: identity, mode: mode, policy: pol}, nil
}

// Solve handles GET /solve and GET /solve_es.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	if question == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "question parameter is required")
		return
	}

	c, err := s.resolveCaller(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx := logger.WithCaller(r.Context(), c.identity.TenantID, c.identity.UserID)
	logger.FromContext(ctx).Info("question received",
		zap.String("link", "/search/#/solve/"+question),
		zap.String("email", c.identity.EmailID),
		zap.String("mode", string(c.mode)),
	)

	resp, err := s.solver.Solve(ctx, question,
		solveuc.Caller{TenantID: c.identity.TenantID, UserID: c.identity.UserID},
		c.mode, c.policy)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Paginate handles GET /pagination.
func (s *Server) Paginate(w http.ResponseWriter, r *http.Request) {
	transID := r.URL.Query().Get("trans_id")
	if transID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "trans_id parameter is required")
		return
	}
	page, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || page < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "offset must be a non-negative integer")
		return
	}

	c, err := s.resolveCaller(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx := logger.WithCaller(r.Context(), c.identity.TenantID, c.identity.UserID)
	resp, err := s.solver.Paginate(ctx, transID, page)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// handleError maps domain and upstream errors onto HTTP statuses. An
// upstream credential rejection is mirrored verbatim.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var se *credgate.StatusError
	switch {
	case errors.Is(err, domain.ErrUnresolvedUser):
		writeError(w, http.StatusBadRequest, "unresolved_user", domain.ErrUnresolvedUser.Error())
	case errors.As(err, &se):
		log.Warn("credential service rejected request",
			zap.String("service", se.Service),
			zap.Int("status", se.StatusCode),
		)
		writeError(w, se.StatusCode, "credential_rejected", se.Error())
	case errors.Is(err, domain.ErrEmptyTranslation):
		writeError(w, http.StatusBadRequest, "empty_translation", domain.ErrEmptyTranslation.Error())
	case errors.Is(err, domain.ErrTransactionNotFound):
		writeError(w, http.StatusBadRequest, "transaction_not_found", domain.ErrTransactionNotFound.Error())
	case errors.Is(err, domain.ErrBackendUnavailable):
		log.Error("knowledge backend unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "backend_unavailable", domain.ErrBackendUnavailable.Error())
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
