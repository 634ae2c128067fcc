package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/capability"
	"github.com/khanhnv2901/reality-check/internal/checker"
	"github.com/khanhnv2901/reality-check/internal/reality"
	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

type domainRequest struct {
	Domain string `json:"domain"`
}

type batchRequest struct {
	Domains []string `json:"domains"`
}

type batchItem struct {
	Domain string                   `json:"domain"`
	Result reality.EvaluationResult `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Health != nil {
		if err := s.cfg.Health.Check(r.Context()); err != nil {
			s.writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Evaluator == nil {
		s.writeError(w, r, http.StatusNotImplemented, errors.New("evaluator not configured"))
		return
	}
	domain, ok := s.decodeDomain(w, r)
	if !ok {
		return
	}
	writeOK(w, s.cfg.Evaluator.Evaluate(r.Context(), domain))
}

func (s *Server) handleQuick(w http.ResponseWriter, r *http.Request) {
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))
	if domain == "" {
		s.writeError(w, r, http.StatusBadRequest, sharederrors.ErrEmptyDomain)
		return
	}
	writeOK(w, reality.QuickCheck(domain))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Evaluator == nil {
		s.writeError(w, r, http.StatusNotImplemented, errors.New("evaluator not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodyBytes)
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %v", sharederrors.ErrInvalidInput, err))
		return
	}
	if len(req.Domains) == 0 {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: domains", sharederrors.ErrMissingRequired))
		return
	}
	maxBatch := s.cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = consts.MaxBatchDomains
	}
	if len(req.Domains) > maxBatch {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %d > %d", sharederrors.ErrTooManyDomains, len(req.Domains), maxBatch))
		return
	}

	runner := s.cfg.Runner
	if runner == nil {
		runner = &checker.Runner{Concurrency: 4}
	}

	budget := s.cfg.BatchTimeout
	if budget <= 0 {
		budget = consts.DefaultBatchTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), budget)
	defer cancel()

	items := make([]batchItem, len(req.Domains))
	runner.Each(ctx, len(req.Domains), func(ctx context.Context, i int) {
		domain := strings.TrimSpace(req.Domains[i])
		items[i] = batchItem{Domain: domain, Result: s.cfg.Evaluator.Evaluate(ctx, domain)}
	})

	if ctx.Err() != nil {
		s.requestLogger(r).Warn("batch_budget_exhausted",
			zap.Int("domains", len(req.Domains)),
			zap.Duration("budget", budget),
		)
	}
	writeOK(w, items)
}

func (s *Server) handleCheckReality(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Capability == nil {
		s.writeError(w, r, http.StatusNotImplemented, errors.New("capability service not configured"))
		return
	}
	domain, ok := s.decodeDomain(w, r)
	if !ok {
		return
	}

	resp, err := s.cfg.Capability.Check(r.Context(), domain)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sharederrors.ErrEmptyDomain) || errors.Is(err, sharederrors.ErrInvalidDomain) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, err)
		return
	}
	writeOK(w, resp)
}

// decodeDomain reads a {"domain": ...} body, writing the error response itself
// when the body is unusable.
func (s *Server) decodeDomain(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodyBytes)
	var req domainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %v", sharederrors.ErrInvalidInput, err))
		return "", false
	}
	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		s.writeError(w, r, http.StatusBadRequest, sharederrors.ErrEmptyDomain)
		return "", false
	}
	return domain, true
}
