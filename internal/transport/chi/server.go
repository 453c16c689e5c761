// Package chi exposes the registry over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pressregistry/titledex/internal/domain"
	domtitle "github.com/pressregistry/titledex/internal/domain/title"
	healthuc "github.com/pressregistry/titledex/internal/usecase/health"
	registryuc "github.com/pressregistry/titledex/internal/usecase/registry"
	searchuc "github.com/pressregistry/titledex/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest         = "bad_request"
	codeUnauthorized       = "unauthorized"
	codeValidationFailed   = "validation_failed"
	codePolicyViolation    = "policy_violation"
	codeSimilarityConflict = "similarity_conflict"
	codeNotFound           = "not_found"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code                    string `json:"code"`
	Message                 string `json:"message"`
	Rule                    string `json:"rule,omitempty"`
	ConflictingTitle        string `json:"conflicting_title,omitempty"`
	Similarity              *int   `json:"similarity,omitempty"`
	VerificationProbability *int   `json:"verification_probability,omitempty"`
}

// TitleRequest is the submit/revise payload.
type TitleRequest struct {
	TitleName        string `json:"title_name"`
	HindiTitle       string `json:"hindi_title,omitempty"`
	TitleCode        string `json:"title_code,omitempty"`
	RegisterSerialNo string `json:"register_serial_no,omitempty"`
	RegnNo           string `json:"regn_no,omitempty"`
	OwnerName        string `json:"owner_name,omitempty"`
	State            string `json:"state,omitempty"`
	StateCode        string `json:"state_code,omitempty"`
	PublicationCity  string `json:"publication_city,omitempty"`
	Periodicity      string `json:"periodicity,omitempty"`
}

// TitleResponse is the title view returned to callers.
type TitleResponse struct {
	ID                      string    `json:"id"`
	TitleName               string    `json:"title_name"`
	HindiTitle              string    `json:"hindi_title,omitempty"`
	TitleCode               string    `json:"title_code,omitempty"`
	RegisterSerialNo        string    `json:"register_serial_no,omitempty"`
	RegnNo                  string    `json:"regn_no,omitempty"`
	OwnerName               string    `json:"owner_name,omitempty"`
	State                   string    `json:"state,omitempty"`
	StateCode               string    `json:"state_code,omitempty"`
	PublicationCity         string    `json:"publication_city,omitempty"`
	Periodicity             string    `json:"periodicity,omitempty"`
	Verified                bool      `json:"verified"`
	Similarity              int       `json:"similarity"`
	VerificationProbability int       `json:"verification_probability"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// TitleListResponse is a paged listing.
type TitleListResponse struct {
	Results    []TitleResponse `json:"results"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalItems int             `json:"total_items"`
	TotalPages int             `json:"total_pages"`
}

// SearchResponse is an uncapped-criteria, capped-results search reply.
type SearchResponse struct {
	Results []TitleResponse `json:"results"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the registry, search and health services over chi routes.
type Server struct {
	registry      *registryuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	registry *registryuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		registry: registry,
		search:   search,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		policyViolationHandler,
		similarityConflictHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, codeForbidden),
	}
	return s
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1/titles", func(r chi.Router) {
		r.Post("/", s.SubmitTitle)
		r.Get("/", s.ListTitles)
		r.Get("/search", s.SearchTitles)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTitle)
			r.Put("/", s.ReviseTitle)
			r.Delete("/", s.RemoveTitle)
		})
	})
}

// SubmitTitle handles POST /api/v1/titles.
func (s *Server) SubmitTitle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := s.registry.Submit(r.Context(), ownerID, attrsFromRequest(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/titles/"+t.ID())
	writeJSON(w, http.StatusCreated, titleToResponse(&t))
}

// GetTitle handles GET /api/v1/titles/{id}.
func (s *Server) GetTitle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	t, err := s.registry.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, titleToResponse(&t))
}

// ReviseTitle handles PUT /api/v1/titles/{id}.
func (s *Server) ReviseTitle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := s.registry.Revise(r.Context(), ownerID, chi.URLParam(r, "id"), attrsFromRequest(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, titleToResponse(&t))
}

// RemoveTitle handles DELETE /api/v1/titles/{id}.
func (s *Server) RemoveTitle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.registry.Remove(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTitles handles GET /api/v1/titles.
func (s *Server) ListTitles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := registryuc.ListRequest{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		State:     q.Get("state"),
		Verified:  parseBoolPtr(q.Get("verified")),
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	page, err := s.registry.List(r.Context(), ownerID, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]TitleResponse, len(page.Items))
	for i := range page.Items {
		items[i] = titleToResponse(&page.Items[i])
	}

	totalPages := 0
	if page.PageSize > 0 {
		totalPages = (page.Total + page.PageSize - 1) / page.PageSize
	}
	writeJSON(w, http.StatusOK, TitleListResponse{
		Results:    items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.Total,
		TotalPages: totalPages,
	})
}

// SearchTitles handles GET /api/v1/titles/search.
func (s *Server) SearchTitles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := searchuc.Criteria{
		Query:     q.Get("q"),
		State:     q.Get("state"),
		OwnerName: q.Get("owner_name"),
		Verified:  parseBoolPtr(q.Get("verified")),
	}

	results, err := s.search.Search(r.Context(), criteria)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]TitleResponse, len(results))
	for i := range results {
		items[i] = titleToResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := UserID(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "user identity required")
		return "", false
	}
	return ownerID, true
}

func attrsFromRequest(req TitleRequest) domtitle.Attributes {
	return domtitle.Attributes{
		Name:             req.TitleName,
		HindiTitle:       req.HindiTitle,
		TitleCode:        req.TitleCode,
		RegisterSerialNo: req.RegisterSerialNo,
		RegnNo:           req.RegnNo,
		OwnerName:        req.OwnerName,
		State:            req.State,
		StateCode:        req.StateCode,
		PublicationCity:  req.PublicationCity,
		Periodicity:      req.Periodicity,
	}
}

func titleToResponse(t *domtitle.Title) TitleResponse {
	attrs := t.Attrs()
	return TitleResponse{
		ID:                      t.ID(),
		TitleName:               attrs.Name,
		HindiTitle:              attrs.HindiTitle,
		TitleCode:               attrs.TitleCode,
		RegisterSerialNo:        attrs.RegisterSerialNo,
		RegnNo:                  attrs.RegnNo,
		OwnerName:               attrs.OwnerName,
		State:                   attrs.State,
		StateCode:               attrs.StateCode,
		PublicationCity:         attrs.PublicationCity,
		Periodicity:             attrs.Periodicity,
		Verified:                t.Verified(),
		Similarity:              t.Similarity(),
		VerificationProbability: t.VerificationProbability(),
		CreatedAt:               time.UnixMilli(t.CreatedAt()).UTC(),
		UpdatedAt:               time.UnixMilli(t.UpdatedAt()).UTC(),
	}
}

func parseBoolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrPolicyViolation,
		domain.ErrSimilarityConflict,
		domain.ErrNotFound,
		domain.ErrForbidden,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// policyViolationHandler reports which naming rule fired and the term it matched.
func policyViolationHandler(w http.ResponseWriter, err error, msg string) bool {
	var pve *domain.PolicyViolationError
	if !errors.As(err, &pve) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    codePolicyViolation,
		Message: fmt.Sprintf("%s: %s (%q)", msg, pve.Rule, pve.Term),
		Rule:    pve.Rule,
	})
	return true
}

// similarityConflictHandler names the conflicting title and the offending score.
func similarityConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	var sce *domain.SimilarityConflictError
	if !errors.As(err, &sce) {
		return false
	}
	verificationProbability := 100 - sce.Percent
	writeJSON(w, http.StatusConflict, ErrorResponse{
		Code:                    codeSimilarityConflict,
		Message:                 fmt.Sprintf("title too similar to existing: %s", sce.ConflictingTitle),
		ConflictingTitle:        sce.ConflictingTitle,
		Similarity:              &sce.Percent,
		VerificationProbability: &verificationProbability,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, msg)
}
