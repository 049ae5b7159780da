// Package chi is the HTTP adapter of the recommendation service.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/investmatch/internal/domain/batch"
	"github.com/kailas-cloud/investmatch/internal/logger"
	"github.com/kailas-cloud/investmatch/internal/metrics"
	healthuc "github.com/kailas-cloud/investmatch/internal/usecase/health"
)

const (
	homeMessage = "Welcome to the Startup Investor Recommendation API!"

	// maxBodyBytes caps request bodies; ingestion batches are the largest payloads.
	maxBodyBytes = 8 << 20
)

// Server holds the HTTP handlers.
type Server struct {
	recommender   Recommender
	ingester      Ingester
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(rec Recommender, ing Ingester, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		recommender:   rec,
		ingester:      ing,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router wires middleware and routes. Middleware order: panic recovery,
// request id, canonical request log, HTTP metrics, tracing.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(metrics.Middleware())
	r.Use(Tracing())

	r.Get("/", s.Home)
	r.Post("/recommend", s.Recommend)
	r.Post("/add_investors", s.AddInvestors)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Message: homeMessage,
		Endpoints: map[string]string{
			"recommend":     "POST /recommend",
			"add_investors": "POST /add_investors",
			"health":        "GET /health",
			"metrics":       "GET /metrics",
		},
	})
}

// Recommend handles POST /recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	req, err := recommendRequestFromBody(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	profile := req.profile()
	results, err := s.recommender.Recommend(r.Context(), profile)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]recommendationItem, len(results))
	for i, res := range results {
		items[i] = recommendationItem{
			InvestorID: res.InvestorID(),
			Score:      res.Score(),
			Reasons:    res.Reasons(),
		}
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		StartupID:       req.StartupID,
		K:               profile.K(),
		Recommendations: items,
	})
}

// AddInvestors handles POST /add_investors. Individual record failures still yield 200.
func (s *Server) AddInvestors(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	records, err := investorsFromBody(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results := s.ingester.Ingest(r.Context(), records)

	items := make([]investorResultItem, len(results))
	for i, res := range results {
		items[i] = investorResultItem{InvestorID: res.ID()}
		if res.Status() == dombatch.StatusSuccess {
			items[i].Status = string(dombatch.StatusSuccess)
		} else {
			items[i].Error = recordErrorMessage(res.Err())
		}
	}

	ok, failed := dombatch.Summarize(results)
	logger.FromContext(r.Context()).Info("Investors ingested",
		zap.Int("ok", ok),
		zap.Int("failed", failed),
	)

	writeJSON(w, http.StatusOK, addInvestorsResponse{Results: items})
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

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}
