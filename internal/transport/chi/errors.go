package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/logger"
)

// Error codes returned in the "error" field.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeNotFound             = "not_found"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeIndexUnavailable     = "index_unavailable"
	codeInternal             = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The sentinel text is the detail, so wrapped internals never reach the client.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

// recordErrorMessage describes a failed ingestion record. Validation errors are
// caller-facing; dependency failures collapse to their sentinel text.
func recordErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return domain.ErrEmbeddingUnavailable.Error()
	case errors.Is(err, domain.ErrIndexUnavailable):
		return domain.ErrIndexUnavailable.Error()
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}
