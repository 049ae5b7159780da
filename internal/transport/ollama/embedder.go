// Package ollama is an embedding provider for a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/metrics"
)

const providerName = "ollama"

// Config holds the Ollama provider settings.
type Config struct {
	BaseURL    string // e.g. http://localhost:11434
	Model      string // e.g. nomic-embed-text
	Dimensions int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Embedder calls POST /api/embed.
type Embedder struct {
	client     *api.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("ollama url %q must be absolute", cfg.BaseURL)
	}
	if cfg.Model == "" {
		return nil, errors.New("ollama model is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     api.NewClient(base, httpClient),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		logger:     logger,
	}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: domain.ProviderInput(text)})
	duration := time.Since(start)

	if err != nil {
		e.fail("api_error")
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return domain.EmbeddingResult{}, fmt.Errorf("ollama error %d: %s: %w",
				statusErr.StatusCode, statusErr.ErrorMessage, domain.ErrEmbeddingUnavailable)
		}
		return domain.EmbeddingResult{}, fmt.Errorf("ollama request failed: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		e.fail("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingUnavailable)
	}

	vec := resp.Embeddings[0]
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.fail("dimension_mismatch")
		return domain.EmbeddingResult{}, fmt.Errorf("embedding has %d dimensions, expected %d: %w",
			len(vec), e.dimensions, domain.ErrEmbeddingUnavailable)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())
	if resp.PromptEvalCount > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "prompt").Add(float64(resp.PromptEvalCount))
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "total").Add(float64(resp.PromptEvalCount))
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// HealthCheck pings the server root.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}

func (e *Embedder) fail(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, kind).Inc()
	e.logger.Warn("Embedding request failed", zap.String("provider", providerName), zap.String("reason", kind))
}
