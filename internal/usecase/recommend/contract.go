package recommend

import (
	"context"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
)

// Embedder vectorizes the startup query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// IndexReader returns the k nearest investors, nearest first.
type IndexReader interface {
	Query(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error)
}
