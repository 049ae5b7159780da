package ingest

import (
	"context"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
)

// Embedder vectorizes investor documents.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// IndexWriter stores investor vectors, replacing any previous entry with the same id.
type IndexWriter interface {
	Upsert(ctx context.Context, e index.Entry) error
}
