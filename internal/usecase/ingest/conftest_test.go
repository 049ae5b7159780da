package ingest

import (
	"context"
	"sync"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// memIndex is an in-memory IndexWriter keyed by id.
type memIndex struct {
	mu       sync.Mutex
	entries  map[string]index.Entry
	upsertFn func(e index.Entry) error
	ctxFn    func(ctx context.Context) error
}

func newMemIndex() *memIndex {
	return &memIndex{entries: map[string]index.Entry{}}
}

func (m *memIndex) Upsert(ctx context.Context, e index.Entry) error {
	if m.ctxFn != nil {
		if err := m.ctxFn(ctx); err != nil {
			return err
		}
	}
	if m.upsertFn != nil {
		if err := m.upsertFn(e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func validRecord(id string) map[string]any {
	return map[string]any{
		"investor_id":    id,
		"name":           "Nile Ventures",
		"stage_focus":    []any{"Seed", "Series A"},
		"ticket_min_egp": 500000,
		"ticket_max_egp": 5000000,
		"industry_tags":  []any{"fintech", "payments"},
		"thesis_text":    "Backing payment rails in MENA.",
		"email":          "deals@nile.vc",
	}
}
