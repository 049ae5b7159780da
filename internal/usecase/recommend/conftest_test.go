package recommend

import (
	"context"
	"sync"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
)

type mockEmbedder struct {
	embedFn  func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	lastText string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}}, nil
}

type mockIndex struct {
	queryFn func(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error)
	lastK   int
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error) {
	m.lastK = k
	if m.queryFn != nil {
		return m.queryFn(ctx, vector, k)
	}
	return nil, nil
}

// memIndex keeps entries in write order and returns them with a fixed
// distance step, emulating a backend with whole-record upsert.
type memIndex struct {
	mu    sync.Mutex
	order []string
	byID  map[string]index.Entry
}

func newMemIndex() *memIndex { return &memIndex{byID: map[string]index.Entry{}} }

func (m *memIndex) Upsert(_ context.Context, e index.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.byID[e.ID] = e
	return nil
}

func (m *memIndex) Query(_ context.Context, _ []float32, k int) ([]candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]candidate.Candidate, 0, k)
	for i, id := range m.order {
		if i == k {
			break
		}
		e := m.byID[id]
		out = append(out, candidate.Candidate{
			ID:       id,
			Metadata: e.Metadata,
			Document: e.Document,
			Distance: 0.1 * float64(i+1),
		})
	}
	return out, nil
}

func cand(id string, distance float64, stages, tags, lo, hi string) candidate.Candidate {
	return candidate.Candidate{
		ID:       id,
		Distance: distance,
		Metadata: map[string]string{
			"investor_id":    id,
			"stage_focus":    stages,
			"industry_tags":  tags,
			"ticket_min_egp": lo,
			"ticket_max_egp": hi,
		},
	}
}

func ptr[T any](v T) *T { return &v }
