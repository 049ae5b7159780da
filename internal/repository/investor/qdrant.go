package investor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/investmatch/internal/db/qdrant"
	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
	domInvestor "github.com/kailas-cloud/investmatch/internal/domain/investor"
)

// pointNamespace seeds deterministic point ids; Qdrant only accepts UUIDs or integers.
var pointNamespace = uuid.MustParse("4f1b8a0e-6a47-5c1e-9d55-2b7f3c9e8a61")

const payloadDocument = "document"

// pointStore is the consumer interface for the Qdrant-backed index (ISP).
type pointStore interface {
	EnsureCollection(ctx context.Context, name string, dim int) error
	Upsert(ctx context.Context, collection string, pts []qdrant.Point) error
	Search(ctx context.Context, collection string, vec []float32, limit int) ([]qdrant.Hit, error)
}

// QdrantRepo keeps investors as points in a cosine collection.
type QdrantRepo struct {
	store      pointStore
	collection string
	dim        int
}

// NewQdrant creates a Qdrant-backed investor index.
func NewQdrant(s pointStore, collection string, dim int) *QdrantRepo {
	if collection == "" {
		collection = domain.InvestorCollection
	}
	return &QdrantRepo{store: s, collection: collection, dim: dim}
}

// PointID maps an investor id to its stable point UUID.
func PointID(investorID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(investorID)).String()
}

// EnsureIndex creates the collection unless it exists.
func (r *QdrantRepo) EnsureIndex(ctx context.Context) error {
	if err := r.store.EnsureCollection(ctx, r.collection, r.dim); err != nil {
		return fmt.Errorf("ensure collection %s: %w: %w", r.collection, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Upsert replaces the point for the entry id, payload included.
func (r *QdrantRepo) Upsert(ctx context.Context, e index.Entry) error {
	if err := validateEntry(e, r.dim); err != nil {
		return err
	}

	payload := make(map[string]string, len(e.Metadata)+2)
	for k, v := range e.Metadata {
		payload[k] = v
	}
	payload[domInvestor.FieldInvestorID] = e.ID
	payload[payloadDocument] = e.Document

	err := r.store.Upsert(ctx, r.collection, []qdrant.Point{{
		ID:      PointID(e.ID),
		Vector:  e.Vector,
		Payload: payload,
	}})
	if err != nil {
		return fmt.Errorf("upsert investor %s: %w: %w", e.ID, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query returns up to k nearest investors. Cosine similarity s is mapped to distance (1-s)/2.
func (r *QdrantRepo) Query(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error) {
	if k <= 0 {
		return []candidate.Candidate{}, nil
	}

	hits, err := r.store.Search(ctx, r.collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("query investors: %w: %w", domain.ErrIndexUnavailable, err)
	}

	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		doc := h.Payload[payloadDocument]
		delete(h.Payload, payloadDocument)

		id := h.Payload[domInvestor.FieldInvestorID]
		if id == "" {
			id = h.ID
		}
		out = append(out, candidate.Candidate{
			ID:       id,
			Metadata: h.Payload,
			Document: doc,
			Distance: clampUnit((1 - h.Score) / 2),
		})
	}
	sortByDistance(out)
	return out, nil
}
