// Package investor stores investor vectors in a similarity index and queries them.
package investor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/investmatch/internal/db"
	"github.com/kailas-cloud/investmatch/internal/db/redis"
	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
	domInvestor "github.com/kailas-cloud/investmatch/internal/domain/investor"
)

// hashStore is the consumer interface for the hash-backed index (ISP).
type hashStore interface {
	HReplace(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// RedisRepo keeps investors as hashes under an FT index with a COSINE HNSW vector field.
type RedisRepo struct {
	store hashStore
	dim   int
	hnsw  HNSWConfig
}

// NewRedis creates a hash-backed investor index.
func NewRedis(s hashStore, dim int, hnsw HNSWConfig) *RedisRepo {
	return &RedisRepo{store: s, dim: dim, hnsw: hnsw}
}

// EnsureIndex creates the FT index unless it already exists.
func (r *RedisRepo) EnsureIndex(ctx context.Context) error {
	name := indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w: %w", name, domain.ErrIndexUnavailable, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(name).
		Prefix(keyPrefix()).
		Tag(domInvestor.FieldInvestorID).
		Numeric(domInvestor.FieldTicketMin).
		Numeric(domInvestor.FieldTicketMax).
		VectorHNSW(fieldVector, "vector", r.dim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w: %w", name, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Upsert replaces the hash stored for the entry id.
func (r *RedisRepo) Upsert(ctx context.Context, e index.Entry) error {
	if err := validateEntry(e, r.dim); err != nil {
		return err
	}

	fields := make(map[string]string, len(e.Metadata)+2)
	for k, v := range e.Metadata {
		fields[k] = v
	}
	fields[fieldContent] = e.Document
	fields[fieldVector] = redis.VectorToBytes(e.Vector)

	if err := r.store.HReplace(ctx, recordKey(e.ID), fields); err != nil {
		return fmt.Errorf("upsert investor %s: %w: %w", e.ID, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query returns up to k nearest investors. Raw cosine distance in [0, 2] is halved into [0, 1].
func (r *RedisRepo) Query(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error) {
	if k <= 0 {
		return []candidate.Candidate{}, nil
	}

	returnFields := make([]string, 0, len(domInvestor.MetadataFields)+2)
	returnFields = append(returnFields, domInvestor.MetadataFields...)
	returnFields = append(returnFields, fieldContent, fieldScore)

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
		RawScores:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("query investors: %w: %w", domain.ErrIndexUnavailable, err)
	}

	out := make([]candidate.Candidate, 0, len(sr.Entries))
	prefix := keyPrefix()
	for _, entry := range sr.Entries {
		id := entry.Fields[domInvestor.FieldInvestorID]
		if id == "" {
			id = strings.TrimPrefix(entry.Key, prefix)
		}
		doc := entry.Fields[fieldContent]
		delete(entry.Fields, fieldContent)

		out = append(out, candidate.Candidate{
			ID:       id,
			Metadata: entry.Fields,
			Document: doc,
			Distance: clampUnit(entry.Score / 2),
		})
	}
	sortByDistance(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func validateEntry(e index.Entry, dim int) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required: %w", domain.ErrInvalidInput)
	}
	if len(e.Vector) == 0 {
		return fmt.Errorf("entry %s has no vector: %w", e.ID, domain.ErrInvalidInput)
	}
	if dim > 0 && len(e.Vector) != dim {
		return fmt.Errorf("entry %s vector has %d dimensions, index expects %d: %w",
			e.ID, len(e.Vector), dim, domain.ErrInvalidInput)
	}
	return nil
}
