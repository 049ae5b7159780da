package investor

import (
	"context"

	"github.com/kailas-cloud/investmatch/internal/db"
	"github.com/kailas-cloud/investmatch/internal/db/qdrant"
)

// mockHashStore implements hashStore for tests.
type mockHashStore struct {
	hreplaceFn    func(ctx context.Context, key string, fields map[string]string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockHashStore) HReplace(ctx context.Context, key string, fields map[string]string) error {
	if m.hreplaceFn != nil {
		return m.hreplaceFn(ctx, key, fields)
	}
	return nil
}

func (m *mockHashStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockHashStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockHashStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

// mockPointStore implements pointStore for tests.
type mockPointStore struct {
	ensureFn func(ctx context.Context, name string, dim int) error
	upsertFn func(ctx context.Context, collection string, pts []qdrant.Point) error
	searchFn func(ctx context.Context, collection string, vec []float32, limit int) ([]qdrant.Hit, error)
}

func (m *mockPointStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, name, dim)
	}
	return nil
}

func (m *mockPointStore) Upsert(ctx context.Context, collection string, pts []qdrant.Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, pts)
	}
	return nil
}

func (m *mockPointStore) Search(
	ctx context.Context, collection string, vec []float32, limit int,
) ([]qdrant.Hit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, collection, vec, limit)
	}
	return nil, nil
}
