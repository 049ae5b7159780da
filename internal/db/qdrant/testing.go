package qdrant

// NewStoreForTest builds a Store over fake gRPC clients.
func NewStoreForTest(points pointsAPI, collections collectionsAPI, health healthAPI) *Store {
	return &Store{points: points, collections: collections, health: health}
}
