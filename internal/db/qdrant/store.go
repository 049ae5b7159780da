// Package qdrant is a vector store backed by Qdrant over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kailas-cloud/investmatch/internal/db"
)

const readyPollInterval = 100 * time.Millisecond

// Narrow views of the generated gRPC clients, so tests can fake them.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

type collectionsAPI interface {
	List(
		ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption,
	) (*pb.ListCollectionsResponse, error)
	Create(
		ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption,
	) (*pb.CollectionOperationResponse, error)
}

type healthAPI interface {
	HealthCheck(ctx context.Context, in *pb.HealthCheckRequest, opts ...grpc.CallOption) (*pb.HealthCheckReply, error)
}

// Config holds connection parameters for Qdrant.
type Config struct {
	Addr string // host:port of the gRPC listener, usually :6334
}

// Point is a single vector with string payload.
type Point struct {
	ID      string // UUID
	Vector  []float32
	Payload map[string]string
}

// Hit is a search result. Score is cosine similarity in [-1, 1].
type Hit struct {
	ID      string
	Score   float64
	Payload map[string]string
}

// Store talks to Qdrant via the generated gRPC clients.
type Store struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	health      healthAPI
}

// NewStore dials Qdrant. The connection is lazy; use WaitForReady to block on availability.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("qdrant addr is required")
	}
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		health:      pb.NewQdrantClient(conn),
	}, nil
}

// Ping runs the Qdrant health check RPC.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.health.HealthCheck(ctx, &pb.HealthCheckRequest{}); err != nil {
		return &db.Error{Op: db.OpHealth, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until Qdrant answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for qdrant: %w", ctx.Err())
		case <-ticker.C:
			if s.Ping(ctx) == nil {
				return nil
			}
		}
	}
}

// Close releases the gRPC connection.
func (s *Store) Close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// EnsureCollection creates a cosine collection with the given vector size unless it exists.
func (s *Store) EnsureCollection(ctx context.Context, name string, dim int) error {
	if dim <= 0 {
		return &db.Error{Op: db.OpCollection, Err: errors.New("vector size must be positive")}
	}

	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return &db.Error{Op: db.OpCollection, Err: err}
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
			Params: &pb.VectorParams{Size: uint64(dim), Distance: pb.Distance_Cosine},
		}},
	})
	if err != nil {
		return &db.Error{Op: db.OpCollection, Err: fmt.Errorf("create %s: %w", name, err)}
	}
	return nil
}

// Upsert writes points, replacing any point with the same id including its whole payload.
func (s *Store) Upsert(ctx context.Context, collection string, pts []Point) error {
	if len(pts) == 0 {
		return nil
	}

	out := make([]*pb.PointStruct, len(pts))
	for i, p := range pts {
		payload := make(map[string]*pb.Value, len(p.Payload))
		for k, v := range p.Payload {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}
		out[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: p.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: p.Vector}}},
			Payload: payload,
		}
	}

	wait := true
	if _, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         out,
	}); err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Search returns up to limit nearest points, most similar first.
func (s *Store) Search(ctx context.Context, collection string, vec []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vec,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	hits := make([]Hit, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		payload := make(map[string]string, len(pt.GetPayload()))
		for k, v := range pt.GetPayload() {
			payload[k] = v.GetStringValue()
		}
		hits = append(hits, Hit{
			ID:      pt.GetId().GetUuid(),
			Score:   float64(pt.GetScore()),
			Payload: payload,
		})
	}
	return hits, nil
}
