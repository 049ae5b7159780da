package qdrant

import (
	"context"
	"errors"
	"testing"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/kailas-cloud/investmatch/internal/db"
)

type fakePoints struct {
	upsertFn func(*pb.UpsertPoints) (*pb.PointsOperationResponse, error)
	searchFn func(*pb.SearchPoints) (*pb.SearchResponse, error)
}

func (f *fakePoints) Upsert(
	_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption,
) (*pb.PointsOperationResponse, error) {
	return f.upsertFn(in)
}

func (f *fakePoints) Search(
	_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption,
) (*pb.SearchResponse, error) {
	return f.searchFn(in)
}

type fakeCollections struct {
	names   []string
	listErr error
	created []*pb.CreateCollection
}

func (f *fakeCollections) List(
	_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption,
) (*pb.ListCollectionsResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	resp := &pb.ListCollectionsResponse{}
	for _, n := range f.names {
		resp.Collections = append(resp.Collections, &pb.CollectionDescription{Name: n})
	}
	return resp, nil
}

func (f *fakeCollections) Create(
	_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption,
) (*pb.CollectionOperationResponse, error) {
	f.created = append(f.created, in)
	return &pb.CollectionOperationResponse{Result: true}, nil
}

type fakeHealth struct {
	err error
}

func (f *fakeHealth) HealthCheck(
	_ context.Context, _ *pb.HealthCheckRequest, _ ...grpc.CallOption,
) (*pb.HealthCheckReply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.HealthCheckReply{Title: "qdrant", Version: "1.16.0"}, nil
}

func TestPing(t *testing.T) {
	s := NewStoreForTest(nil, nil, &fakeHealth{})
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s = NewStoreForTest(nil, nil, &fakeHealth{err: errors.New("unavailable")})
	var dbErr *db.Error
	if err := s.Ping(context.Background()); !errors.As(err, &dbErr) || dbErr.Op != db.OpHealth {
		t.Fatalf("expected db.Error with health op, got %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s := NewStoreForTest(nil, nil, &fakeHealth{err: errors.New("unavailable")})
	if err := s.WaitForReady(context.Background(), 200*time.Millisecond); err == nil {
		t.Fatal("expected timeout")
	}
}

func TestEnsureCollection_Existing(t *testing.T) {
	cols := &fakeCollections{names: []string{"other", "investors"}}
	s := NewStoreForTest(nil, cols, nil)

	if err := s.EnsureCollection(context.Background(), "investors", 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols.created) != 0 {
		t.Errorf("expected no create call, got %d", len(cols.created))
	}
}

func TestEnsureCollection_Creates(t *testing.T) {
	cols := &fakeCollections{}
	s := NewStoreForTest(nil, cols, nil)

	if err := s.EnsureCollection(context.Background(), "investors", 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(cols.created))
	}
	params := cols.created[0].GetVectorsConfig().GetParams()
	if params.GetSize() != 384 || params.GetDistance() != pb.Distance_Cosine {
		t.Errorf("unexpected params: %v", params)
	}
}

func TestEnsureCollection_Errors(t *testing.T) {
	s := NewStoreForTest(nil, &fakeCollections{listErr: errors.New("boom")}, nil)
	if err := s.EnsureCollection(context.Background(), "investors", 384); err == nil {
		t.Fatal("expected list error")
	}
	if err := s.EnsureCollection(context.Background(), "investors", 0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestUpsert(t *testing.T) {
	var got *pb.UpsertPoints
	pts := &fakePoints{upsertFn: func(in *pb.UpsertPoints) (*pb.PointsOperationResponse, error) {
		got = in
		return &pb.PointsOperationResponse{}, nil
	}}
	s := NewStoreForTest(pts, nil, nil)

	err := s.Upsert(context.Background(), "investors", []Point{{
		ID:      "7b0c6f64-3d9c-5b8a-9a53-4a1a1c7c2f10",
		Vector:  []float32{0.1, 0.2},
		Payload: map[string]string{"investor_id": "inv-1"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.GetCollectionName() != "investors" || !got.GetWait() {
		t.Errorf("unexpected request: %v", got)
	}
	p := got.GetPoints()[0]
	if p.GetId().GetUuid() != "7b0c6f64-3d9c-5b8a-9a53-4a1a1c7c2f10" {
		t.Errorf("id = %s", p.GetId().GetUuid())
	}
	if p.GetPayload()["investor_id"].GetStringValue() != "inv-1" {
		t.Errorf("payload = %v", p.GetPayload())
	}
}

func TestUpsert_Empty(t *testing.T) {
	s := NewStoreForTest(nil, nil, nil)
	if err := s.Upsert(context.Background(), "investors", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_Error(t *testing.T) {
	pts := &fakePoints{upsertFn: func(*pb.UpsertPoints) (*pb.PointsOperationResponse, error) {
		return nil, errors.New("unavailable")
	}}
	err := NewStoreForTest(pts, nil, nil).Upsert(context.Background(), "c", []Point{{ID: "x"}})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpUpsert {
		t.Fatalf("expected db.Error with upsert op, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	pts := &fakePoints{searchFn: func(in *pb.SearchPoints) (*pb.SearchResponse, error) {
		if in.GetLimit() != 2 || !in.GetWithPayload().GetEnable() {
			t.Errorf("unexpected request: %v", in)
		}
		return &pb.SearchResponse{Result: []*pb.ScoredPoint{
			{
				Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "u1"}},
				Score: 0.5,
				Payload: map[string]*pb.Value{
					"investor_id": {Kind: &pb.Value_StringValue{StringValue: "inv-1"}},
				},
			},
		}}, nil
	}}

	hits, err := NewStoreForTest(pts, nil, nil).Search(context.Background(), "investors", []float32{1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "u1" || hits[0].Score != 0.5 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if hits[0].Payload["investor_id"] != "inv-1" {
		t.Errorf("payload = %v", hits[0].Payload)
	}
}

func TestSearch_Errors(t *testing.T) {
	pts := &fakePoints{searchFn: func(*pb.SearchPoints) (*pb.SearchResponse, error) {
		return nil, errors.New("collection not found")
	}}
	s := NewStoreForTest(pts, nil, nil)
	if _, err := s.Search(context.Background(), "c", []float32{1}, 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
	var dbErr *db.Error
	if _, err := s.Search(context.Background(), "c", []float32{1}, 3); !errors.As(err, &dbErr) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}
