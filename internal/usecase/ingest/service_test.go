package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/investmatch/internal/domain"
	dombatch "github.com/kailas-cloud/investmatch/internal/domain/batch"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
)

func TestIngest_Success(t *testing.T) {
	emb := &mockEmbedder{}
	idx := newMemIndex()
	svc := New(emb, idx)

	results := svc.Ingest(context.Background(), []map[string]any{validRecord("inv-1"), validRecord("inv-2")})

	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	for _, r := range results {
		if !r.OK() {
			t.Errorf("%s failed: %v", r.ID(), r.Err())
		}
	}
	e := idx.entries["inv-1"]
	if e.Document != "Backing payment rails in MENA. fintech payments" {
		t.Errorf("document = %q", e.Document)
	}
	if e.Metadata["investor_id"] != "inv-1" || len(e.Vector) != 2 {
		t.Errorf("entry = %+v", e)
	}
	if emb.texts[0] != e.Document {
		t.Errorf("embedded %q, stored %q", emb.texts[0], e.Document)
	}
}

func TestIngest_PartialFailure(t *testing.T) {
	missing := validRecord("inv-2")
	delete(missing, "thesis_text")
	nullEmail := validRecord("inv-3")
	nullEmail["email"] = nil

	svc := New(&mockEmbedder{}, newMemIndex())
	results := svc.Ingest(context.Background(), []map[string]any{validRecord("inv-1"), missing, nullEmail, validRecord("inv-4")})

	wantOK := []bool{true, false, false, true}
	for i, r := range results {
		if r.OK() != wantOK[i] {
			t.Errorf("record %d ok = %v, want %v (err %v)", i, r.OK(), wantOK[i], r.Err())
		}
	}
	if !errors.Is(results[1].Err(), domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", results[1].Err())
	}
	if results[1].ID() != "inv-2" {
		t.Errorf("failed record id = %q", results[1].ID())
	}
}

func TestIngest_DependencyFailuresArePerRecord(t *testing.T) {
	emb := &mockEmbedder{embedFn: func(_ context.Context, text string) (domain.EmbeddingResult, error) {
		if text == "boom" {
			return domain.EmbeddingResult{}, fmt.Errorf("provider: %w", domain.ErrEmbeddingUnavailable)
		}
		return domain.EmbeddingResult{Embedding: []float32{1}}, nil
	}}
	idx := newMemIndex()
	idx.upsertFn = func(e index.Entry) error {
		if e.ID == "inv-3" {
			return fmt.Errorf("redis: %w", domain.ErrIndexUnavailable)
		}
		return nil
	}

	bad := validRecord("inv-2")
	bad["thesis_text"] = "boom"
	bad["industry_tags"] = nil

	results := New(emb, idx).Ingest(context.Background(),
		[]map[string]any{validRecord("inv-1"), bad, validRecord("inv-3")})

	if !results[0].OK() {
		t.Errorf("inv-1 failed: %v", results[0].Err())
	}
	if !errors.Is(results[1].Err(), domain.ErrEmbeddingUnavailable) {
		t.Errorf("inv-2 err = %v", results[1].Err())
	}
	if !errors.Is(results[2].Err(), domain.ErrIndexUnavailable) {
		t.Errorf("inv-3 err = %v", results[2].Err())
	}
}

func TestIngest_DuplicateIDOverwrites(t *testing.T) {
	idx := newMemIndex()
	second := validRecord("inv-1")
	second["name"] = "Renamed Capital"

	New(&mockEmbedder{}, idx).Ingest(context.Background(), []map[string]any{validRecord("inv-1"), second})

	if len(idx.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(idx.entries))
	}
	if idx.entries["inv-1"].Metadata["name"] != "Renamed Capital" {
		t.Errorf("expected the second write to win, got %s", idx.entries["inv-1"].Metadata["name"])
	}
}

func TestIngest_OversizedBatch(t *testing.T) {
	svc := New(&mockEmbedder{}, newMemIndex()).WithMaxBatchSize(2)
	records := []map[string]any{validRecord("a"), validRecord("b"), validRecord("c")}

	results := svc.Ingest(context.Background(), records)
	if ok, failed := dombatch.Summarize(results); ok != 0 || failed != 3 {
		t.Fatalf("ok=%d failed=%d, want 0/3", ok, failed)
	}
	if !errors.Is(results[0].Err(), domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", results[0].Err())
	}
}

func TestIngest_CustomRequiredFields(t *testing.T) {
	raw := map[string]any{"investor_id": "inv-9", "thesis_text": "climate"}
	svc := New(&mockEmbedder{}, newMemIndex()).WithRequiredFields([]string{"investor_id"})

	if r := svc.Ingest(context.Background(), []map[string]any{raw}); !r[0].OK() {
		t.Fatalf("unexpected failure: %v", r[0].Err())
	}
}

func TestIngest_IndexTimeout(t *testing.T) {
	idx := newMemIndex()
	idx.ctxFn = func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("expected deadline")
		}
		return nil
	}
	svc := New(&mockEmbedder{}, idx).WithIndexTimeout(time.Second)

	if r := svc.Ingest(context.Background(), []map[string]any{validRecord("inv-1")}); !r[0].OK() {
		t.Fatalf("unexpected failure: %v", r[0].Err())
	}
}

func TestIngest_NoIndexTimeoutByDefault(t *testing.T) {
	idx := newMemIndex()
	idx.ctxFn = func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			return errors.New("unexpected deadline")
		}
		return nil
	}

	if r := New(&mockEmbedder{}, idx).Ingest(context.Background(), []map[string]any{validRecord("inv-1")}); !r[0].OK() {
		t.Fatalf("unexpected failure: %v", r[0].Err())
	}
}

func TestIngest_EmptyThesisNoTags(t *testing.T) {
	raw := validRecord("inv-blank")
	raw["thesis_text"] = ""
	raw["industry_tags"] = []any{}
	emb := &mockEmbedder{}
	idx := newMemIndex()

	if r := New(emb, idx).Ingest(context.Background(), []map[string]any{raw}); !r[0].OK() {
		t.Fatalf("unexpected failure: %v", r[0].Err())
	}
	if _, ok := idx.entries["inv-blank"]; !ok {
		t.Error("record not stored")
	}
}
