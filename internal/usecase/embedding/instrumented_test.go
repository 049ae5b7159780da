package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/domain"
)

type mockEmbedder struct {
	embedFn  func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	healthFn func(ctx context.Context) error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

func (m *mockEmbedder) HealthCheck(ctx context.Context) error {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(_ context.Context, text string) (domain.EmbeddingResult, error) {
		if text != "hello" {
			t.Errorf("text = %q", text)
		}
		return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 3}, nil
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", 0, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestInstrumentedEmbedder_ErrorKeepsSentinel(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, fmt.Errorf("boom: %w", domain.ErrEmbeddingUnavailable)
	}}
	p := NewInstrumentedEmbedder(inner, "test", "m", 0, zap.NewNop())

	if _, err := p.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestInstrumentedEmbedder_AppliesTimeout(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Error("expected a deadline")
		} else if time.Until(deadline) > time.Second {
			t.Errorf("deadline too far: %v", time.Until(deadline))
		}
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}}
	p := NewInstrumentedEmbedder(inner, "test", "m", 20*time.Millisecond, zap.NewNop())

	_, err := p.Embed(context.Background(), "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	inner := &mockEmbedder{healthFn: func(context.Context) error { return errors.New("down") }}
	p := NewInstrumentedEmbedder(inner, "test", "m", time.Second, zap.NewNop())

	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}
