package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	var setKey string
	var setTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setKey, setTTL = key, ttl
		return nil
	}

	result, err := ce.Embed(context.Background(), "fintech seed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(setKey, "investmatch:emb_cache:bge-small:") {
		t.Errorf("cache key = %s", setKey)
	}
	if setTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", setTTL)
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return vectorToCacheBytes([]float32{0.4, 0.5, 0.6}), nil
	}

	result, err := ce.Embed(context.Background(), "fintech seed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d on hit, want 0", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times on hit", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	sentinel := errors.New("provider down")
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{err: sentinel})

	if _, err := ce.Embed(context.Background(), "x"); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestEmbed_CacheFailuresAreSoft(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("conn reset") }
	ms.setFn = func(context.Context, string, []byte, time.Duration) error { return errors.New("conn reset") }

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("cache errors must not fail the call: %v", err)
	}
	if len(result.Embedding) != 2 {
		t.Errorf("unexpected vector: %v", result.Embedding)
	}
}

func TestEmbed_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte{1, 2, 3}, nil }

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestEmbed_KeyScopedByModel(t *testing.T) {
	keys := map[string]bool{}
	ms := &mockKVStore{setFn: func(_ context.Context, key string, _ []byte, _ time.Duration) error {
		keys[key] = true
		return nil
	}}
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}

	for _, model := range []string{"m1", "m2"} {
		ce := New(inner, ms, model, 0, nil, zap.NewNop())
		if _, err := ce.Embed(context.Background(), "same text"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(keys) != 2 {
		t.Errorf("expected distinct keys per model, got %v", keys)
	}
}

func TestEmbed_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	stored := map[string][]byte{}
	ms := &mockKVStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return nil, nil
		},
		setFn: func(_ context.Context, key string, v []byte, _ time.Duration) error {
			stored[key] = v
			return nil
		},
	}
	ce := New(inner, ms, "m", 0, counter, zap.NewNop())

	for range 3 {
		if _, err := ce.Embed(context.Background(), "repeat"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
}
