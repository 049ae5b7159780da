package investor

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/investmatch/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	r, err := New(Fields{
		ID:           "inv-1",
		Name:         "Nile Ventures",
		StageFocus:   `["Seed","Series A"]`,
		TicketMin:    1_000_000,
		TicketMax:    5_000_000,
		IndustryTags: `["fintech","payments"]`,
		IndustryList: []string{"fintech", "payments"},
		Thesis:       "We back payment infrastructure.",
		ContactEmail: "deals@nile.vc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.EmbeddingText() != "We back payment infrastructure. fintech payments" {
		t.Errorf("unexpected embedding text: %q", r.EmbeddingText())
	}

	md := r.Metadata()
	if len(md) != len(MetadataFields) {
		t.Fatalf("expected %d metadata keys, got %d", len(MetadataFields), len(md))
	}
	if md[FieldTicketMin] != "1000000" || md[FieldTicketMax] != "5000000" {
		t.Errorf("unexpected tickets: %q %q", md[FieldTicketMin], md[FieldTicketMax])
	}
	if md[FieldStageFocus] != `["Seed","Series A"]` {
		t.Errorf("unexpected stage focus: %q", md[FieldStageFocus])
	}
}

func TestNew_EmptyID(t *testing.T) {
	_, err := New(Fields{ID: "  "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNew_InvertedTickets(t *testing.T) {
	_, err := New(Fields{ID: "inv-1", TicketMin: 10, TicketMax: 5})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEmbeddingText(t *testing.T) {
	tests := []struct {
		thesis string
		tags   []string
		want   string
	}{
		{"thesis", []string{"a", "b"}, "thesis a b"},
		{"thesis", nil, "thesis"},
		{"", []string{"a"}, "a"},
		{"", nil, ""},
		{"  padded  ", nil, "padded"},
	}
	for _, tc := range tests {
		if got := EmbeddingText(tc.thesis, tc.tags); got != tc.want {
			t.Errorf("EmbeddingText(%q, %v) = %q, want %q", tc.thesis, tc.tags, got, tc.want)
		}
	}
}
