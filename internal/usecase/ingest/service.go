// Package ingest validates, embeds and stores investor records.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/domain"
	dombatch "github.com/kailas-cloud/investmatch/internal/domain/batch"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
	"github.com/kailas-cloud/investmatch/internal/domain/investor"
	"github.com/kailas-cloud/investmatch/internal/logger"
	"github.com/kailas-cloud/investmatch/internal/metrics"
	"github.com/kailas-cloud/investmatch/internal/observability"
)

// MaxBatchSize is the default maximum number of records per call.
const MaxBatchSize = 100

// DefaultRequiredFields must be present and non-null on every record.
var DefaultRequiredFields = []string{
	investor.FieldInvestorID,
	investor.FieldStageFocus,
	investor.FieldTicketMin,
	investor.FieldTicketMax,
	inputEmail,
	investor.FieldThesis,
}

// Service ingests investor batches with per-record error reporting.
type Service struct {
	embed          Embedder
	index          IndexWriter
	maxBatchSize   int
	requiredFields []string
	indexTimeout   time.Duration
}

// New creates an ingestion service.
func New(embed Embedder, idx IndexWriter) *Service {
	return &Service{
		embed:          embed,
		index:          idx,
		maxBatchSize:   MaxBatchSize,
		requiredFields: DefaultRequiredFields,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithIndexTimeout bounds each index write. Zero disables the bound.
func (s *Service) WithIndexTimeout(d time.Duration) *Service {
	s.indexTimeout = d
	return s
}

// WithRequiredFields replaces the required field list. An empty list keeps the default.
func (s *Service) WithRequiredFields(fields []string) *Service {
	if len(fields) > 0 {
		s.requiredFields = fields
	}
	return s
}

// Ingest processes every record independently; one failure never aborts the others.
// Results are in input order.
func (s *Service) Ingest(ctx context.Context, records []map[string]any) []dombatch.Result {
	ctx, span := observability.StartIngestSpan(ctx, len(records))
	defer span.End()

	results := make([]dombatch.Result, len(records))

	if len(records) > s.maxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d: %w", len(records), s.maxBatchSize, domain.ErrInvalidInput)
		for i, rec := range records {
			results[i] = dombatch.NewError(rawID(rec), err)
		}
		metrics.IngestRecordsTotal.WithLabelValues(string(dombatch.StatusError)).Add(float64(len(records)))
		observability.RecordError(span, err)
		return results
	}

	log := logger.FromContext(ctx)
	for i, rec := range records {
		if err := s.ingestOne(ctx, rec); err != nil {
			log.Warn("Investor record rejected", zap.String("investor_id", rawID(rec)), zap.Error(err))
			results[i] = dombatch.NewError(rawID(rec), err)
		} else {
			results[i] = dombatch.NewSuccess(rawID(rec))
		}
		metrics.IngestRecordsTotal.WithLabelValues(string(results[i].Status())).Inc()
	}

	ok, failed := dombatch.Summarize(results)
	span.SetAttributes(attribute.Int("ingest.ok", ok), attribute.Int("ingest.failed", failed))
	return results
}

func (s *Service) ingestOne(ctx context.Context, raw map[string]any) error {
	if err := s.validate(raw); err != nil {
		return err
	}

	rec, err := Normalize(raw)
	if err != nil {
		return err
	}

	emb, err := s.embed.Embed(ctx, rec.EmbeddingText())
	if err != nil {
		return fmt.Errorf("embed investor %s: %w", rec.ID(), err)
	}

	err = s.upsert(ctx, index.Entry{
		ID:       rec.ID(),
		Vector:   emb.Embedding,
		Metadata: rec.Metadata(),
		Document: rec.EmbeddingText(),
	})
	if err != nil {
		return fmt.Errorf("store investor %s: %w", rec.ID(), err)
	}
	return nil
}

func (s *Service) upsert(ctx context.Context, e index.Entry) error {
	if s.indexTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.indexTimeout)
		defer cancel()
	}
	return s.index.Upsert(ctx, e) //nolint:wrapcheck // wrapped by caller
}

func (s *Service) validate(raw map[string]any) error {
	if raw == nil {
		return fmt.Errorf("record must be an object: %w", domain.ErrInvalidInput)
	}
	for _, f := range s.requiredFields {
		if v, ok := raw[f]; !ok || v == nil {
			return fmt.Errorf("missing required field %s: %w", f, domain.ErrInvalidInput)
		}
	}
	return nil
}

// rawID is the best-effort id for reporting, before normalization.
func rawID(raw map[string]any) string {
	id, err := scalar(raw, investor.FieldInvestorID)
	if err != nil {
		return ""
	}
	return id
}
