package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/investmatch/internal/domain/batch"
	"github.com/kailas-cloud/investmatch/internal/domain/recommendation"
	"github.com/kailas-cloud/investmatch/internal/domain/startup"
	healthuc "github.com/kailas-cloud/investmatch/internal/usecase/health"
)

// Recommender ranks investors for a startup.
type Recommender interface {
	Recommend(ctx context.Context, p startup.Profile) ([]recommendation.Result, error)
}

// Ingester stores investor batches.
type Ingester interface {
	Ingest(ctx context.Context, records []map[string]any) []dombatch.Result
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
