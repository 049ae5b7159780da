// Package recommend ranks investors for a startup profile.
package recommend

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
	"github.com/kailas-cloud/investmatch/internal/domain/investor"
	"github.com/kailas-cloud/investmatch/internal/domain/metadata"
	"github.com/kailas-cloud/investmatch/internal/domain/recommendation"
	"github.com/kailas-cloud/investmatch/internal/domain/startup"
	"github.com/kailas-cloud/investmatch/internal/logger"
	"github.com/kailas-cloud/investmatch/internal/metrics"
	"github.com/kailas-cloud/investmatch/internal/observability"
)

// Engine embeds a startup profile, retrieves the nearest investors and
// applies the stage and ticket filter.
type Engine struct {
	embed        Embedder
	index        IndexReader
	queryTimeout time.Duration
}

// New creates a recommendation engine.
func New(embed Embedder, idx IndexReader) *Engine {
	return &Engine{embed: embed, index: idx}
}

// WithQueryTimeout bounds each index query. Zero disables the bound.
func (e *Engine) WithQueryTimeout(d time.Duration) *Engine {
	e.queryTimeout = d
	return e
}

// parsed is a candidate with its metadata decoded.
type parsed struct {
	stages    []string
	tags      []string
	ticketMin int64
	ticketMax int64
}

// Recommend returns at most p.K() results in index order.
// Candidates with unreadable stage or ticket metadata are skipped and logged.
func (e *Engine) Recommend(ctx context.Context, p startup.Profile) ([]recommendation.Result, error) {
	ctx, span := observability.StartRecommendSpan(ctx, p.K())
	defer span.End()

	emb, err := e.embed.Embed(ctx, p.QueryText())
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("embed startup profile: %w", err)
	}

	candidates, err := e.query(ctx, emb.Embedding, p.K())
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("query investors: %w", err)
	}

	log := logger.FromContext(ctx)
	stage, hasStage := p.Stage()
	ask, hasAsk := p.FundingAsk()
	filtering := hasStage && hasAsk

	results := make([]recommendation.Result, 0, len(candidates))
	malformed := 0
	for i := range candidates {
		c := &candidates[i]
		pc, err := parseCandidate(c)
		if err != nil {
			malformed++
			metrics.RecommendCandidatesTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
			log.Warn("Skipping malformed investor record", zap.String("investor_id", c.ID), zap.Error(err))
			continue
		}

		var reasons []string
		if matched := matchTags(p.IndustryTags(), pc.tags); len(matched) > 0 {
			reasons = append(reasons, recommendation.ReasonTagsPrefix+strings.Join(matched, ", "))
		}

		if !filtering {
			reasons = append(reasons, recommendation.ReasonSimilarityOnly)
		} else {
			if ask < pc.ticketMin || ask > pc.ticketMax || !slices.Contains(pc.stages, stage) {
				metrics.RecommendCandidatesTotal.WithLabelValues(metrics.OutcomeFiltered).Inc()
				continue
			}
			reasons = append(reasons, recommendation.ReasonFundingMatch, recommendation.ReasonStageMatch)
		}

		metrics.RecommendCandidatesTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
		results = append(results, recommendation.New(c.ID, c.Distance, reasons))
	}

	metrics.RecommendResults.Observe(float64(len(results)))
	observability.RecordRecommendResult(span, len(candidates), malformed, len(results))
	return results, nil
}

func (e *Engine) query(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error) {
	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}
	return e.index.Query(ctx, vector, k) //nolint:wrapcheck // wrapped by caller
}

func parseCandidate(c *candidate.Candidate) (parsed, error) {
	stages, err := metadata.DecodeList(c.Metadata[investor.FieldStageFocus])
	if err != nil {
		return parsed{}, fmt.Errorf("stage_focus: %w", err)
	}
	ticketMin, err := parseTicket(c.Metadata, investor.FieldTicketMin)
	if err != nil {
		return parsed{}, err
	}
	ticketMax, err := parseTicket(c.Metadata, investor.FieldTicketMax)
	if err != nil {
		return parsed{}, err
	}

	// Tags only explain a match, so unreadable tags count as none.
	tags, err := metadata.DecodeList(c.Metadata[investor.FieldIndustryTags])
	if err != nil {
		tags = nil
	}

	return parsed{stages: stages, tags: tags, ticketMin: ticketMin, ticketMax: ticketMax}, nil
}

// parseTicket reads a stored ticket bound. A missing bound is 0.
func parseTicket(md map[string]string, key string) (int64, error) {
	raw, ok := md[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w: %w", key, raw, domain.ErrMalformedRecord, err)
	}
	return n, nil
}

// matchTags returns the startup tags the investor shares, in startup order, without repeats.
func matchTags(startupTags, investorTags []string) []string {
	if len(startupTags) == 0 || len(investorTags) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(investorTags))
	for _, t := range investorTags {
		have[t] = struct{}{}
	}

	var out []string
	seen := make(map[string]struct{}, len(startupTags))
	for _, t := range startupTags {
		if _, ok := have[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
