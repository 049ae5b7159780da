package startup

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultK is the number of recommendations used when k is missing or invalid.
const DefaultK = 3

// Profile is the query-time description of a startup. Never persisted.
type Profile struct {
	problem      string
	solution     string
	industryTags []string
	stage        *string
	fundingAsk   *int64
	k            int
}

// New creates a Profile. stage and fundingAsk are nil when absent.
// k <= 0 falls back to DefaultK.
func New(
	problem, solution string, industryTags []string,
	stage *string, fundingAsk *int64, k int,
) Profile {
	if k <= 0 {
		k = DefaultK
	}
	return Profile{
		problem:      problem,
		solution:     solution,
		industryTags: industryTags,
		stage:        stage,
		fundingAsk:   fundingAsk,
		k:            k,
	}
}

// Problem returns the problem statement.
func (p *Profile) Problem() string { return p.problem }

// Solution returns the solution description.
func (p *Profile) Solution() string { return p.solution }

// IndustryTags returns the startup's industry tags.
func (p *Profile) IndustryTags() []string { return p.industryTags }

// Stage returns the funding stage and whether it was supplied.
func (p *Profile) Stage() (string, bool) {
	if p.stage == nil {
		return "", false
	}
	return *p.stage, true
}

// FundingAsk returns the funding ask and whether it was supplied.
func (p *Profile) FundingAsk() (int64, bool) {
	if p.fundingAsk == nil {
		return 0, false
	}
	return *p.fundingAsk, true
}

// K returns the effective number of recommendations.
func (p *Profile) K() int { return p.k }

// QueryText builds the text embedded for retrieval.
// Part order is fixed: problem, solution, tags, stage, funding ask.
func (p *Profile) QueryText() string {
	stage, _ := p.Stage()
	funding := ""
	if ask, ok := p.FundingAsk(); ok {
		funding = strconv.FormatInt(ask, 10)
	}

	parts := []string{
		p.problem,
		p.solution,
		strings.Join(p.industryTags, " "),
		"Stage: " + stage,
		"Funding ask: " + funding,
	}

	nonEmpty := parts[:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// NormalizeK converts a raw decoded k into an effective count.
// Only positive integers are kept; anything else yields DefaultK.
func NormalizeK(raw any) int {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil || n <= 0 || n > math.MaxInt32 {
			return DefaultK
		}
		return int(n)
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return DefaultK
		}
		return int(v)
	case int:
		if v <= 0 {
			return DefaultK
		}
		return v
	default:
		return DefaultK
	}
}
