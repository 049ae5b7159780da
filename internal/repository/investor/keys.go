package investor

import (
	"sort"

	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
)

const (
	fieldContent = "__content"
	fieldVector  = "__vector"
	fieldScore   = "__vector_score"
)

func keyPrefix() string {
	return domain.KeyPrefix + domain.InvestorCollection + ":"
}

func recordKey(id string) string {
	return keyPrefix() + id
}

func indexName() string {
	return domain.KeyPrefix + domain.InvestorCollection + ":idx"
}

func clampUnit(d float64) float64 {
	return min(1, max(0, d))
}

// sortByDistance orders nearest first; equal distances keep backend order.
func sortByDistance(cs []candidate.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Distance < cs[j].Distance })
}
