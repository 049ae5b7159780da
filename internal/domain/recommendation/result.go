package recommendation

// Explanation strings attached to recommendations.
const (
	ReasonTagsPrefix     = "Industry tags match: "
	ReasonSimilarityOnly = "Stage or funding not provided, matched by similarity only."
	ReasonFundingMatch   = "Funding matches investor range."
	ReasonStageMatch     = "Stage matches investor focus."
)

// Result is one ranked, annotated investor recommendation.
type Result struct {
	investorID string
	score      float64
	reasons    []string
}

// New creates a Result. score is 1 - distance.
func New(investorID string, distance float64, reasons []string) Result {
	if reasons == nil {
		reasons = []string{}
	}
	return Result{investorID: investorID, score: 1 - distance, reasons: reasons}
}

// InvestorID returns the recommended investor.
func (r Result) InvestorID() string { return r.investorID }

// Score returns the similarity score in [0, 1].
func (r Result) Score() float64 { return r.score }

// Reasons returns the ordered explanation strings.
func (r Result) Reasons() []string { return r.reasons }
