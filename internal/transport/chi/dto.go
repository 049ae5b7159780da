package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/kailas-cloud/investmatch/internal/domain/metadata"
	"github.com/kailas-cloud/investmatch/internal/domain/startup"
)

type homeResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type recommendationItem struct {
	InvestorID string   `json:"investor_id"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
}

type recommendResponse struct {
	StartupID       any                  `json:"startup_id"`
	K               int                  `json:"k"`
	Recommendations []recommendationItem `json:"recommendations"`
}

type investorResultItem struct {
	InvestorID string `json:"investor_id"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

type addInvestorsResponse struct {
	Results []investorResultItem `json:"results"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// recommendRequest is the validated POST /recommend body.
type recommendRequest struct {
	StartupID    any
	Problem      string
	Solution     string
	IndustryTags []string
	Stage        *string
	FundingAsk   *int64
	K            int
}

func (r *recommendRequest) profile() startup.Profile {
	return startup.New(r.Problem, r.Solution, r.IndustryTags, r.Stage, r.FundingAsk, r.K)
}

// decodeObject reads a JSON object body, keeping numbers as json.Number.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body is required")
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return nil, errors.New("request body must hold a single JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("request body must be a JSON object")
	}
	return obj, nil
}

func recommendRequestFromBody(body map[string]any) (recommendRequest, error) {
	req := recommendRequest{StartupID: body["startup_id"], K: startup.NormalizeK(body["k"])}

	var err error
	if req.Problem, err = optionalString(body, "problem_statement"); err != nil {
		return recommendRequest{}, err
	}
	if req.Solution, err = optionalString(body, "solution_description"); err != nil {
		return recommendRequest{}, err
	}
	if req.IndustryTags, err = metadata.ListFromValue(body["industry_tags"]); err != nil {
		return recommendRequest{}, errors.New("industry_tags must be a string or a list of strings")
	}

	if v := body["stage"]; v != nil {
		s, ok := v.(string)
		if !ok {
			return recommendRequest{}, errors.New("stage must be a string")
		}
		req.Stage = &s
	}

	if v := body["funding_ask_egp"]; v != nil {
		n, err := integer(v)
		if err != nil {
			return recommendRequest{}, fmt.Errorf("funding_ask_egp %w", err)
		}
		req.FundingAsk = &n
	}

	return req, nil
}

func investorsFromBody(body map[string]any) ([]map[string]any, error) {
	raw, ok := body["investors"]
	if !ok || raw == nil {
		return nil, errors.New("investors is required")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.New("investors must be a list")
	}

	records := make([]map[string]any, len(list))
	for i, item := range list {
		// Non-object entries stay nil and fail validation individually.
		records[i], _ = item.(map[string]any)
	}
	return records, nil
}

func optionalString(body map[string]any, key string) (string, error) {
	switch v := body[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%s must be a string", key)
	}
}

// integer accepts JSON integers and integral floats such as 5e6.
func integer(v any) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, errors.New("must be an integer")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, errors.New("must be an integer")
	}
	return int64(f), nil
}
