package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
	RawScores    bool // return __vector_score as reported by the backend
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search.
// Score is backend-specific: a distance for raw FT scores, a similarity otherwise.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
