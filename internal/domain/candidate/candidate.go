// Package candidate holds nearest-neighbor hits before business rules apply.
package candidate

// Candidate is one similarity-index hit with its stored metadata.
// Distance is normalized to [0, 1], nearest first.
type Candidate struct {
	ID       string
	Metadata map[string]string
	Document string
	Distance float64
}
