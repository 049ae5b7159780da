// Package index defines what gets written to the similarity index.
package index

// Entry is one investor vector with its metadata and source document.
// Upserting an Entry replaces everything previously stored under ID.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
	Document string
}
