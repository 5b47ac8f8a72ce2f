// Package model defines the core domain models used throughout the application.
package model

// MatchMethod records which phase of classification produced a result.
type MatchMethod string

// Match method constants.
const (
	MatchExact MatchMethod = "exact"
	MatchFuzzy MatchMethod = "fuzzy"
	MatchNone  MatchMethod = "none"
)

// ClassificationResult is the category assigned to a single description.
// MatchedKeyword is empty when the fallback category was used.
type ClassificationResult struct {
	Category       string
	MatchedKeyword string
	Method         MatchMethod
	// Score is 100 for exact matches and the best partial-ratio score otherwise,
	// including on fallback so near misses can be inspected.
	Score float64
}

// Matched reports whether a rule produced the result.
func (r ClassificationResult) Matched() bool {
	return r.Method == MatchExact || r.Method == MatchFuzzy
}

// CategorizedTransaction is a transaction together with its classification and
// the derived columns written to the consolidated export.
type CategorizedTransaction struct {
	Result      ClassificationResult
	CompanyName string
	Subcategory string
	Notes       string
	Transaction
}
