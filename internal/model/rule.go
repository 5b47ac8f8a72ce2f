package model

// Rule maps a keyword to a category. Keywords are lowercase and trimmed,
// categories are trimmed. Row is the 1-based row in the source table, or 0.
type Rule struct {
	Keyword  string
	Category string
	Row      int
}
