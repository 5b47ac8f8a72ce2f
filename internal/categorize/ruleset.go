// Package categorize assigns spending categories to transaction descriptions
// using an ordered keyword rule table.
package categorize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/budget-flow/internal/model"
)

// Validation errors.
var (
	ErrInvalidRule      = errors.New("invalid rule")
	ErrInvalidThreshold = errors.New("fuzzy threshold must be between 0 and 100")
)

// RuleEntry is an unvalidated rule as read from a source table. Cell values
// keep their source types so malformed entries can be rejected.
type RuleEntry struct {
	Keyword  any
	Category any
	Row      int
}

// RuleSet is an ordered, immutable list of rules. Order is significant: when
// several keywords match, the earliest rule wins.
type RuleSet struct {
	rules    []model.Rule
	keywords []string
}

// NewRule normalizes a keyword/category pair.
func NewRule(keyword, category string) (model.Rule, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	category = strings.TrimSpace(category)

	if keyword == "" {
		return model.Rule{}, fmt.Errorf("%w: empty keyword", ErrInvalidRule)
	}
	if category == "" {
		return model.Rule{}, fmt.Errorf("%w: empty category for keyword %q", ErrInvalidRule, keyword)
	}

	return model.Rule{Keyword: keyword, Category: category}, nil
}

// NewRuleSet validates entries and builds a rule set in the same order.
// Duplicate keywords are allowed. The first malformed entry aborts construction.
func NewRuleSet(entries []RuleEntry) (*RuleSet, error) {
	rs := &RuleSet{
		rules:    make([]model.Rule, 0, len(entries)),
		keywords: make([]string, 0, len(entries)),
	}

	for i, entry := range entries {
		rule, err := entryToRule(entry)
		if err != nil {
			return nil, fmt.Errorf("rule %d%s: %w", i+1, rowSuffix(entry.Row), err)
		}
		rule.Row = entry.Row
		rs.rules = append(rs.rules, rule)
		rs.keywords = append(rs.keywords, rule.Keyword)
	}

	return rs, nil
}

// NewRuleSetFromPairs builds a rule set from keyword/category string pairs.
func NewRuleSetFromPairs(pairs [][2]string) (*RuleSet, error) {
	entries := make([]RuleEntry, len(pairs))
	for i, p := range pairs {
		entries[i] = RuleEntry{Keyword: p[0], Category: p[1]}
	}
	return NewRuleSet(entries)
}

// EmptyRuleSet returns a rule set that classifies everything as uncategorized.
func EmptyRuleSet() *RuleSet {
	return &RuleSet{}
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Rules returns a copy of the rules in order.
func (rs *RuleSet) Rules() []model.Rule {
	if rs == nil {
		return nil
	}
	out := make([]model.Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Keywords returns a copy of the keywords in rule order.
func (rs *RuleSet) Keywords() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.keywords))
	copy(out, rs.keywords)
	return out
}

// Categories returns the distinct categories in first-seen order.
func (rs *RuleSet) Categories() []string {
	if rs == nil {
		return nil
	}
	seen := make(map[string]bool, len(rs.rules))
	var out []string
	for _, r := range rs.rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

func entryToRule(entry RuleEntry) (model.Rule, error) {
	keyword, err := keywordText(entry.Keyword)
	if err != nil {
		return model.Rule{}, err
	}

	category, ok := entry.Category.(string)
	if !ok {
		if entry.Category == nil {
			return model.Rule{}, fmt.Errorf("%w: missing category for keyword %q", ErrInvalidRule, keyword)
		}
		return model.Rule{}, fmt.Errorf("%w: category for keyword %q must be text, got %T", ErrInvalidRule, keyword, entry.Category)
	}

	return NewRule(keyword, category)
}

// keywordText accepts text and plain numbers (store numbers like "711" are
// legitimate keywords).
func keywordText(v any) (string, error) {
	switch k := v.(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("%w: missing keyword", ErrInvalidRule)
	default:
		return "", fmt.Errorf("%w: keyword must be text, got %T", ErrInvalidRule, v)
	}
}

func rowSuffix(row int) string {
	if row <= 0 {
		return ""
	}
	return fmt.Sprintf(" (row %d)", row)
}
