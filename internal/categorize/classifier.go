package categorize

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/Veraticus/budget-flow/internal/fuzzy"
	"github.com/Veraticus/budget-flow/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultThreshold is the minimum partial-ratio score accepted by the fuzzy phase.
	DefaultThreshold = 75.0
	// UncategorizedCategory is assigned when no rule matches.
	UncategorizedCategory = "Uncategorized"
	// NoDescriptionPlaceholder stands in for absent or blank descriptions.
	NoDescriptionPlaceholder = "no description"
)

// Normalize prepares a description for matching. Absent or blank descriptions
// become NoDescriptionPlaceholder; everything else is trimmed and lowercased.
func Normalize(description *string) string {
	if description == nil {
		return NoDescriptionPlaceholder
	}
	text := strings.TrimSpace(*description)
	if text == "" {
		return NoDescriptionPlaceholder
	}
	return strings.ToLower(text)
}

// Classify maps a description to a category.
//
// Rules are scanned in order and the first keyword contained in the normalized
// description wins, regardless of keyword length. When nothing is contained, the
// keyword with the highest partial-ratio score is accepted if it reaches
// threshold (inclusive); equal scores resolve to the earlier rule. Otherwise the
// result is UncategorizedCategory with no keyword.
func Classify(description *string, rules *RuleSet, threshold float64) model.ClassificationResult {
	text := Normalize(description)

	if rules.Len() == 0 {
		return uncategorized(0)
	}

	for _, rule := range rules.rules {
		if rule.Keyword != "" && strings.Contains(text, rule.Keyword) {
			return model.ClassificationResult{
				Category:       rule.Category,
				MatchedKeyword: rule.Keyword,
				Method:         model.MatchExact,
				Score:          100,
			}
		}
	}

	best, ok := fuzzy.ExtractOne(text, rules.keywords, fuzzy.PartialRatio)
	if !ok {
		return uncategorized(0)
	}
	if best.Score >= threshold {
		rule := rules.rules[best.Index]
		return model.ClassificationResult{
			Category:       rule.Category,
			MatchedKeyword: rule.Keyword,
			Method:         model.MatchFuzzy,
			Score:          best.Score,
		}
	}

	return uncategorized(best.Score)
}

func uncategorized(score float64) model.ClassificationResult {
	return model.ClassificationResult{
		Category: UncategorizedCategory,
		Method:   model.MatchNone,
		Score:    score,
	}
}

// Classifier binds a rule set and threshold for repeated and batch use.
type Classifier struct {
	rules     *RuleSet
	threshold float64
	workers   int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold sets the fuzzy acceptance threshold.
func WithThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// WithWorkers bounds how many goroutines a batch may use. Values below 1 mean 1.
func WithWorkers(workers int) Option {
	return func(c *Classifier) {
		c.workers = workers
	}
}

// NewClassifier creates a classifier. A nil rule set behaves like an empty one.
func NewClassifier(rules *RuleSet, opts ...Option) (*Classifier, error) {
	if rules == nil {
		rules = EmptyRuleSet()
	}

	c := &Classifier{
		rules:     rules,
		threshold: DefaultThreshold,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.threshold < 0 || c.threshold > 100 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, c.threshold)
	}
	if c.workers < 1 {
		c.workers = 1
	}

	return c, nil
}

// Rules returns the classifier's rule set.
func (c *Classifier) Rules() *RuleSet {
	return c.rules
}

// Threshold returns the fuzzy acceptance threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify classifies a single description.
func (c *Classifier) Classify(description *string) model.ClassificationResult {
	return Classify(description, c.rules, c.threshold)
}

// ClassifyAll classifies descriptions and returns results in input order.
// Work is split into contiguous chunks; the context only cancels the batch.
func (c *Classifier) ClassifyAll(ctx context.Context, descriptions []*string) ([]model.ClassificationResult, error) {
	results := make([]model.ClassificationResult, len(descriptions))
	if len(descriptions) == 0 {
		return results, nil
	}

	workers := min(c.workers, len(descriptions))
	chunk := (len(descriptions) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(descriptions); start += chunk {
		end := min(start+chunk, len(descriptions))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = c.Classify(descriptions[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	return results, nil
}

// ClassifyTransactions classifies each transaction's description, preserving order.
func (c *Classifier) ClassifyTransactions(ctx context.Context, txns []model.Transaction) ([]model.CategorizedTransaction, error) {
	descriptions := make([]*string, len(txns))
	for i := range txns {
		descriptions[i] = txns[i].Description
	}

	results, err := c.ClassifyAll(ctx, descriptions)
	if err != nil {
		return nil, err
	}

	out := make([]model.CategorizedTransaction, len(txns))
	for i, txn := range txns {
		out[i] = model.CategorizedTransaction{
			Transaction: txn,
			Result:      results[i],
		}
	}

	return out, nil
}
