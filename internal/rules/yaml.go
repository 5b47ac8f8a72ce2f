package rules

import (
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/budget-flow/internal/categorize"
	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk layout:
//
//	rules:
//	  - keyword: netflix
//	    category: Entertainment
type yamlFile struct {
	Rules []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	Keyword  yaml.Node `yaml:"keyword"`
	Category yaml.Node `yaml:"category"`
}

// LoadYAML reads rules from a YAML file.
func LoadYAML(path string) (*categorize.RuleSet, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("opening rule file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rs, err := ParseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseYAML reads YAML rules from r. Values keep their YAML types, so a
// category written as a number or a list is rejected.
func ParseYAML(r io.Reader) (*categorize.RuleSet, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return categorize.EmptyRuleSet(), nil
		}
		return nil, fmt.Errorf("parsing rule yaml: %w", err)
	}

	entries := make([]categorize.RuleEntry, 0, len(doc.Rules))
	for _, rule := range doc.Rules {
		keyword, err := nodeValue(rule.Keyword)
		if err != nil {
			return nil, err
		}
		category, err := nodeValue(rule.Category)
		if err != nil {
			return nil, err
		}
		entries = append(entries, categorize.RuleEntry{
			Keyword:  keyword,
			Category: category,
			Row:      rule.Keyword.Line,
		})
	}

	return categorize.NewRuleSet(entries)
}

// nodeValue decodes a node into its natural Go type; absent and null nodes are nil.
func nodeValue(node yaml.Node) (any, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null") {
		return nil, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return v, nil
}
