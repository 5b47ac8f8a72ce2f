package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/budget-flow/internal/categorize"
)

// LoadCSV reads rules from a two-column CSV file without a header row.
func LoadCSV(path string) (*categorize.RuleSet, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("opening rule file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rs, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseCSV reads two-column CSV rules from r.
func ParseCSV(r io.Reader) (*categorize.RuleSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing rule csv: %w", err)
	}
	return fromStringRows(rows)
}
