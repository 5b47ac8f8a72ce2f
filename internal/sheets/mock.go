package sheets

import (
	"context"
	"strings"
	"sync"
)

// FakeValues is an in-memory ValuesAPI for tests. Ranges are resolved by tab
// name only; Update writes starting at the row in its A1 reference.
type FakeValues struct {
	Tabs     map[string][][]any
	Errors   map[string]error // keyed by tab name, returned from Get
	GetCalls []string
	Updates  int
	mu       sync.Mutex
}

// NewFakeValues creates a fake with the given tab contents.
func NewFakeValues(tabs map[string][][]any) *FakeValues {
	if tabs == nil {
		tabs = make(map[string][][]any)
	}
	return &FakeValues{Tabs: tabs, Errors: make(map[string]error)}
}

// Get implements ValuesAPI.
func (f *FakeValues) Get(_ context.Context, _, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, _ := splitRange(rng)
	f.GetCalls = append(f.GetCalls, tab)
	if err := f.Errors[tab]; err != nil {
		return nil, err
	}
	return f.Tabs[tab], nil
}

// Clear implements ValuesAPI.
func (f *FakeValues) Clear(_ context.Context, _, rng string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, _ := splitRange(rng)
	f.Tabs[tab] = nil
	return nil
}

// Update implements ValuesAPI.
func (f *FakeValues) Update(_ context.Context, _, rng string, values [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, startRow := splitRange(rng)
	rows := f.Tabs[tab]
	for len(rows) < startRow-1+len(values) {
		rows = append(rows, nil)
	}
	copy(rows[startRow-1:], values)
	f.Tabs[tab] = rows
	f.Updates++
	return nil
}

// EnsureTab implements ValuesAPI.
func (f *FakeValues) EnsureTab(_ context.Context, _, tab string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.Tabs[tab]; !ok {
		f.Tabs[tab] = nil
	}
	return nil
}

// splitRange parses "'Tab'!A12" into ("Tab", 12). Missing rows default to 1.
func splitRange(rng string) (string, int) {
	tab, cells, _ := strings.Cut(rng, "!")
	tab = strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(tab, "'"), "'"), "''", "'")

	row := 0
	for _, r := range cells {
		if r >= '0' && r <= '9' {
			row = row*10 + int(r-'0')
		}
	}
	if row == 0 {
		row = 1
	}
	return tab, row
}
