package categorize

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultTable []byte

// Rule maps a description keyword to a category.
type Rule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// Group is a named run of rules. Groups only organize the file; the
// flattened order is what the classifier sees.
type Group struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// Table is the on-disk keyword table.
type Table struct {
	Groups []Group `yaml:"groups"`
}

// DefaultTable returns the built-in keyword table as YAML.
func DefaultTable() []byte {
	out := make([]byte, len(defaultTable))
	copy(out, defaultTable)
	return out
}

// DefaultRules returns the built-in rules in table order.
func DefaultRules() []Rule {
	rules, err := ParseTable(defaultTable)
	if err != nil {
		panic("embedded categories.yaml: " + err.Error())
	}
	return rules
}

// ParseTable parses a YAML keyword table into rules in table order.
func ParseTable(data []byte) ([]Rule, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing keyword table: %w", err)
	}

	var rules []Rule
	for gi, g := range table.Groups {
		for ri, r := range g.Rules {
			if r.Keyword == "" {
				return nil, fmt.Errorf("group %d (%s) rule %d: empty keyword", gi+1, g.Name, ri+1)
			}
			if r.Category == "" {
				return nil, fmt.Errorf("group %d (%s) rule %d: keyword %q has no category", gi+1, g.Name, ri+1, r.Keyword)
			}
			rules = append(rules, r)
		}
	}
	if len(rules) == 0 {
		return nil, errors.New("keyword table has no rules")
	}
	return rules, nil
}

// LoadRules reads a keyword table file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyword table: %w", err)
	}
	rules, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
