// Package categorize assigns a category to each transaction from an
// ordered keyword-rule table. Matching is a single Aho-Corasick pass
// over the description, then precedence picks the earliest-declared
// category among the hits, which keeps the output identical to walking
// the table rule by rule.
package categorize

import (
	"fmt"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"gopkg.in/yaml.v3"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/models"
)

// Mapper is a deterministic keyword classifier. Build once, use for
// any number of descriptions; it is read-only after construction.
type Mapper struct {
	rules       []Rule
	matcher     *ahocorasick.Matcher
	patternRank []int // pattern index -> rule order
}

// NewMapper builds the matcher from the given rule table; pass
// DefaultRules() for the built-in configuration.
func NewMapper(rules []Rule) *Mapper {
	m := &Mapper{rules: rules}

	var patterns [][]byte
	for rank, rule := range rules {
		for _, kw := range rule.Keywords {
			patterns = append(patterns, []byte(strings.ToLower(kw)))
			m.patternRank = append(m.patternRank, rank)
		}
	}
	if len(patterns) > 0 {
		m.matcher = ahocorasick.NewMatcher(patterns)
	}
	return m
}

// Categorize returns the category of the first rule (in declaration
// order) with a keyword occurring in the description, or Uncategorized.
func (m *Mapper) Categorize(description string) string {
	if description == "" || m.matcher == nil {
		return Uncategorized
	}

	hits := m.matcher.Match([]byte(strings.ToLower(description)))
	if len(hits) == 0 {
		return Uncategorized
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(m.patternRank) {
			continue
		}
		if rank := m.patternRank[idx]; best == -1 || rank < best {
			best = rank
		}
	}
	if best == -1 {
		return Uncategorized
	}
	return m.rules[best].Category
}

// Rules returns the active rule table for transparency/audit.
func (m *Mapper) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Stats returns the category distribution over the given transactions.
func (m *Mapper) Stats(transactions []*models.Transaction) map[string]int {
	stats := map[string]int{}
	for _, tx := range transactions {
		cat := tx.Category
		if cat == "" {
			cat = Uncategorized
		}
		stats[cat]++
	}
	return stats
}

// LoadRules parses a YAML rule table, allowing deployments to swap the
// built-in rules without recompiling. Order in the file is precedence.
func LoadRules(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing category rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("category rule file is empty")
	}
	return rules, nil
}
