// internal/engine/insight/generator.go
package insight

import (
	"strings"

	"nomad-workers/internal/engine/profile"
)

// Generator derives tags and insights from normalized profiles by
// walking the declarative rule tables. Rules never fail: an attribute
// the profile does not carry simply produces no output.
type Generator struct {
	rules map[profile.Kind]RuleSet
}

// NewGenerator returns a generator backed by the built-in rule tables.
func NewGenerator() *Generator {
	return &Generator{rules: rulesByKind}
}

// Generate evaluates every rule for the profile's kind. Tags come out
// in rule-table order with folded values and list entries appended
// afterwards, so identical profiles always produce identical output.
// The tag set is deduplicated case-insensitively, first casing wins.
// Profiles of an unknown kind yield empty results.
func (g *Generator) Generate(p *profile.Profile) ([]string, map[string]string) {
	rs, ok := g.rules[p.Kind()]
	if !ok {
		return []string{}, map[string]string{}
	}

	tags := make([]string, 0, len(rs.Tags))
	seen := make(map[string]struct{}, len(rs.Tags))
	add := func(tag string) bool {
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
		return true
	}

	for _, rule := range rs.Tags {
		if rule.When(p) {
			add(rule.Tag)
		}
	}
	for _, rule := range rs.Values {
		if v, ok := p.Str(rule.Attr); ok {
			add(v)
		}
	}
	for _, fold := range rs.Folds {
		added := 0
		for _, entry := range p.RawList(fold.Attr) {
			if added == fold.Limit {
				break
			}
			if add(entry) {
				added++
			}
		}
	}

	insights := make(map[string]string, len(rs.Insights))
	for _, rule := range rs.Insights {
		if label, ok := rule.Classify(p); ok {
			insights[rule.Key] = label
		}
	}

	return tags, insights
}
