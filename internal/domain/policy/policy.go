// Package policy rejects titles that violate static naming rules,
// independently of any other title in the corpus.
package policy

import (
	"strings"

	"github.com/pressregistry/titledex/internal/domain"
)

// Rule names reported in PolicyViolationError.
const (
	RuleDisallowedPrefix = "disallowed_prefix"
	RuleDisallowedSuffix = "disallowed_suffix"
	RuleDisallowedWord   = "disallowed_word"
	RulePeriodicity      = "periodicity_term"
)

// Rules is the explicit rule configuration for a Filter. All matching is
// case-insensitive over the raw (not normalized) title.
type Rules struct {
	Prefixes      []string
	Suffixes      []string
	Words         []string
	Periodicities []string
}

// DefaultRules returns the standard registration rule lists.
func DefaultRules() Rules {
	return Rules{
		Prefixes:      []string{"The", "India", "Samachar", "News"},
		Suffixes:      []string{"News", "Samachar", "Express"},
		Words:         []string{"Police", "Crime", "Corruption", "CBI", "CID", "Army"},
		Periodicities: []string{"daily", "weekly", "monthly", "fortnightly", "evening", "morning"},
	}
}

// Filter evaluates the naming rules. Read-only after construction, safe for
// concurrent use.
type Filter struct {
	prefixes      []string
	suffixes      []string
	words         []string
	periodicities []string
}

// New creates a Filter from the given rules. Empty rule entries are dropped.
func New(rules Rules) *Filter {
	return &Filter{
		prefixes:      lowerAll(rules.Prefixes),
		suffixes:      lowerAll(rules.Suffixes),
		words:         lowerAll(rules.Words),
		periodicities: lowerAll(rules.Periodicities),
	}
}

// Check evaluates the four predicates in their fixed order — prefix, suffix,
// word, periodicity — and short-circuits on the first violation, returning a
// PolicyViolationError naming the rule and the matching term. A nil return
// means the raw title passes every rule.
func (f *Filter) Check(raw string) error {
	lowered := strings.ToLower(raw)

	for _, p := range f.prefixes {
		if strings.HasPrefix(lowered, p+" ") {
			return &domain.PolicyViolationError{Rule: RuleDisallowedPrefix, Term: p}
		}
	}
	for _, s := range f.suffixes {
		if strings.HasSuffix(lowered, " "+s) {
			return &domain.PolicyViolationError{Rule: RuleDisallowedSuffix, Term: s}
		}
	}
	for _, w := range f.words {
		if strings.Contains(lowered, w) {
			return &domain.PolicyViolationError{Rule: RuleDisallowedWord, Term: w}
		}
	}
	for _, p := range f.periodicities {
		if strings.Contains(lowered, p) {
			return &domain.PolicyViolationError{Rule: RulePeriodicity, Term: p}
		}
	}
	return nil
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
