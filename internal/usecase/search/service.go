// Package search implements cross-owner title lookup by text, phonetics and
// registration filters.
package search

import (
	"context"
	"fmt"
	"strings"

	domtitle "github.com/pressregistry/titledex/internal/domain/title"
)

// Limit caps the number of search results.
const Limit = 20

// Criteria describes a search. Query matches with OR across text probes and
// phonetic code equality; State/Verified/OwnerName narrow with AND.
type Criteria struct {
	Query     string
	State     string
	Verified  *bool
	OwnerName string
}

// Service answers search queries by scanning the corpus. Results keep store
// order and are capped at Limit; no similarity ranking is applied.
type Service struct {
	repo Repository
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns corpus titles matching the criteria, at most Limit.
func (s *Service) Search(ctx context.Context, c Criteria) ([]domtitle.Title, error) {
	corpus, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	var probe queryProbe
	if c.Query != "" {
		probe = newQueryProbe(c.Query)
	}

	results := make([]domtitle.Title, 0, Limit)
	for _, t := range corpus {
		if c.Query != "" && !probe.matches(&t) {
			continue
		}
		if c.State != "" && !containsFold(t.Attrs().State, c.State) {
			continue
		}
		if c.Verified != nil && t.Verified() != *c.Verified {
			continue
		}
		if c.OwnerName != "" && !containsFold(t.Attrs().OwnerName, c.OwnerName) {
			continue
		}
		results = append(results, t)
		if len(results) == Limit {
			break
		}
	}
	return results, nil
}

// queryProbe precomputes the derived forms of a query once per search.
// The normalized probe runs against stored normalized text — the query is
// normalized the same way the corpus was.
type queryProbe struct {
	raw        string
	normalized string
	codes      domtitle.Codes
}

func newQueryProbe(query string) queryProbe {
	return queryProbe{
		raw:        query,
		normalized: domtitle.Normalize(query),
		codes:      domtitle.Phonetics(query),
	}
}

func (p *queryProbe) matches(t *domtitle.Title) bool {
	attrs := t.Attrs()
	if containsFold(attrs.Name, p.raw) ||
		containsFold(attrs.HindiTitle, p.raw) ||
		containsFold(attrs.OwnerName, p.raw) ||
		containsFold(attrs.RegnNo, p.raw) {
		return true
	}
	if p.normalized != "" && strings.Contains(t.Normalized(), p.normalized) {
		return true
	}
	return t.Soundex() == p.codes.Soundex || t.Metaphone() == p.codes.Metaphone
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
