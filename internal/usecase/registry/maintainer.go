package registry

import (
	domtitle "github.com/pressregistry/titledex/internal/domain/title"
	"github.com/pressregistry/titledex/internal/metrics"
)

// FullMaintainer recomputes every cached score by scanning all pairs.
// O(n²) per mutation, but after any mutation every title's similarity equals
// the true maximum against the rest of the corpus.
type FullMaintainer struct{}

// Strategy returns the strategy name.
func (FullMaintainer) Strategy() string { return "full" }

// Rescore scans all pairs and returns the entries whose cached scores changed.
func (FullMaintainer) Rescore(corpus []domtitle.Title) []domtitle.Title {
	var changed []domtitle.Title
	for i := range corpus {
		maxSim := 0.0
		for j := range corpus {
			if i == j {
				continue
			}
			s := domtitle.Score(corpus[i].Normalized(), corpus[j].Normalized())
			metrics.ScanPairsTotal.Inc()
			if s > maxSim {
				maxSim = s
			}
		}
		if rescored, ok := applyScore(corpus[i], maxSim); ok {
			changed = append(changed, rescored)
		}
	}
	return changed
}

// BucketMaintainer limits each title's rescan to phonetic candidates: titles
// sharing its soundex or metaphone code. O(n + sum of bucket sizes squared)
// per mutation. Titles whose closest match sounds nothing like them can carry
// a lower cached score than a full scan would produce; the candidate set is
// the sanctioned trade-off for corpora where O(n²) per write is prohibitive.
type BucketMaintainer struct{}

// Strategy returns the strategy name.
func (BucketMaintainer) Strategy() string { return "bucket" }

// Rescore scans each title against its phonetic candidates and returns the
// entries whose cached scores changed.
func (BucketMaintainer) Rescore(corpus []domtitle.Title) []domtitle.Title {
	bySoundex := make(map[string][]int, len(corpus))
	byMetaphone := make(map[string][]int, len(corpus))
	for i := range corpus {
		if c := corpus[i].Soundex(); c != "" {
			bySoundex[c] = append(bySoundex[c], i)
		}
		if c := corpus[i].Metaphone(); c != "" {
			byMetaphone[c] = append(byMetaphone[c], i)
		}
	}

	var changed []domtitle.Title
	seen := make(map[int]struct{}, 8)
	for i := range corpus {
		clear(seen)
		for _, j := range bySoundex[corpus[i].Soundex()] {
			seen[j] = struct{}{}
		}
		for _, j := range byMetaphone[corpus[i].Metaphone()] {
			seen[j] = struct{}{}
		}

		maxSim := 0.0
		for j := range seen {
			if i == j {
				continue
			}
			s := domtitle.Score(corpus[i].Normalized(), corpus[j].Normalized())
			metrics.ScanPairsTotal.Inc()
			if s > maxSim {
				maxSim = s
			}
		}
		if rescored, ok := applyScore(corpus[i], maxSim); ok {
			changed = append(changed, rescored)
		}
	}
	return changed
}

// applyScore returns the title with the new cached score and true when the
// score actually changed.
func applyScore(t domtitle.Title, score float64) (domtitle.Title, bool) {
	pct := domtitle.Percent(score)
	if pct == t.Similarity() && t.VerificationProbability() == 100-pct {
		return t, false
	}
	return t.WithScore(pct), true
}

// NewMaintainer returns the maintainer for the named strategy, defaulting to
// the full scan.
func NewMaintainer(strategy string) Maintainer {
	if strategy == "bucket" {
		return BucketMaintainer{}
	}
	return FullMaintainer{}
}
