// Package registry implements title submission, revision, removal and the
// corpus maintenance that keeps every cached similarity score current.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pressregistry/titledex/internal/db"
	"github.com/pressregistry/titledex/internal/domain"
	"github.com/pressregistry/titledex/internal/domain/policy"
	domtitle "github.com/pressregistry/titledex/internal/domain/title"
	"github.com/pressregistry/titledex/internal/metrics"
)

const (
	// DefaultThreshold is the pairwise score above which a submission is
	// rejected. Strictly-greater comparison: a score exactly at the
	// threshold passes the rejection check but leaves the title unverified.
	DefaultThreshold = 0.5

	defaultLockKey = "titledex:corpus:lock"
	defaultLockTTL = 30 * time.Second
	lockRetryEvery = 50 * time.Millisecond
)

// ListRequest describes an owner-scoped paged listing.
type ListRequest struct {
	Page      int
	PageSize  int
	SortBy    string // created_at (default), updated_at, title_name, similarity, verification_probability
	SortOrder string // desc (default), asc
	Verified  *bool
	State     string
}

// Page is one page of an owner's titles plus the total match count.
type Page struct {
	Items    []domtitle.Title
	Total    int
	Page     int
	PageSize int
}

// Service handles title mutations and corpus score maintenance. Every
// mutation runs its read-scan-write sequence under the corpus lock.
type Service struct {
	repo       Repository
	locker     CorpusLocker
	filter     *policy.Filter
	maintainer Maintainer
	logger     *zap.Logger

	threshold       float64
	lockKey         string
	lockTTL         time.Duration
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// New creates a registry service with the default threshold and lock settings.
func New(repo Repository, locker CorpusLocker, filter *policy.Filter, maintainer Maintainer, logger *zap.Logger) *Service {
	return &Service{
		repo:            repo,
		locker:          locker,
		filter:          filter,
		maintainer:      maintainer,
		logger:          logger,
		threshold:       DefaultThreshold,
		lockKey:         defaultLockKey,
		lockTTL:         defaultLockTTL,
		defaultPageSize: 10,
		maxPageSize:     100,
		now:             time.Now,
	}
}

// WithThreshold overrides the rejection threshold.
func (s *Service) WithThreshold(t float64) *Service {
	if t > 0 && t <= 1 {
		s.threshold = t
	}
	return s
}

// WithLock overrides the corpus lock key and lease TTL.
func (s *Service) WithLock(key string, ttl time.Duration) *Service {
	if key != "" {
		s.lockKey = key
	}
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// WithPagination sets listing page size limits.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Submit registers a new title: policy filter, fail-fast similarity scan
// against the whole corpus, persist, then maintenance. The scan is global —
// conflicts are detected across all owners.
func (s *Service) Submit(ctx context.Context, ownerID string, attrs domtitle.Attributes) (domtitle.Title, error) {
	t, err := domtitle.New(ownerID, attrs, s.now().UnixMilli())
	if err != nil {
		metrics.RejectionsTotal.WithLabelValues("validation").Inc()
		return domtitle.Title{}, fmt.Errorf("validate title: %w: %w", domain.ErrValidation, err)
	}
	if err := s.filter.Check(attrs.Name); err != nil {
		metrics.RejectionsTotal.WithLabelValues("policy").Inc()
		return domtitle.Title{}, fmt.Errorf("check policy: %w", err)
	}

	token, err := s.lockCorpus(ctx)
	if err != nil {
		return domtitle.Title{}, err
	}
	defer s.unlockCorpus(ctx, token)

	corpus, err := s.repo.List(ctx)
	if err != nil {
		return domtitle.Title{}, fmt.Errorf("list corpus: %w", err)
	}

	maxSim, err := s.scan(t.Normalized(), corpus, "")
	if err != nil {
		return domtitle.Title{}, err
	}

	t = t.WithScore(domtitle.Percent(maxSim)).WithVerified(maxSim < s.threshold)
	if err := s.repo.Save(ctx, t); err != nil {
		return domtitle.Title{}, fmt.Errorf("save title: %w", err)
	}

	if err := s.maintain(ctx, append(corpus, t)); err != nil {
		return domtitle.Title{}, err
	}
	s.logger.Info("title submitted",
		zap.String("id", t.ID()),
		zap.String("owner", ownerID),
		zap.Int("similarity", t.Similarity()),
		zap.Bool("verified", t.Verified()),
	)
	return t, nil
}

// Revise updates an owned title: ownership check, policy filter, similarity
// scan excluding the title itself, persist, then maintenance.
func (s *Service) Revise(ctx context.Context, ownerID, id string, attrs domtitle.Attributes) (domtitle.Title, error) {
	existing, err := s.ownedTitle(ctx, ownerID, id)
	if err != nil {
		return domtitle.Title{}, err
	}

	revised, err := existing.Revise(attrs, s.now().UnixMilli())
	if err != nil {
		metrics.RejectionsTotal.WithLabelValues("validation").Inc()
		return domtitle.Title{}, fmt.Errorf("validate title: %w: %w", domain.ErrValidation, err)
	}
	if err := s.filter.Check(attrs.Name); err != nil {
		metrics.RejectionsTotal.WithLabelValues("policy").Inc()
		return domtitle.Title{}, fmt.Errorf("check policy: %w", err)
	}

	token, err := s.lockCorpus(ctx)
	if err != nil {
		return domtitle.Title{}, err
	}
	defer s.unlockCorpus(ctx, token)

	corpus, err := s.repo.List(ctx)
	if err != nil {
		return domtitle.Title{}, fmt.Errorf("list corpus: %w", err)
	}

	maxSim, err := s.scan(revised.Normalized(), corpus, id)
	if err != nil {
		return domtitle.Title{}, err
	}

	revised = revised.WithScore(domtitle.Percent(maxSim)).WithVerified(maxSim < s.threshold)
	if err := s.repo.Save(ctx, revised); err != nil {
		return domtitle.Title{}, fmt.Errorf("save title: %w", err)
	}

	for i := range corpus {
		if corpus[i].ID() == id {
			corpus[i] = revised
		}
	}
	if err := s.maintain(ctx, corpus); err != nil {
		return domtitle.Title{}, err
	}
	s.logger.Info("title revised",
		zap.String("id", id),
		zap.String("owner", ownerID),
		zap.Int("similarity", revised.Similarity()),
	)
	return revised, nil
}

// Remove deletes an owned title and rescores the remaining corpus.
func (s *Service) Remove(ctx context.Context, ownerID, id string) error {
	if _, err := s.ownedTitle(ctx, ownerID, id); err != nil {
		return err
	}

	token, err := s.lockCorpus(ctx)
	if err != nil {
		return err
	}
	defer s.unlockCorpus(ctx, token)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	s.logger.Info("title removed", zap.String("id", id), zap.String("owner", ownerID))

	corpus, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list corpus: %w", err)
	}
	if len(corpus) == 0 {
		metrics.CorpusSize.Set(0)
		return nil
	}
	return s.maintain(ctx, corpus)
}

// Get returns an owned title by id.
func (s *Service) Get(ctx context.Context, ownerID, id string) (domtitle.Title, error) {
	return s.ownedTitle(ctx, ownerID, id)
}

// List returns one page of the owner's titles with filters and sorting
// applied, plus the total match count.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) (Page, error) {
	corpus, err := s.repo.List(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list corpus: %w", err)
	}

	matched := make([]domtitle.Title, 0, len(corpus))
	for _, t := range corpus {
		if t.CreatedBy() != ownerID {
			continue
		}
		if req.Verified != nil && t.Verified() != *req.Verified {
			continue
		}
		if req.State != "" && !containsFold(t.Attrs().State, req.State) {
			continue
		}
		matched = append(matched, t)
	}

	sortTitles(matched, req.SortBy, req.SortOrder)

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size < 1 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return Page{Items: matched[start:end], Total: len(matched), Page: page, PageSize: size}, nil
}

// scan computes the candidate's maximum similarity against the corpus,
// excluding excludeID. Fail-fast: the first score above the threshold aborts
// the scan with a conflict naming that title — intentionally the first in
// iteration order, not necessarily the global maximum.
func (s *Service) scan(normalized string, corpus []domtitle.Title, excludeID string) (float64, error) {
	maxSim := 0.0
	for i := range corpus {
		if corpus[i].ID() == excludeID {
			continue
		}
		sim := domtitle.Score(normalized, corpus[i].Normalized())
		metrics.ScanPairsTotal.Inc()
		if sim > maxSim {
			maxSim = sim
		}
		if sim > s.threshold {
			metrics.RejectionsTotal.WithLabelValues("similarity").Inc()
			return 0, fmt.Errorf("scan corpus: %w",
				domain.NewSimilarityConflict(corpus[i].Name(), domtitle.Percent(sim)))
		}
	}
	return maxSim, nil
}

// maintain rescores the corpus and persists only the entries whose cached
// scores changed. Each entry's similarity and verification probability are
// written together in one hash write, so a partial sweep failure never leaves
// a single title with mismatched derived fields.
func (s *Service) maintain(ctx context.Context, corpus []domtitle.Title) error {
	start := s.now()
	changed := s.maintainer.Rescore(corpus)
	if err := s.repo.SaveAll(ctx, changed); err != nil {
		return fmt.Errorf("save rescored titles: %w", err)
	}
	metrics.MaintenanceDuration.WithLabelValues(s.maintainer.Strategy()).Observe(time.Since(start).Seconds())
	metrics.CorpusSize.Set(float64(len(corpus)))
	return nil
}

func (s *Service) ownedTitle(ctx context.Context, ownerID, id string) (domtitle.Title, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return domtitle.Title{}, fmt.Errorf("get title: %w", err)
	}
	if t.CreatedBy() != ownerID {
		return domtitle.Title{}, fmt.Errorf("get title %s: %w", id, domain.ErrForbidden)
	}
	return t, nil
}

// lockCorpus acquires the corpus lease, retrying while another mutation holds
// it, until the context expires.
func (s *Service) lockCorpus(ctx context.Context) (string, error) {
	for {
		token, err := s.locker.AcquireLock(ctx, s.lockKey, s.lockTTL)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, db.ErrLockHeld) {
			return "", fmt.Errorf("acquire corpus lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("acquire corpus lock: %w", ctx.Err())
		case <-time.After(lockRetryEvery):
		}
	}
}

func (s *Service) unlockCorpus(ctx context.Context, token string) {
	if err := s.locker.ReleaseLock(ctx, s.lockKey, token); err != nil {
		s.logger.Warn("release corpus lock", zap.Error(err))
	}
}

func sortTitles(titles []domtitle.Title, sortBy, sortOrder string) {
	less := func(a, b *domtitle.Title) bool { return a.CreatedAt() < b.CreatedAt() }
	switch sortBy {
	case "updated_at":
		less = func(a, b *domtitle.Title) bool { return a.UpdatedAt() < b.UpdatedAt() }
	case "title_name":
		less = func(a, b *domtitle.Title) bool {
			return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
		}
	case "similarity":
		less = func(a, b *domtitle.Title) bool { return a.Similarity() < b.Similarity() }
	case "verification_probability":
		less = func(a, b *domtitle.Title) bool {
			return a.VerificationProbability() < b.VerificationProbability()
		}
	}

	asc := sortOrder == "asc"
	sort.SliceStable(titles, func(i, j int) bool {
		if asc {
			return less(&titles[i], &titles[j])
		}
		return less(&titles[j], &titles[i])
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
