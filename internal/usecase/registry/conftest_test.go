package registry

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pressregistry/titledex/internal/db"
	"github.com/pressregistry/titledex/internal/domain"
	"github.com/pressregistry/titledex/internal/domain/policy"
	domtitle "github.com/pressregistry/titledex/internal/domain/title"
)

// mockRepo is an in-memory Repository. List returns store order
// (createdAt ascending, id as tiebreaker), matching the real repository.
type mockRepo struct {
	mu     sync.Mutex
	titles map[string]domtitle.Title

	saveErr   error
	listErr   error
	getErr    error
	deleteErr error

	saveAllCalls [][]domtitle.Title
}

func newMockRepo() *mockRepo {
	return &mockRepo{titles: make(map[string]domtitle.Title)}
}

func (m *mockRepo) Save(_ context.Context, t domtitle.Title) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles[t.ID()] = t
	return nil
}

func (m *mockRepo) SaveAll(_ context.Context, titles []domtitle.Title) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveAllCalls = append(m.saveAllCalls, titles)
	for _, t := range titles {
		m.titles[t.ID()] = t
	}
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domtitle.Title, error) {
	if m.getErr != nil {
		return domtitle.Title{}, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.titles[id]
	if !ok {
		return domtitle.Title{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockRepo) List(_ context.Context) ([]domtitle.Title, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domtitle.Title, 0, len(m.titles))
	for _, t := range m.titles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt() != out[j].CreatedAt() {
			return out[i].CreatedAt() < out[j].CreatedAt()
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.titles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.titles, id)
	return nil
}

// mockLocker hands out lease tokens, optionally reporting the lock as held
// for the first failAcquires attempts.
type mockLocker struct {
	mu           sync.Mutex
	acquires     int
	releases     int
	failAcquires int
	acquireErr   error
	lastToken    string
}

func (m *mockLocker) AcquireLock(_ context.Context, _ string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires++
	if m.acquireErr != nil {
		return "", m.acquireErr
	}
	if m.acquires <= m.failAcquires {
		return "", db.ErrLockHeld
	}
	m.lastToken = "token"
	return m.lastToken, nil
}

func (m *mockLocker) ReleaseLock(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	return nil
}

// newTestService builds a service with a pass-all policy filter so similarity
// behavior can be tested with natural names; policy rejection has its own
// tests with the default rules.
func newTestService(t *testing.T) (*Service, *mockRepo, *mockLocker) {
	t.Helper()
	repo := newMockRepo()
	locker := &mockLocker{}
	svc := New(repo, locker, policy.New(policy.Rules{}), FullMaintainer{}, zap.NewNop()).
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) })
	return svc, repo, locker
}

func seedTitle(t *testing.T, repo *mockRepo, id, owner, name string, createdAt int64) domtitle.Title {
	t.Helper()
	codes := domtitle.Phonetics(name)
	seeded := domtitle.Reconstruct(
		id, domtitle.Attributes{Name: name, State: "Delhi"},
		domtitle.Normalize(name), codes.Soundex, codes.Metaphone,
		0, 100, true, owner, createdAt, createdAt,
	)
	repo.titles[id] = seeded
	return seeded
}
