// Package title persists the Title aggregate as Redis hashes.
package title

import (
	"context"
	"fmt"
	"sort"

	"github.com/pressregistry/titledex/internal/db"
	"github.com/pressregistry/titledex/internal/domain"
	domtitle "github.com/pressregistry/titledex/internal/domain/title"
)

// store is the consumer interface for title persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/registry.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a title repository. prefix namespaces every key
// (e.g. "titledex:").
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Save upserts a title by id.
func (r *Repo) Save(ctx context.Context, t domtitle.Title) error {
	if err := r.store.HSet(ctx, r.key(t.ID()), titleToHash(t)); err != nil {
		return fmt.Errorf("hset title %s: %w", t.ID(), err)
	}
	return nil
}

// SaveAll upserts multiple titles in one pipelined round-trip. Used by
// maintenance sweeps to persist rescored corpus entries.
func (r *Repo) SaveAll(ctx context.Context, titles []domtitle.Title) error {
	if len(titles) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(titles))
	for i, t := range titles {
		items[i] = db.HashSetItem{Key: r.key(t.ID()), Fields: titleToHash(t)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi titles: %w", err)
	}
	return nil
}

// Get retrieves a title by id. Returns domain.ErrNotFound when absent.
func (r *Repo) Get(ctx context.Context, id string) (domtitle.Title, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return domtitle.Title{}, fmt.Errorf("hgetall title %s: %w", id, err)
	}
	if len(m) == 0 {
		return domtitle.Title{}, domain.ErrNotFound
	}
	return titleFromHash(m)
}

// List returns the whole corpus in store order: createdAt ascending, id as
// tiebreaker. The order is stable so search results and fail-fast similarity
// scans are deterministic.
func (r *Repo) List(ctx context.Context) ([]domtitle.Title, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan titles: %w", err)
	}
	if len(keys) == 0 {
		return []domtitle.Title{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi titles: %w", err)
	}

	titles := make([]domtitle.Title, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		t, err := titleFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse title %s: %w", keys[i], err)
		}
		titles = append(titles, t)
	}

	sort.Slice(titles, func(i, j int) bool {
		if titles[i].CreatedAt() != titles[j].CreatedAt() {
			return titles[i].CreatedAt() < titles[j].CreatedAt()
		}
		return titles[i].ID() < titles[j].ID()
	})

	return titles, nil
}

// Delete removes a title by id. Returns domain.ErrNotFound when absent.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check title %s: %w", id, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del title %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%stitle:%s", r.prefix, id)
}
