package registry

import (
	"context"
	"time"

	domtitle "github.com/pressregistry/titledex/internal/domain/title"
)

// Repository defines the storage contract for titles.
type Repository interface {
	Save(ctx context.Context, t domtitle.Title) error
	SaveAll(ctx context.Context, titles []domtitle.Title) error
	Get(ctx context.Context, id string) (domtitle.Title, error)
	List(ctx context.Context) ([]domtitle.Title, error)
	Delete(ctx context.Context, id string) error
}

// CorpusLocker serializes corpus mutations across service instances, so two
// concurrent submissions cannot both scan before either writes.
type CorpusLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// Maintainer recomputes the cached similarity scores of a corpus after a
// mutation. Rescore returns only the entries whose cached scores changed, so
// an unchanged corpus costs no writes.
type Maintainer interface {
	Rescore(corpus []domtitle.Title) []domtitle.Title
	Strategy() string
}
