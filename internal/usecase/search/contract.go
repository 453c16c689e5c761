package search

import (
	"context"

	domtitle "github.com/pressregistry/titledex/internal/domain/title"
)

// Repository supplies the corpus in store order.
type Repository interface {
	List(ctx context.Context) ([]domtitle.Title, error)
}
