package ports

import (
	"context"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// UserRepository is the persistence gateway for user documents.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// SearchByName returns users whose name contains query, ignoring case.
	SearchByName(ctx context.Context, query string) ([]*domain.User, error)
	// Update applies changes in a single write and returns the stored document
	// after the write.
	Update(ctx context.Context, id string, changes domain.Changeset) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
