package ports

import (
	"context"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// UserService orchestrates account reads, profile updates and the cascading
// account delete.
type UserService interface {
	GetUserInfo(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	SearchUsers(ctx context.Context, query string) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	GetProfileImageURL(ctx context.Context, id string) (string, error)
	DeleteUserCascade(ctx context.Context, id string) error
}

// RecordService manages one kind of profile sub-resource.
type RecordService[T any] interface {
	Create(ctx context.Context, ownerID string, draft *T) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	ListByUser(ctx context.Context, userID string) ([]*T, error)
	Update(ctx context.Context, actorID, id string, patch domain.Patch) (*T, error)
	Delete(ctx context.Context, actorID, id string) error
}
