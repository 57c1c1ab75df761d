package ports

import (
	"context"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// RecordRepository is the persistence gateway shared by every profile
// sub-resource kind. Children reference their owner through user_id only.
type RecordRepository[T any] interface {
	Create(ctx context.Context, rec *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	FindByUserID(ctx context.Context, userID string) ([]*T, error)
	Update(ctx context.Context, id string, changes domain.Changeset) (*T, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// OwnedRecordCleaner removes every record of one kind owned by a user.
// It is the slice of RecordRepository the cascade delete needs.
type OwnedRecordCleaner interface {
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
