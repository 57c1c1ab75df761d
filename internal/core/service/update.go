package service

import (
	"context"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// updater is the part of a repository the selective update engine needs. Both
// ports.UserRepository and ports.RecordRepository satisfy it.
type updater[T any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, changes domain.Changeset) (*T, error)
}

// selectiveUpdate writes only the fields present in changes and returns the
// record as stored after the write. An empty changeset performs no write and
// returns the current record.
func selectiveUpdate[T any](ctx context.Context, repo updater[T], id string, changes domain.Changeset) (*T, error) {
	if changes.Empty() {
		return repo.FindByID(ctx, id)
	}
	return repo.Update(ctx, id, changes)
}

// updateField is the single-field form of selectiveUpdate.
func updateField[T any](ctx context.Context, repo updater[T], id, name string, value any) (*T, error) {
	return selectiveUpdate(ctx, repo, id, domain.Changeset{{Name: name, Value: value}})
}
