package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
)

// OwnedKind names one kind of child record removed by the cascade delete.
type OwnedKind struct {
	Name    string
	Records ports.OwnedRecordCleaner
}

// UserService implements account reads, profile updates and the cascading
// account delete.
type UserService struct {
	users    ports.UserRepository
	owned    []OwnedKind
	log      zerolog.Logger
	validate *validator.Validate
}

// NewUserService returns a UserService. owned lists the child record kinds in
// the order the cascade delete removes them.
func NewUserService(users ports.UserRepository, log zerolog.Logger, owned ...OwnedKind) *UserService {
	return &UserService{
		users:    users,
		owned:    owned,
		log:      log,
		validate: validator.New(),
	}
}

func (s *UserService) GetUserInfo(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// SearchUsers matches query as a case-insensitive substring of the user name.
// An empty query lists every user.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.users.List(ctx)
	}
	return s.users.SearchByName(ctx, query)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if email, ok := patch.Email.Get(); ok {
		email = normalizeEmail(email)
		if !validEmail(s.validate, email) {
			return nil, domain.Invalid("email must be a valid address")
		}
		patch.Email = domain.Some(email)
	}

	changes := patch.Changes()
	user, err := selectiveUpdate(ctx, s.users, id, changes)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !changes.Empty() {
		fields := make([]string, len(changes))
		for i, f := range changes {
			fields[i] = f.Name
		}
		s.log.Info().Str("user_id", id).Strs("fields", fields).Msg("user updated")
	}
	return user, nil
}

func (s *UserService) GetProfileImageURL(ctx context.Context, id string) (string, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user.ProfileImageURL == "" {
		return "", domain.ErrProfileImageNotFound
	}
	return user.ProfileImageURL, nil
}

// DeleteUserCascade deletes the user and then every owned record kind. It is
// best effort and not transactional: each kind is attempted even after a
// failure, and failures are reported together as a *domain.PartialFailureError.
func (s *UserService) DeleteUserCascade(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	deleted := []string{"user"}
	failed := make(map[string]error)
	for _, kind := range s.owned {
		n, err := kind.Records.DeleteByUserID(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", id).Str("kind", kind.Name).Msg("cascade delete step failed")
			failed[kind.Name] = err
			continue
		}
		s.log.Debug().Str("user_id", id).Str("kind", kind.Name).Int64("count", n).Msg("owned records deleted")
		deleted = append(deleted, kind.Name)
	}

	if len(failed) > 0 {
		return &domain.PartialFailureError{UserID: id, Deleted: deleted, Failed: failed}
	}

	s.log.Info().Str("user_id", id).Msg("user deleted with owned records")
	return nil
}
