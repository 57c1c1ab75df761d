package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
)

// recordPtr constrains P to *T implementing domain.Record.
type recordPtr[T any] interface {
	*T
	domain.Record
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RecordService implements ports.RecordService for one profile sub-resource
// kind. Only the owner may update or delete a record.
type RecordService[T any, P recordPtr[T]] struct {
	kind    string
	records ports.RecordRepository[T]
	users   userFinder
	log     zerolog.Logger
	now     func() time.Time
}

// NewRecordService builds the service for kind, e.g.
// NewRecordService[domain.Project]("project", repo, users, log).
func NewRecordService[T any, P recordPtr[T]](kind string, records ports.RecordRepository[T], users userFinder, log zerolog.Logger) *RecordService[T, P] {
	return &RecordService[T, P]{
		kind:    kind,
		records: records,
		users:   users,
		log:     log.With().Str("kind", kind).Logger(),
		now:     time.Now,
	}
}

// Create stores draft as a new record owned by ownerID. The owner must exist;
// this is checked before the insert, not enforced transactionally.
func (s *RecordService[T, P]) Create(ctx context.Context, ownerID string, draft *T) (*T, error) {
	if draft == nil {
		return nil, domain.Invalid("%s payload is required", s.kind)
	}
	rec := P(draft)
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Invalid("owner %q does not exist", ownerID)
		}
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	rec.Assign(uuid.NewString(), ownerID, s.now().UTC())
	if err := s.records.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.log.Info().Str("user_id", ownerID).Msg("record created")
	return draft, nil
}

func (s *RecordService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return s.records.FindByID(ctx, id)
}

func (s *RecordService[T, P]) ListByUser(ctx context.Context, userID string) ([]*T, error) {
	return s.records.FindByUserID(ctx, userID)
}

// Update applies patch if actorID owns the record. The patched record must
// pass the same validation as Create, otherwise nothing is written.
func (s *RecordService[T, P]) Update(ctx context.Context, actorID, id string, patch domain.Patch) (*T, error) {
	current, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	changes := patch.Changes()
	if !changes.Empty() {
		merged := *current
		P(&merged).Apply(changes)
		if err := P(&merged).Validate(); err != nil {
			return nil, err
		}
	}

	updated, err := selectiveUpdate(ctx, s.records, id, changes)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}
	return updated, nil
}

func (s *RecordService[T, P]) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}

	s.log.Info().Str("user_id", actorID).Str("id", id).Msg("record deleted")
	return nil
}

// owned loads the record and checks that actorID owns it.
func (s *RecordService[T, P]) owned(ctx context.Context, actorID, id string) (*T, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if P(rec).OwnerID() != actorID {
		return nil, domain.ErrForbidden
	}
	return rec, nil
}
