package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	updates int       // number of real writes through Update
	findErr error     // if set, FindByID and FindByEmail return this error
	deleted []string  // ids passed to Delete
	clock   time.Time // UpdatedAt stamp used by Update
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:  make(map[string]*domain.User),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = cloneUser(u)
}

func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byID[id])
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SearchByName mirrors the case-insensitive regex used by the Mongo repository.
func (r *stubUserRepo) SearchByName(ctx context.Context, query string) ([]*domain.User, error) {
	all, _ := r.List(ctx)
	var out []*domain.User
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, changes domain.Changeset) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	next := cloneUser(u)
	for _, f := range changes {
		v, _ := f.Value.(string)
		switch f.Name {
		case domain.FieldName:
			next.Name = v
		case domain.FieldEmail:
			for otherID, other := range r.byID {
				if otherID != id && other.Email == v {
					return nil, domain.ErrDuplicateEmail
				}
			}
			next.Email = v
		case domain.FieldDescription:
			next.Description = v
		case domain.FieldPasswordHash:
			next.PasswordHash = v
		case domain.FieldProfileImageURL:
			next.ProfileImageURL = v
		}
	}
	next.UpdatedAt = r.clock
	r.byID[id] = next
	r.updates++
	return cloneUser(next), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory record repository, generic over the record kind
// ---------------------------------------------------------------------------

type stubRecordRepo[T any] struct {
	mu        sync.Mutex
	items     map[string]*T
	id        func(*T) string
	owner     func(*T) string
	apply     func(*T, domain.Changeset)
	notFound  error
	deleteErr error // if set, DeleteByUserID returns this error
}

func (r *stubRecordRepo[T]) Create(_ context.Context, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rec
	r.items[r.id(rec)] = &clone
	return nil
}

func (r *stubRecordRepo[T]) FindByID(_ context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, r.notFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubRecordRepo[T]) FindByUserID(_ context.Context, userID string) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*T{}
	for _, rec := range r.items {
		if r.owner(rec) == userID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubRecordRepo[T]) Update(_ context.Context, id string, changes domain.Changeset) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, r.notFound
	}
	r.apply(rec, changes)
	clone := *rec
	return &clone, nil
}

func (r *stubRecordRepo[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return r.notFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubRecordRepo[T]) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	var n int64
	for id, rec := range r.items {
		if r.owner(rec) == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func newStubProjectRepo() *stubRecordRepo[domain.Project] {
	return &stubRecordRepo[domain.Project]{
		items:    make(map[string]*domain.Project),
		id:       func(p *domain.Project) string { return p.ID },
		owner:    func(p *domain.Project) string { return p.UserID },
		notFound: domain.ErrProjectNotFound,
		apply:    (*domain.Project).Apply,
	}
}

func newStubEducationRepo() *stubRecordRepo[domain.Education] {
	return &stubRecordRepo[domain.Education]{
		items:    make(map[string]*domain.Education),
		id:       func(e *domain.Education) string { return e.ID },
		owner:    func(e *domain.Education) string { return e.UserID },
		notFound: domain.ErrEducationNotFound,
		apply:    (*domain.Education).Apply,
	}
}

func newStubCertificateRepo() *stubRecordRepo[domain.Certificate] {
	return &stubRecordRepo[domain.Certificate]{
		items:    make(map[string]*domain.Certificate),
		id:       func(c *domain.Certificate) string { return c.ID },
		owner:    func(c *domain.Certificate) string { return c.UserID },
		notFound: domain.ErrCertificateNotFound,
		apply:    (*domain.Certificate).Apply,
	}
}
