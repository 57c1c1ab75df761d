package ports

import (
	"context"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	// Authenticate keeps ErrUserNotFound and ErrInvalidCredentials distinct;
	// the transport decides how much of that to reveal.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) (domain.PasswordChange, error)
}
