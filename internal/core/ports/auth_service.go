package ports

import (
	"context"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

// RegisterInput carries the data needed to create a portal account.
type RegisterInput struct {
	Username          string
	Password          string
	Role              string
	FullName          string
	ReadingCentreCode string
}

// AuthService handles account registration, login, and logout.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// Logout revokes the presented token until its natural expiry.
	Logout(ctx context.Context, token string) error
}
