package ports

import (
	"context"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

// UserRepository defines persistence operations for portal accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// ListTechnicians returns lab-role users in creation order. When
	// activeOnly is set, disabled accounts are excluded.
	ListTechnicians(ctx context.Context, activeOnly bool) ([]*domain.User, error)
	// SetActive enables or disables an account by username.
	SetActive(ctx context.Context, username string, active bool) error
}
