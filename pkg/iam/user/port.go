package user

import (
	"context"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)

	// FindByEmail retrieves a user by email
	FindByEmail(ctx context.Context, email kernel.Email) (*User, error)

	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email kernel.Email) (bool, error)
}
