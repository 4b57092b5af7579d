package userinfra

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// PostgresUserRepository implements user.Repository using PostgreSQL
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, email, first_name, last_name, role, status,
			password_hash, is_password_default, created_at, updated_at
		) VALUES (
			:id, :email, :first_name, :last_name, :role, :status,
			:password_hash, :is_password_default, :created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return user.ErrUserAlreadyExists().WithDetail("email", u.Email.String())
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	query := `
		SELECT id, email, first_name, last_name, role, status,
		       password_hash, is_password_default, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound()
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// FindByEmail retrieves a user by email
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email kernel.Email) (*user.User, error) {
	query := `
		SELECT id, email, first_name, last_name, role, status,
		       password_hash, is_password_default, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, email.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound()
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email kernel.Email) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email.String())
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}
