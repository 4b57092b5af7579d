package user

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// Role is the platform role assigned to a user account.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleMentor  Role = "MENTOR"
	RoleAdmin   Role = "ADMIN"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is a platform account. PasswordHash is the only stored credential;
// plaintext passwords never leave the provisioning flow.
type User struct {
	ID                kernel.UserID `db:"id" json:"id"`
	Email             kernel.Email  `db:"email" json:"email"`
	FirstName         string        `db:"first_name" json:"first_name"`
	LastName          string        `db:"last_name" json:"last_name"`
	Role              Role          `db:"role" json:"role"`
	Status            UserStatus    `db:"status" json:"status"`
	PasswordHash      string        `db:"password_hash" json:"-"`
	IsPasswordDefault bool          `db:"is_password_default" json:"is_password_default"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the account can sign in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
