package provisioningsrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning"
	"golang.org/x/crypto/bcrypt"
)

// AccountProvisioner creates platform accounts for accepted applications.
type AccountProvisioner struct {
	store    provisioning.Store
	userRepo user.Repository
}

// NewAccountProvisioner creates a new provisioner.
func NewAccountProvisioner(store provisioning.Store, userRepo user.Repository) *AccountProvisioner {
	return &AccountProvisioner{
		store:    store,
		userRepo: userRepo,
	}
}

// ProvisionResult carries the created account and its one-time password.
type ProvisionResult struct {
	User *user.User
	// TemporaryPassword is handed to the caller exactly once for
	// transmission to the applicant. Only its bcrypt hash is stored.
	TemporaryPassword string
}

// Provision accepts the application and creates its platform account in
// one transaction. from constrains which statuses the acceptance is valid
// from; role defaults to STUDENT when empty.
func (p *AccountProvisioner) Provision(ctx context.Context, app *application.Application, from []application.ApplicationStatus, role user.Role) (*ProvisionResult, error) {
	if role == "" {
		role = user.RoleStudent
	}
	if !role.IsValid() {
		return nil, user.ErrInvalidRole().WithDetail("role", role)
	}

	// Idempotency guard: a second provision for the same applicant must
	// fail, never silently issue a second password.
	exists, err := p.userRepo.ExistsByEmail(ctx, app.Email)
	if err != nil {
		return nil, provisioning.ErrProvisioningFailed().WithCause(err)
	}
	if exists {
		return nil, provisioning.ErrAlreadyProvisioned().
			WithDetail("application_id", app.ID.String()).
			WithDetail("email", app.Email.String())
	}

	password, err := provisioning.GeneratePassword()
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, provisioning.ErrProvisioningFailed().WithCause(err)
	}

	now := time.Now()
	newUser := &user.User{
		ID:                kernel.NewUserID(uuid.NewString()),
		Email:             app.Email,
		FirstName:         app.FirstName,
		LastName:          app.LastName,
		Role:              role,
		Status:            user.UserStatusActive,
		PasswordHash:      string(hash),
		IsPasswordDefault: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := p.store.AcceptApplication(ctx, app.ID, app.CohortID, from, newUser); err != nil {
		return nil, err
	}

	return &ProvisionResult{
		User:              newUser,
		TemporaryPassword: password,
	}, nil
}
