package provisioningsrv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	mu       sync.Mutex
	accepted map[kernel.ApplicationID]bool
	users    *fakeUserRepo
}

func (f *fakeStore) AcceptApplication(ctx context.Context, appID kernel.ApplicationID, cohortID kernel.CohortID, from []application.ApplicationStatus, newUser *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accepted[appID] {
		return application.ErrAlreadyAccepted()
	}
	if err := f.users.Create(ctx, newUser); err != nil {
		return provisioning.ErrAlreadyProvisioned().WithCause(err)
	}
	f.accepted[appID] = true
	return nil
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[kernel.Email]*user.User
	existsErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return user.ErrUserAlreadyExists()
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return nil, user.ErrUserNotFound()
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email kernel.Email) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email kernel.Email) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.users[email]
	return ok, nil
}

func newProvisioner() (*AccountProvisioner, *fakeUserRepo) {
	users := &fakeUserRepo{users: make(map[kernel.Email]*user.User)}
	store := &fakeStore{accepted: make(map[kernel.ApplicationID]bool), users: users}
	return NewAccountProvisioner(store, users), users
}

func shortlistedApplication() *application.Application {
	return &application.Application{
		ID:        "app-1",
		CohortID:  "cohort-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Status:    application.ApplicationStatusShortlisted,
	}
}

func TestProvision(t *testing.T) {
	provisioner, users := newProvisioner()
	app := shortlistedApplication()

	result, err := provisioner.Provision(context.Background(), app,
		application.OverridableStatuses(), "")
	require.NoError(t, err)

	// Empty role defaults to STUDENT.
	assert.Equal(t, user.RoleStudent, result.User.Role)
	assert.Equal(t, app.Email, result.User.Email)
	assert.True(t, result.User.IsPasswordDefault)

	// Only the hash is stored; the plaintext password verifies against it.
	assert.NotEqual(t, result.TemporaryPassword, result.User.PasswordHash)
	assert.Len(t, result.TemporaryPassword, provisioning.PasswordLength)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(result.User.PasswordHash), []byte(result.TemporaryPassword)))

	stored, err := users.FindByEmail(context.Background(), app.Email)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, stored.ID)
}

func TestProvision_RoleOverride(t *testing.T) {
	provisioner, _ := newProvisioner()

	result, err := provisioner.Provision(context.Background(), shortlistedApplication(),
		application.OverridableStatuses(), user.RoleMentor)
	require.NoError(t, err)
	assert.Equal(t, user.RoleMentor, result.User.Role)
}

func TestProvision_InvalidRole(t *testing.T) {
	provisioner, _ := newProvisioner()

	_, err := provisioner.Provision(context.Background(), shortlistedApplication(),
		application.OverridableStatuses(), "SUPERUSER")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, user.CodeInvalidRole))
}

func TestProvision_LookupFailure(t *testing.T) {
	provisioner, users := newProvisioner()
	users.existsErr = errors.New("connection refused")

	_, err := provisioner.Provision(context.Background(), shortlistedApplication(),
		application.OverridableStatuses(), "")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, provisioning.CodeProvisioningFailed))
}

func TestProvision_Twice(t *testing.T) {
	provisioner, _ := newProvisioner()
	app := shortlistedApplication()

	_, err := provisioner.Provision(context.Background(), app,
		application.OverridableStatuses(), "")
	require.NoError(t, err)

	_, err = provisioner.Provision(context.Background(), app,
		application.OverridableStatuses(), "")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, provisioning.CodeAlreadyProvisioned))
}
