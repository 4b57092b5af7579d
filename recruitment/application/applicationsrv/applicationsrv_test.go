package applicationsrv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/cohort"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning/provisioningsrv"
)

// ============================================================================
// In-memory fakes. The fakes reproduce the conditional-update semantics of
// the Postgres layer under a mutex, so concurrency tests exercise the same
// race resolution the real store provides.
// ============================================================================

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[kernel.ApplicationID]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[kernel.ApplicationID]*application.Application)}
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *application.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.ApplicantID == app.ApplicantID && existing.CohortID == app.CohortID && existing.IsActive() {
			return application.ErrActiveApplicationExists()
		}
	}
	cp := *app
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeApplicationRepo) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, application.ErrApplicationNotFound()
	}
	cp := *app
	return &cp, nil
}

func (f *fakeApplicationRepo) List(ctx context.Context, p kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]application.Application, 0, len(f.apps))
	for _, app := range f.apps {
		items = append(items, *app)
	}
	return &kernel.Paginated[application.Application]{Items: items, Empty: len(items) == 0}, nil
}

func (f *fakeApplicationRepo) ListByStatus(ctx context.Context, status application.ApplicationStatus, p kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []application.Application
	for _, app := range f.apps {
		if app.Status == status {
			items = append(items, *app)
		}
	}
	return &kernel.Paginated[application.Application]{Items: items, Empty: len(items) == 0}, nil
}

func (f *fakeApplicationRepo) ExistsActiveByApplicantAndCohort(ctx context.Context, applicantID kernel.ApplicantID, cohortID kernel.CohortID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.apps {
		if app.ApplicantID == applicantID && app.CohortID == cohortID && app.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) TransitionStatus(ctx context.Context, id kernel.ApplicationID, from []application.ApplicationStatus, change application.StatusChange) (*application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transitionLocked(id, from, change)
}

func (f *fakeApplicationRepo) transitionLocked(id kernel.ApplicationID, from []application.ApplicationStatus, change application.StatusChange) (*application.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, application.ErrApplicationNotFound()
	}

	matched := false
	for _, st := range from {
		if app.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		if app.Status == application.ApplicationStatusAccepted && change.To == application.ApplicationStatusAccepted {
			return nil, application.ErrAlreadyAccepted()
		}
		return nil, application.ErrInvalidTransition().
			WithDetail("current_status", app.Status).
			WithDetail("new_status", change.To)
	}

	now := time.Now()
	app.Status = change.To
	app.StatusChangedAt = &now
	if change.ReviewedBy != nil {
		app.ReviewedBy = change.ReviewedBy
	}
	if change.ReviewNotes != nil {
		app.ReviewNotes = *change.ReviewNotes
	}
	if change.RejectionReason != nil {
		app.RejectionReason = *change.RejectionReason
	}
	cp := *app
	return &cp, nil
}

type fakeCohortRepo struct {
	cohort cohort.Cohort
	tracks map[kernel.TrackID]kernel.CohortID
}

func newFakeCohortRepo() *fakeCohortRepo {
	return &fakeCohortRepo{
		cohort: cohort.Cohort{
			ID:       "cohort-1",
			Name:     "Cohort 1",
			EndDate:  time.Now().Add(30 * 24 * time.Hour),
			Capacity: 100,
		},
		tracks: map[kernel.TrackID]kernel.CohortID{"track-swe": "cohort-1"},
	}
}

func (f *fakeCohortRepo) GetCohort(ctx context.Context, id kernel.CohortID) (*cohort.Cohort, error) {
	if id != f.cohort.ID {
		return nil, cohort.ErrCohortNotFound()
	}
	cp := f.cohort
	return &cp, nil
}

func (f *fakeCohortRepo) GetTrack(ctx context.Context, id kernel.TrackID) (*cohort.Track, error) {
	cohortID, ok := f.tracks[id]
	if !ok {
		return nil, cohort.ErrTrackNotFound()
	}
	return &cohort.Track{ID: id, CohortID: cohortID}, nil
}

func (f *fakeCohortRepo) TrackBelongsToCohort(ctx context.Context, trackID kernel.TrackID, cohortID kernel.CohortID) (bool, error) {
	return f.tracks[trackID] == cohortID, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[kernel.Email]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[kernel.Email]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.Email]; exists {
		return user.ErrUserAlreadyExists()
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
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
	_, ok := f.users[email]
	return ok, nil
}

// fakeProvisionStore runs the acceptance transaction against the fakes:
// conditional flip, then user insert, atomically under the repo mutex.
type fakeProvisionStore struct {
	apps  *fakeApplicationRepo
	users *fakeUserRepo
}

func (f *fakeProvisionStore) AcceptApplication(ctx context.Context, appID kernel.ApplicationID, cohortID kernel.CohortID, from []application.ApplicationStatus, newUser *user.User) error {
	f.apps.mu.Lock()
	defer f.apps.mu.Unlock()

	if _, err := f.apps.transitionLocked(appID, from, application.StatusChange{
		To: application.ApplicationStatusAccepted,
	}); err != nil {
		return err
	}
	if err := f.users.Create(ctx, newUser); err != nil {
		return provisioning.ErrAlreadyProvisioned().WithCause(err)
	}
	return nil
}

type fakeDispatcher struct {
	mu    sync.Mutex
	kinds []notify.TemplateKind
	data  []map[string]any
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, kind notify.TemplateKind, recipient kernel.Email, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	f.data = append(f.data, data)
	return f.err
}

// ============================================================================
// Fixtures
// ============================================================================

type fixture struct {
	svc        *ApplicationService
	appRepo    *fakeApplicationRepo
	userRepo   *fakeUserRepo
	dispatcher *fakeDispatcher
}

func newFixture() *fixture {
	appRepo := newFakeApplicationRepo()
	userRepo := newFakeUserRepo()
	dispatcher := &fakeDispatcher{}
	store := &fakeProvisionStore{apps: appRepo, users: userRepo}
	provisioner := provisioningsrv.NewAccountProvisioner(store, userRepo)

	return &fixture{
		svc:        NewApplicationService(appRepo, newFakeCohortRepo(), provisioner, dispatcher),
		appRepo:    appRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
	}
}

func submitRequest() application.SubmitApplicationRequest {
	return application.SubmitApplicationRequest{
		ApplicantID: "applicant-1",
		CohortID:    "cohort-1",
		TrackID:     "track-swe",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
	}
}

func (fx *fixture) submitted(t *testing.T) *application.Application {
	t.Helper()
	app, err := fx.svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	return app
}

func (fx *fixture) inStatus(t *testing.T, status application.ApplicationStatus) *application.Application {
	t.Helper()
	app := fx.submitted(t)
	fx.appRepo.mu.Lock()
	fx.appRepo.apps[app.ID].Status = status
	fx.appRepo.mu.Unlock()
	app.Status = status
	return app
}

// ============================================================================
// Tests
// ============================================================================

func TestSubmit(t *testing.T) {
	fx := newFixture()

	app, err := fx.svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusPending, app.Status)
	assert.False(t, app.ID.IsEmpty())
	assert.Equal(t, []notify.TemplateKind{notify.KindApplicationReceived}, fx.dispatcher.kinds)
}

func TestSubmit_DuplicateActiveApplication(t *testing.T) {
	fx := newFixture()
	fx.submitted(t)

	_, err := fx.svc.Submit(context.Background(), submitRequest())
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeActiveApplicationExists))
}

func TestSubmit_UnknownTrack(t *testing.T) {
	fx := newFixture()
	req := submitRequest()
	req.TrackID = "track-unknown"

	_, err := fx.svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, cohort.CodeTrackNotFound))
}

func TestSubmit_NotificationFailureIsSwallowed(t *testing.T) {
	fx := newFixture()
	fx.dispatcher.err = errors.New("smtp down")

	app, err := fx.svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err, "dispatch failure must not fail the submission")
	assert.Equal(t, application.ApplicationStatusPending, app.Status)
}

func TestReview_Shortlist(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	updated, err := fx.svc.Review(context.Background(), app.ID, application.ReviewApplicationRequest{
		Status:      application.ApplicationStatusShortlisted,
		ReviewNotes: "strong profile",
	}, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusShortlisted, updated.Status)
	assert.Equal(t, "strong profile", updated.ReviewNotes)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, kernel.UserID("reviewer-1"), *updated.ReviewedBy)
	assert.Contains(t, fx.dispatcher.kinds, notify.KindApplicationShortlisted)
}

func TestReview_UnderReviewNotifiesApplicant(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	updated, err := fx.svc.Review(context.Background(), app.ID, application.ReviewApplicationRequest{
		Status: application.ApplicationStatusUnderReview,
	}, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusUnderReview, updated.Status)
	assert.Contains(t, fx.dispatcher.kinds, notify.KindApplicationUnderReview)
}

func TestReview_EmptyNotesPreserveExisting(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	_, err := fx.svc.Review(context.Background(), app.ID, application.ReviewApplicationRequest{
		Status:      application.ApplicationStatusUnderReview,
		ReviewNotes: "strong profile",
	}, "reviewer-1")
	require.NoError(t, err)

	// A later review round without notes must not blank the earlier ones.
	updated, err := fx.svc.Review(context.Background(), app.ID, application.ReviewApplicationRequest{
		Status: application.ApplicationStatusShortlisted,
	}, "reviewer-2")
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusShortlisted, updated.Status)
	assert.Equal(t, "strong profile", updated.ReviewNotes)
}

func TestReview_RejectRequiresReason(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	_, err := fx.svc.Review(context.Background(), app.ID, application.ReviewApplicationRequest{
		Status:          application.ApplicationStatusRejected,
		RejectionReason: "   ",
	}, "reviewer-1")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeRejectionReasonRequired))

	// The application must be untouched.
	current, err := fx.svc.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusPending, current.Status)
}

func TestReview_DisallowedTarget(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	_, err := fx.svc.Review(context.Background(), app.ID, application.ReviewApplicationRequest{
		Status: application.ApplicationStatusAccepted,
	}, "reviewer-1")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeInvalidStatus))
}

func TestReject(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	updated, err := fx.svc.Reject(context.Background(), app.ID, "incomplete profile", "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusRejected, updated.Status)
	assert.Equal(t, "incomplete profile", updated.RejectionReason)
	assert.Contains(t, fx.dispatcher.kinds, notify.KindApplicationRejected)
}

func TestReject_EmptyReason(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	_, err := fx.svc.Reject(context.Background(), app.ID, "", "reviewer-1")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeRejectionReasonRequired))
}

func TestReject_TerminalApplication(t *testing.T) {
	fx := newFixture()
	app := fx.inStatus(t, application.ApplicationStatusRejected)

	_, err := fx.svc.Reject(context.Background(), app.ID, "again", "reviewer-1")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeInvalidStatusTransition))
}

func TestAccept_FromShortlisted(t *testing.T) {
	fx := newFixture()
	app := fx.inStatus(t, application.ApplicationStatusShortlisted)

	resp, err := fx.svc.Accept(context.Background(), app.ID, application.AcceptApplicationRequest{}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusAccepted, resp.Application.Status)
	assert.NotEmpty(t, resp.TemporaryPassword)
	assert.False(t, resp.UserID.IsEmpty())

	created, err := fx.userRepo.FindByEmail(context.Background(), app.Email)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, created.Role)
	assert.True(t, created.IsPasswordDefault)
	assert.NotEqual(t, resp.TemporaryPassword, created.PasswordHash, "plaintext must never be persisted")

	// The one-time password reaches the dispatcher and nothing else.
	require.Contains(t, fx.dispatcher.kinds, notify.KindApplicationAccepted)
	last := fx.dispatcher.data[len(fx.dispatcher.data)-1]
	assert.Equal(t, resp.TemporaryPassword, last["temporary_password"])
}

func TestAccept_PendingIsNotOverridable(t *testing.T) {
	fx := newFixture()
	app := fx.submitted(t)

	_, err := fx.svc.Accept(context.Background(), app.ID, application.AcceptApplicationRequest{}, "admin-1")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeInvalidStatusTransition))
}

func TestAccept_RoleOverride(t *testing.T) {
	fx := newFixture()
	app := fx.inStatus(t, application.ApplicationStatusShortlisted)

	resp, err := fx.svc.Accept(context.Background(), app.ID, application.AcceptApplicationRequest{
		RoleOverride: string(user.RoleMentor),
	}, "admin-1")
	require.NoError(t, err)

	created, err := fx.userRepo.FindByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleMentor, created.Role)
}

func TestAccept_ConcurrentDoubleAccept(t *testing.T) {
	fx := newFixture()
	app := fx.inStatus(t, application.ApplicationStatusShortlisted)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.Accept(context.Background(), app.ID, application.AcceptApplicationRequest{}, "admin-1")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one accept must win")
	require.Len(t, failures, attempts-1)
	for _, err := range failures {
		conflict := errx.HasCode(err, application.CodeAlreadyAccepted) ||
			errx.HasCode(err, provisioning.CodeAlreadyProvisioned)
		assert.True(t, conflict, "unexpected error: %v", err)
	}

	fx.userRepo.mu.Lock()
	assert.Len(t, fx.userRepo.users, 1, "exactly one account must exist")
	fx.userRepo.mu.Unlock()
}

func TestAcceptFromInterview(t *testing.T) {
	fx := newFixture()
	app := fx.inStatus(t, application.ApplicationStatusInterviewScheduled)

	resp, err := fx.svc.AcceptFromInterview(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusAccepted, resp.Application.Status)
	assert.NotEmpty(t, resp.TemporaryPassword)
}

func TestAcceptFromInterview_WrongStatus(t *testing.T) {
	fx := newFixture()
	app := fx.inStatus(t, application.ApplicationStatusShortlisted)

	_, err := fx.svc.AcceptFromInterview(context.Background(), app.ID)
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, application.CodeInvalidStatusTransition))
}
