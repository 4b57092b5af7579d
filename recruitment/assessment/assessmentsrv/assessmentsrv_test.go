package assessmentsrv

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment"
)

// ============================================================================
// Fakes. The assessment fake reproduces the transactional semantics of
// the Postgres repository: the application flip and the unique insert
// succeed or fail together under one mutex.
// ============================================================================

type fakeAppRepo struct {
	mu   sync.Mutex
	apps map[kernel.ApplicationID]*application.Application
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: make(map[kernel.ApplicationID]*application.Application)}
}

func (f *fakeAppRepo) add(status application.ApplicationStatus) *application.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := kernel.ApplicationID(uuid.NewString())
	app := &application.Application{
		ID:        id,
		CohortID:  "cohort-1",
		TrackID:   "track-swe",
		FirstName: "Ada",
		Email:     kernel.Email(id.String() + "@example.com"),
		Status:    status,
	}
	f.apps[id] = app
	cp := *app
	return &cp
}

func (f *fakeAppRepo) setStatus(id kernel.ApplicationID, status application.ApplicationStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps[id].Status = status
}

func (f *fakeAppRepo) Create(ctx context.Context, app *application.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *app
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeAppRepo) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, application.ErrApplicationNotFound()
	}
	cp := *app
	return &cp, nil
}

func (f *fakeAppRepo) List(ctx context.Context, p kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	return &kernel.Paginated[application.Application]{}, nil
}

func (f *fakeAppRepo) ListByStatus(ctx context.Context, s application.ApplicationStatus, p kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	return &kernel.Paginated[application.Application]{}, nil
}

func (f *fakeAppRepo) ExistsActiveByApplicantAndCohort(ctx context.Context, a kernel.ApplicantID, c kernel.CohortID) (bool, error) {
	return false, nil
}

func (f *fakeAppRepo) TransitionStatus(ctx context.Context, id kernel.ApplicationID, from []application.ApplicationStatus, change application.StatusChange) (*application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transitionLocked(id, from, change)
}

func (f *fakeAppRepo) transitionLocked(id kernel.ApplicationID, from []application.ApplicationStatus, change application.StatusChange) (*application.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, application.ErrApplicationNotFound()
	}
	for _, st := range from {
		if app.Status == st {
			now := time.Now()
			app.Status = change.To
			app.StatusChangedAt = &now
			cp := *app
			return &cp, nil
		}
	}
	return nil, application.ErrInvalidTransition().WithDetail("current_status", app.Status)
}

type fakeAssessmentRepo struct {
	mu    sync.Mutex
	byID  map[kernel.AssessmentID]*assessment.Assessment
	byApp map[kernel.ApplicationID]kernel.AssessmentID
	apps  *fakeAppRepo
}

func newFakeAssessmentRepo(apps *fakeAppRepo) *fakeAssessmentRepo {
	return &fakeAssessmentRepo{
		byID:  make(map[kernel.AssessmentID]*assessment.Assessment),
		byApp: make(map[kernel.ApplicationID]kernel.AssessmentID),
		apps:  apps,
	}
}

func (f *fakeAssessmentRepo) Submit(ctx context.Context, a *assessment.Assessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps.mu.Lock()
	defer f.apps.mu.Unlock()

	if _, ok := f.byApp[a.ApplicationID]; ok {
		return assessment.ErrAlreadySubmitted()
	}
	if _, err := f.apps.transitionLocked(a.ApplicationID,
		[]application.ApplicationStatus{application.ApplicationStatusShortlisted},
		application.StatusChange{To: application.ApplicationStatusAssessmentSubmitted},
	); err != nil {
		if errx.HasCode(err, application.CodeInvalidStatusTransition) {
			return assessment.ErrNotEligible()
		}
		return err
	}

	cp := *a
	f.byID[a.ID] = &cp
	f.byApp[a.ApplicationID] = a.ID
	return nil
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, id kernel.AssessmentID) (*assessment.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, assessment.ErrAssessmentNotFound()
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssessmentRepo) GetByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (*assessment.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byApp[applicationID]
	if !ok {
		return nil, assessment.ErrAssessmentNotFound()
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *fakeAssessmentRepo) ExistsByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byApp[applicationID]
	return ok, nil
}

func (f *fakeAssessmentRepo) Grade(ctx context.Context, id kernel.AssessmentID, score int, feedback string, gradedBy kernel.UserID) (*assessment.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, assessment.ErrAssessmentNotFound()
	}
	if a.Status != assessment.AssessmentStatusSubmitted {
		return nil, assessment.ErrAlreadyGraded()
	}
	now := time.Now()
	a.Status = assessment.AssessmentStatusGraded
	a.Score = &score
	a.Feedback = feedback
	a.GradedBy = &gradedBy
	a.GradedAt = &now
	cp := *a
	return &cp, nil
}

type fakeFileSystem struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFileSystem() *fakeFileSystem {
	return &fakeFileSystem{files: make(map[string][]byte)}
}

func (f *fakeFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	return nil
}

func (f *fakeFileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, assessment.ErrAssessmentNotFound().WithDetail("path", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFileSystem) DeleteFile(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *fakeFileSystem) Join(parts ...string) string {
	return strings.Join(parts, "/")
}

type fakeDispatcher struct {
	mu    sync.Mutex
	kinds []notify.TemplateKind
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, kind notify.TemplateKind, recipient kernel.Email, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return nil
}

type fixture struct {
	svc        *AssessmentService
	appRepo    *fakeAppRepo
	repo       *fakeAssessmentRepo
	fs         *fakeFileSystem
	dispatcher *fakeDispatcher
}

func newFixture() *fixture {
	appRepo := newFakeAppRepo()
	repo := newFakeAssessmentRepo(appRepo)
	fs := newFakeFileSystem()
	dispatcher := &fakeDispatcher{}
	return &fixture{
		svc:        NewAssessmentService(repo, appRepo, fs, dispatcher),
		appRepo:    appRepo,
		repo:       repo,
		fs:         fs,
		dispatcher: dispatcher,
	}
}

// ============================================================================
// Eligibility
// ============================================================================

func TestCheckEligibility(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	resp, err := fx.svc.CheckEligibility(context.Background(), app.ID)
	require.NoError(t, err)
	assert.True(t, resp.Eligible)
	assert.Empty(t, resp.Reasons)
}

func TestCheckEligibility_NotShortlisted(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusPending)

	resp, err := fx.svc.CheckEligibility(context.Background(), app.ID)
	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.Contains(t, resp.Reasons, "application is not shortlisted")
}

func TestCheckEligibility_AfterSubmission(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	_, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.NoError(t, err)

	resp, err := fx.svc.CheckEligibility(context.Background(), app.ID)
	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.Contains(t, resp.Reasons, "an assessment was already submitted")
	assert.Contains(t, resp.Reasons, "application is not shortlisted")
}

// ============================================================================
// Submission
// ============================================================================

func TestSubmit_File(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	data := []byte("package main")
	submitted, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeFile,
		Notes:          "solution attached",
	}, data, "solution.zip")
	require.NoError(t, err)

	assert.Equal(t, assessment.AssessmentStatusSubmitted, submitted.Status)
	expectedPath := "assessments/" + app.ID.String() + "/solution.zip"
	assert.Equal(t, kernel.BucketURL(expectedPath), submitted.FileURL)
	assert.Equal(t, data, fx.fs.files[expectedPath])

	current, err := fx.appRepo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.ApplicationStatusAssessmentSubmitted, current.Status)

	assert.Contains(t, fx.dispatcher.kinds, notify.KindAssessmentReceived)
}

func TestSubmit_URL(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	submitted, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/ada/solution", submitted.SubmissionURL)
	assert.Empty(t, submitted.FileURL)
}

func TestSubmit_MissingURL(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	_, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
	}, nil, "")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeInvalidSubmission))
}

func TestSubmit_MissingFile(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	_, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeFile,
	}, nil, "solution.zip")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeInvalidSubmission))
}

func TestSubmit_InvalidType(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	_, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: "CARRIER_PIGEON",
	}, nil, "")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeInvalidSubmission))
}

func TestSubmit_NotShortlisted(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusPending)

	_, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeNotEligible))
}

// A second submission that slips past the status pre-check (its status
// read was stale) must fail on the unique constraint and clean up the
// file it already stored.
func TestSubmit_RacedDuplicateDeletesOrphanedFile(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	_, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.NoError(t, err)

	// Simulate the stale read: the application looks SHORTLISTED again.
	fx.appRepo.setStatus(app.ID, application.ApplicationStatusShortlisted)

	_, err = fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeFile,
	}, []byte("late"), "late.zip")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeAlreadySubmitted))

	orphanPath := "assessments/" + app.ID.String() + "/late.zip"
	_, stored := fx.fs.files[orphanPath]
	assert.False(t, stored, "failed submission must not leak its stored file")
}

// ============================================================================
// Grading
// ============================================================================

func TestGrade(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	submitted, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.NoError(t, err)

	graded, err := fx.svc.Grade(context.Background(), submitted.ID, assessment.GradeAssessmentRequest{
		Score:    85,
		Feedback: "solid work",
	}, "grader-1")
	require.NoError(t, err)

	assert.Equal(t, assessment.AssessmentStatusGraded, graded.Status)
	assert.True(t, graded.IsGraded())
	require.NotNil(t, graded.Score)
	assert.Equal(t, 85, *graded.Score)
	assert.Equal(t, "solid work", graded.Feedback)
	require.NotNil(t, graded.GradedBy)
	assert.Equal(t, kernel.UserID("grader-1"), *graded.GradedBy)
}

func TestGrade_ScoreBounds(t *testing.T) {
	fx := newFixture()

	for _, score := range []int{-1, 101} {
		_, err := fx.svc.Grade(context.Background(), "assessment-1", assessment.GradeAssessmentRequest{
			Score: score,
		}, "grader-1")
		require.Error(t, err)
		assert.True(t, errx.HasCode(err, assessment.CodeInvalidScore), "score %d must be rejected", score)
	}
}

func TestGrade_Twice(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	submitted, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.NoError(t, err)

	_, err = fx.svc.Grade(context.Background(), submitted.ID, assessment.GradeAssessmentRequest{Score: 90}, "grader-1")
	require.NoError(t, err)

	_, err = fx.svc.Grade(context.Background(), submitted.ID, assessment.GradeAssessmentRequest{Score: 40}, "grader-2")
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeAlreadyGraded))
}

// ============================================================================
// Download
// ============================================================================

func TestDownloadSubmission(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	data := []byte("archive bytes")
	submitted, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeFile,
	}, data, "solution.zip")
	require.NoError(t, err)

	stream, filename, err := fx.svc.DownloadSubmission(context.Background(), submitted.ID)
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "solution.zip", filename)
	read, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func TestDownloadSubmission_URLSubmission(t *testing.T) {
	fx := newFixture()
	app := fx.appRepo.add(application.ApplicationStatusShortlisted)

	submitted, err := fx.svc.Submit(context.Background(), assessment.SubmitAssessmentRequest{
		ApplicationID:  app.ID,
		SubmissionType: assessment.SubmissionTypeURL,
		SubmissionURL:  "https://github.com/ada/solution",
	}, nil, "")
	require.NoError(t, err)

	_, _, err = fx.svc.DownloadSubmission(context.Background(), submitted.ID)
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, assessment.CodeInvalidRequest))
}
