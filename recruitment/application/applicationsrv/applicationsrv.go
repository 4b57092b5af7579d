package applicationsrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/logx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/cohort"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning/provisioningsrv"
)

// ApplicationService is the authoritative transition engine for
// applications. All status mutations go through it.
type ApplicationService struct {
	applicationRepo application.Repository
	cohortRepo      cohort.Repository
	provisioner     *provisioningsrv.AccountProvisioner
	dispatcher      notify.Dispatcher
}

// NewApplicationService creates a new instance of the application service
func NewApplicationService(
	applicationRepo application.Repository,
	cohortRepo cohort.Repository,
	provisioner *provisioningsrv.AccountProvisioner,
	dispatcher notify.Dispatcher,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		cohortRepo:      cohortRepo,
		provisioner:     provisioner,
		dispatcher:      dispatcher,
	}
}

// Submit creates a new application in PENDING
func (s *ApplicationService) Submit(ctx context.Context, req application.SubmitApplicationRequest) (*application.Application, error) {
	if req.ApplicantID.IsEmpty() || req.CohortID.IsEmpty() || req.TrackID.IsEmpty() {
		return nil, application.ErrValidationFailed().
			WithDetail("message", "applicant_id, cohort_id and track_id are required")
	}
	if !req.Email.IsValid() {
		return nil, application.ErrValidationFailed().WithDetail("email", req.Email)
	}

	cohortEntity, err := s.cohortRepo.GetCohort(ctx, req.CohortID)
	if err != nil {
		return nil, err
	}
	if !cohortEntity.IsOpen(time.Now()) {
		return nil, cohort.ErrCohortClosed().WithDetail("cohort_id", req.CohortID.String())
	}

	belongs, err := s.cohortRepo.TrackBelongsToCohort(ctx, req.TrackID, req.CohortID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to validate track", errx.TypeInternal)
	}
	if !belongs {
		return nil, cohort.ErrTrackNotFound().
			WithDetail("track_id", req.TrackID.String()).
			WithDetail("cohort_id", req.CohortID.String())
	}

	// Business rule: one active application per applicant per cohort
	exists, err := s.applicationRepo.ExistsActiveByApplicantAndCohort(ctx, req.ApplicantID, req.CohortID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check active application", errx.TypeInternal)
	}
	if exists {
		return nil, application.ErrActiveApplicationExists().
			WithDetail("applicant_id", req.ApplicantID.String()).
			WithDetail("cohort_id", req.CohortID.String())
	}

	now := time.Now()
	newApplication := &application.Application{
		ID:          kernel.NewApplicationID(uuid.NewString()),
		ApplicantID: req.ApplicantID,
		CohortID:    req.CohortID,
		TrackID:     req.TrackID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		CVURL:       req.CVURL,
		Profile:     req.Profile,
		Status:      application.ApplicationStatusPending,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.applicationRepo.Create(ctx, newApplication); err != nil {
		return nil, err
	}

	s.notify(ctx, notify.KindApplicationReceived, newApplication, nil)
	return newApplication, nil
}

// Review moves the application to UNDER_REVIEW, SHORTLISTED or REJECTED
func (s *ApplicationService) Review(ctx context.Context, id kernel.ApplicationID, req application.ReviewApplicationRequest, reviewerID kernel.UserID) (*application.Application, error) {
	switch req.Status {
	case application.ApplicationStatusUnderReview, application.ApplicationStatusShortlisted:
		// fall through to the transition
	case application.ApplicationStatusRejected:
		if strings.TrimSpace(req.RejectionReason) == "" {
			return nil, application.ErrRejectionReasonRequired()
		}
	default:
		return nil, application.ErrInvalidStatus().WithDetail("status", req.Status)
	}

	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.CanTransition(req.Status) {
		return nil, application.ErrInvalidTransition().
			WithDetail("current_status", app.Status).
			WithDetail("new_status", req.Status)
	}

	change := application.StatusChange{
		To:         req.Status,
		ReviewedBy: &reviewerID,
	}
	// nil keeps the notes from an earlier review round
	if strings.TrimSpace(req.ReviewNotes) != "" {
		change.ReviewNotes = &req.ReviewNotes
	}
	if req.Status == application.ApplicationStatusRejected {
		change.RejectionReason = &req.RejectionReason
	}

	// Conditional on the status we just read: a concurrent transition
	// invalidates this one instead of silently overwriting it.
	updated, err := s.applicationRepo.TransitionStatus(ctx, id, []application.ApplicationStatus{app.Status}, change)
	if err != nil {
		return nil, err
	}

	switch updated.Status {
	case application.ApplicationStatusUnderReview:
		s.notify(ctx, notify.KindApplicationUnderReview, updated, nil)
	case application.ApplicationStatusShortlisted:
		s.notify(ctx, notify.KindApplicationShortlisted, updated, nil)
	case application.ApplicationStatusRejected:
		s.notify(ctx, notify.KindApplicationRejected, updated, map[string]any{
			"reason": updated.RejectionReason,
		})
	}

	return updated, nil
}

// Shortlist is the convenience transition to SHORTLISTED
func (s *ApplicationService) Shortlist(ctx context.Context, id kernel.ApplicationID, reviewerID kernel.UserID) (*application.Application, error) {
	return s.Review(ctx, id, application.ReviewApplicationRequest{
		Status: application.ApplicationStatusShortlisted,
	}, reviewerID)
}

// Reject transitions to REJECTED from any non-terminal status. The reason
// is mandatory: it is the only record of why the applicant was turned down.
func (s *ApplicationService) Reject(ctx context.Context, id kernel.ApplicationID, reason string, reviewerID kernel.UserID) (*application.Application, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, application.ErrRejectionReasonRequired()
	}

	change := application.StatusChange{
		To:              application.ApplicationStatusRejected,
		ReviewedBy:      &reviewerID,
		RejectionReason: &reason,
	}

	updated, err := s.applicationRepo.TransitionStatus(ctx, id, application.NonTerminalStatuses(), change)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notify.KindApplicationRejected, updated, map[string]any{
		"reason": reason,
	})
	return updated, nil
}

// Accept is the direct administrative override: it accepts the application
// without an interview, permitted only from UNDER_REVIEW or SHORTLISTED.
// On success the generated temporary password is returned exactly once.
func (s *ApplicationService) Accept(ctx context.Context, id kernel.ApplicationID, req application.AcceptApplicationRequest, reviewerID kernel.UserID) (*application.AcceptApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.accept(ctx, app, application.OverridableStatuses(), user.Role(req.RoleOverride))
}

// AcceptFromInterview accepts an application whose interview completed
// with a positive result. Only valid from INTERVIEW_SCHEDULED.
func (s *ApplicationService) AcceptFromInterview(ctx context.Context, id kernel.ApplicationID) (*application.AcceptApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.accept(ctx, app, []application.ApplicationStatus{application.ApplicationStatusInterviewScheduled}, user.RoleStudent)
}

// accept runs the shared provisioning path. The store's conditional flip
// to ACCEPTED is the serialization point for concurrent accepts.
func (s *ApplicationService) accept(ctx context.Context, app *application.Application, from []application.ApplicationStatus, role user.Role) (*application.AcceptApplicationResponse, error) {
	result, err := s.provisioner.Provision(ctx, app, from, role)
	if err != nil {
		return nil, err
	}

	accepted, err := s.applicationRepo.GetByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notify.KindApplicationAccepted, accepted, map[string]any{
		"temporary_password": result.TemporaryPassword,
		"role":               result.User.Role,
	})

	resp := &application.AcceptApplicationResponse{
		Application:       *toApplicationResponse(accepted),
		UserID:            result.User.ID,
		TemporaryPassword: result.TemporaryPassword,
	}
	return resp, nil
}

// GetByID retrieves an application by ID
func (s *ApplicationService) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.ApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toApplicationResponse(app), nil
}

// List retrieves applications with pagination, optionally by status
func (s *ApplicationService) List(ctx context.Context, status *application.ApplicationStatus, pagination kernel.PaginationOptions) (*application.PaginatedApplicationsResponse, error) {
	var (
		page *kernel.Paginated[application.Application]
		err  error
	)
	if status != nil {
		if !status.IsValid() {
			return nil, application.ErrInvalidStatus().WithDetail("status", *status)
		}
		page, err = s.applicationRepo.ListByStatus(ctx, *status, pagination)
	} else {
		page, err = s.applicationRepo.List(ctx, pagination)
	}
	if err != nil {
		return nil, errx.Wrap(err, "failed to list applications", errx.TypeInternal)
	}

	responses := make([]application.ApplicationResponse, 0, len(page.Items))
	for _, app := range page.Items {
		responses = append(responses, *toApplicationResponse(&app))
	}

	return &kernel.Paginated[application.ApplicationResponse]{
		Items: responses,
		Page:  page.Page,
		Empty: page.Empty,
	}, nil
}

// notify dispatches a stage notification. Delivery is best-effort: a
// failed dispatch never fails the transition that triggered it.
func (s *ApplicationService) notify(ctx context.Context, kind notify.TemplateKind, app *application.Application, extra map[string]any) {
	data := map[string]any{
		"application_id": app.ID.String(),
		"first_name":     app.FirstName,
		"status":         app.Status,
	}
	for k, v := range extra {
		data[k] = v
	}

	if err := s.dispatcher.Dispatch(ctx, kind, app.Email, data); err != nil {
		logx.Warnf("failed to dispatch %s notification for application %s: %v", kind, app.ID, err)
	}
}

// toApplicationResponse converts an Application entity to ApplicationResponse DTO
func toApplicationResponse(app *application.Application) *application.ApplicationResponse {
	return &application.ApplicationResponse{
		ID:              app.ID,
		ApplicantID:     app.ApplicantID,
		CohortID:        app.CohortID,
		TrackID:         app.TrackID,
		FirstName:       app.FirstName,
		LastName:        app.LastName,
		Email:           app.Email,
		Status:          app.Status,
		ReviewedBy:      app.ReviewedBy,
		ReviewNotes:     app.ReviewNotes,
		RejectionReason: app.RejectionReason,
		SubmittedAt:     app.SubmittedAt,
		StatusChangedAt: app.StatusChangedAt,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}
