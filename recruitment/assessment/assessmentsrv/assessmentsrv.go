package assessmentsrv

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/fsx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/logx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment"
)

// AssessmentService handles assessment eligibility, submission and grading.
type AssessmentService struct {
	assessmentRepo  assessment.Repository
	applicationRepo application.Repository
	fileSystem      fsx.FileSystem
	dispatcher      notify.Dispatcher
}

// NewAssessmentService creates a new instance of the assessment service
func NewAssessmentService(
	assessmentRepo assessment.Repository,
	applicationRepo application.Repository,
	fileSystem fsx.FileSystem,
	dispatcher notify.Dispatcher,
) *AssessmentService {
	return &AssessmentService{
		assessmentRepo:  assessmentRepo,
		applicationRepo: applicationRepo,
		fileSystem:      fileSystem,
		dispatcher:      dispatcher,
	}
}

// CheckEligibility reports whether the application may submit an
// assessment, with every failed condition listed. The check is advisory:
// Submit re-validates under the submission transaction.
func (s *AssessmentService) CheckEligibility(ctx context.Context, applicationID kernel.ApplicationID) (*assessment.EligibilityResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	var reasons []string
	if app.Status != application.ApplicationStatusShortlisted {
		reasons = append(reasons, "application is not shortlisted")
	}

	exists, err := s.assessmentRepo.ExistsByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check existing submission", errx.TypeInternal)
	}
	if exists {
		reasons = append(reasons, "an assessment was already submitted")
	}

	return &assessment.EligibilityResponse{
		ApplicationID: applicationID,
		Eligible:      len(reasons) == 0,
		Reasons:       reasons,
	}, nil
}

// Submit records an assessment submission. For FILE submissions fileData
// is stored first; the database transaction then flips the application to
// ASSESSMENT_SUBMITTED and inserts the record together.
func (s *AssessmentService) Submit(ctx context.Context, req assessment.SubmitAssessmentRequest, fileData []byte, filename string) (*assessment.Assessment, error) {
	if req.ApplicationID.IsEmpty() {
		return nil, assessment.ErrInvalidSubmission().WithDetail("application_id", "missing or empty")
	}
	if !req.SubmissionType.IsValid() {
		return nil, assessment.ErrInvalidSubmission().WithDetail("submission_type", req.SubmissionType)
	}

	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != application.ApplicationStatusShortlisted {
		return nil, assessment.ErrNotEligible().
			WithDetail("application_id", req.ApplicationID.String()).
			WithDetail("current_status", app.Status)
	}

	now := time.Now()
	newAssessment := &assessment.Assessment{
		ID:             kernel.AssessmentID(uuid.NewString()),
		ApplicationID:  req.ApplicationID,
		SubmissionType: req.SubmissionType,
		Notes:          req.Notes,
		Status:         assessment.AssessmentStatusSubmitted,
		SubmittedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch req.SubmissionType {
	case assessment.SubmissionTypeFile:
		if len(fileData) == 0 {
			return nil, assessment.ErrInvalidSubmission().WithDetail("file", "missing or empty")
		}
		path := s.fileSystem.Join("assessments", req.ApplicationID.String(), filename)
		if err := s.fileSystem.WriteFile(ctx, path, fileData); err != nil {
			return nil, errx.Wrap(err, "failed to store assessment file", errx.TypeExternal)
		}
		newAssessment.FileURL = kernel.BucketURL(path)
	case assessment.SubmissionTypeURL:
		if strings.TrimSpace(req.SubmissionURL) == "" {
			return nil, assessment.ErrInvalidSubmission().WithDetail("submission_url", "missing or empty")
		}
		newAssessment.SubmissionURL = req.SubmissionURL
	}

	if err := s.assessmentRepo.Submit(ctx, newAssessment); err != nil {
		// The stored file becomes an orphan when the transaction fails;
		// remove it rather than leak bucket objects.
		if newAssessment.FileURL != "" {
			if delErr := s.fileSystem.DeleteFile(ctx, newAssessment.FileURL.String()); delErr != nil {
				logx.Warnf("failed to delete orphaned assessment file %s: %v", newAssessment.FileURL, delErr)
			}
		}
		return nil, err
	}

	s.notifySubmission(ctx, app)
	return newAssessment, nil
}

// Grade scores a submitted assessment
func (s *AssessmentService) Grade(ctx context.Context, id kernel.AssessmentID, req assessment.GradeAssessmentRequest, gradedBy kernel.UserID) (*assessment.Assessment, error) {
	if req.Score < 0 || req.Score > 100 {
		return nil, assessment.ErrInvalidScore().WithDetail("score", req.Score)
	}

	return s.assessmentRepo.Grade(ctx, id, req.Score, req.Feedback, gradedBy)
}

// GetByApplicationID retrieves the assessment for an application
func (s *AssessmentService) GetByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (*assessment.Assessment, error) {
	return s.assessmentRepo.GetByApplicationID(ctx, applicationID)
}

// DownloadSubmission opens the stored file of a FILE submission. The
// caller owns the returned stream.
func (s *AssessmentService) DownloadSubmission(ctx context.Context, id kernel.AssessmentID) (io.ReadCloser, string, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if a.SubmissionType != assessment.SubmissionTypeFile || a.FileURL == "" {
		return nil, "", assessment.ErrInvalidRequest().
			WithDetail("assessment_id", id.String()).
			WithDetail("message", "assessment has no stored file")
	}

	stream, err := s.fileSystem.ReadFileStream(ctx, a.FileURL.String())
	if err != nil {
		return nil, "", errx.Wrap(err, "failed to open assessment file", errx.TypeExternal)
	}

	return stream, path.Base(a.FileURL.String()), nil
}

func (s *AssessmentService) notifySubmission(ctx context.Context, app *application.Application) {
	data := map[string]any{
		"application_id": app.ID.String(),
		"first_name":     app.FirstName,
	}
	if err := s.dispatcher.Dispatch(ctx, notify.KindAssessmentReceived, app.Email, data); err != nil {
		logx.Warnf("failed to dispatch assessment notification for application %s: %v", app.ID, err)
	}
}
