package assessment

import (
	"context"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// Repository defines assessment persistence. Submit is transactional: the
// insert and the application's flip to ASSESSMENT_SUBMITTED commit
// together, and the unique constraint on application_id makes a second
// submission fail with ErrAlreadySubmitted no matter how the race falls.
type Repository interface {
	// Submit inserts the assessment and flips its application from
	// SHORTLISTED to ASSESSMENT_SUBMITTED in one transaction.
	Submit(ctx context.Context, a *Assessment) error

	GetByID(ctx context.Context, id kernel.AssessmentID) (*Assessment, error)
	GetByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (*Assessment, error)
	ExistsByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (bool, error)

	// Grade records score and feedback, only while the assessment is
	// still SUBMITTED.
	Grade(ctx context.Context, id kernel.AssessmentID, score int, feedback string, gradedBy kernel.UserID) (*Assessment, error)
}
