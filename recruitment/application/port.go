package application

import (
	"context"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// StatusChange carries the fields written together with a conditional
// status transition.
type StatusChange struct {
	To              ApplicationStatus
	ReviewedBy      *kernel.UserID
	ReviewNotes     *string
	RejectionReason *string
}

type Repository interface {
	// Create creates a new application
	Create(ctx context.Context, app *Application) error

	// GetByID retrieves an application by ID
	GetByID(ctx context.Context, id kernel.ApplicationID) (*Application, error)

	// List retrieves all applications with pagination
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Application], error)

	// ListByStatus retrieves applications in a given status
	ListByStatus(ctx context.Context, status ApplicationStatus, pagination kernel.PaginationOptions) (*kernel.Paginated[Application], error)

	// ExistsActiveByApplicantAndCohort checks for a non-terminal
	// application of the applicant in the cohort
	ExistsActiveByApplicantAndCohort(ctx context.Context, applicantID kernel.ApplicantID, cohortID kernel.CohortID) (bool, error)

	// TransitionStatus applies change.To only if the application's status
	// is still one of from at commit time, and returns the updated
	// application. Zero matched rows surface as ErrApplicationNotFound,
	// ErrAlreadyAccepted (when the row is already accepted) or
	// ErrInvalidTransition.
	TransitionStatus(ctx context.Context, id kernel.ApplicationID, from []ApplicationStatus, change StatusChange) (*Application, error)
}
