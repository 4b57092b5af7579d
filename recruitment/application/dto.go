package application

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// SubmitApplicationRequest - DTO for submitting a new application
type SubmitApplicationRequest struct {
	ApplicantID kernel.ApplicantID `json:"applicant_id" validate:"required"`
	CohortID    kernel.CohortID    `json:"cohort_id" validate:"required"`
	TrackID     kernel.TrackID     `json:"track_id" validate:"required"`
	FirstName   string             `json:"first_name" validate:"required"`
	LastName    string             `json:"last_name" validate:"required"`
	Email       kernel.Email       `json:"email" validate:"required,email"`
	Phone       string             `json:"phone,omitempty"`
	CVURL       kernel.BucketURL   `json:"cv_url,omitempty"`
	Profile     string             `json:"profile,omitempty"`
}

// ReviewApplicationRequest - DTO for the review transition
type ReviewApplicationRequest struct {
	Status          ApplicationStatus `json:"status" validate:"required"`
	ReviewNotes     string            `json:"review_notes,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
}

// RejectApplicationRequest - DTO for the reject action
type RejectApplicationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AcceptApplicationRequest - DTO for the direct accept override
type AcceptApplicationRequest struct {
	RoleOverride string `json:"role_override,omitempty"` // STUDENT (default) or MENTOR
}

// ApplicationResponse - DTO for returning application data
type ApplicationResponse struct {
	ID              kernel.ApplicationID `json:"id"`
	ApplicantID     kernel.ApplicantID   `json:"applicant_id"`
	CohortID        kernel.CohortID      `json:"cohort_id"`
	TrackID         kernel.TrackID       `json:"track_id"`
	FirstName       string               `json:"first_name"`
	LastName        string               `json:"last_name"`
	Email           kernel.Email         `json:"email"`
	Status          ApplicationStatus    `json:"status"`
	ReviewedBy      *kernel.UserID       `json:"reviewed_by,omitempty"`
	ReviewNotes     string               `json:"review_notes,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time            `json:"submitted_at"`
	StatusChangedAt *time.Time           `json:"status_changed_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// AcceptApplicationResponse - returned once; the temporary password is
// never retrievable again.
type AcceptApplicationResponse struct {
	Application       ApplicationResponse `json:"application"`
	UserID            kernel.UserID       `json:"user_id"`
	TemporaryPassword string              `json:"temporary_password"`
}

// Response type alias for paginated applications
type PaginatedApplicationsResponse = kernel.Paginated[ApplicationResponse]
