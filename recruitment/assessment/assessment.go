package assessment

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// SubmissionType represents how the assessment work was handed in
type SubmissionType string

const (
	SubmissionTypeFile SubmissionType = "FILE" // uploaded archive or document
	SubmissionTypeURL  SubmissionType = "URL"  // link to a hosted repository or deployment
)

// IsValid checks if the submission type is valid
func (t SubmissionType) IsValid() bool {
	return t == SubmissionTypeFile || t == SubmissionTypeURL
}

// AssessmentStatus represents the grading state of a submission
type AssessmentStatus string

const (
	AssessmentStatusSubmitted AssessmentStatus = "SUBMITTED"
	AssessmentStatusGraded    AssessmentStatus = "GRADED"
)

// Assessment represents a technical assessment submission. At most one
// exists per application.
type Assessment struct {
	ID             kernel.AssessmentID  `json:"id" db:"id"`
	ApplicationID  kernel.ApplicationID `json:"application_id" db:"application_id"`
	SubmissionType SubmissionType       `json:"submission_type" db:"submission_type"`
	FileURL        kernel.BucketURL     `json:"file_url,omitempty" db:"file_url"`
	SubmissionURL  string               `json:"submission_url,omitempty" db:"submission_url"`
	Notes          string               `json:"notes,omitempty" db:"notes"`
	Status         AssessmentStatus     `json:"status" db:"status"`
	Score          *int                 `json:"score,omitempty" db:"score"`
	Feedback       string               `json:"feedback,omitempty" db:"feedback"`
	GradedBy       *kernel.UserID       `json:"graded_by,omitempty" db:"graded_by"`
	SubmittedAt    time.Time            `json:"submitted_at" db:"submitted_at"`
	GradedAt       *time.Time           `json:"graded_at,omitempty" db:"graded_at"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" db:"updated_at"`
}

// IsGraded checks if the assessment has been graded
func (a *Assessment) IsGraded() bool {
	return a.Status == AssessmentStatusGraded
}
