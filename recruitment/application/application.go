package application

import (
	"slices"
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// ApplicationStatus represents the status of an application
type ApplicationStatus string

const (
	ApplicationStatusPending             ApplicationStatus = "PENDING"              // Initial submission
	ApplicationStatusUnderReview         ApplicationStatus = "UNDER_REVIEW"         // Being reviewed
	ApplicationStatusShortlisted         ApplicationStatus = "SHORTLISTED"          // Eligible for assessment
	ApplicationStatusAssessmentSubmitted ApplicationStatus = "ASSESSMENT_SUBMITTED" // Assessment received
	ApplicationStatusInterviewScheduled  ApplicationStatus = "INTERVIEW_SCHEDULED"  // Interview booked
	ApplicationStatusAccepted            ApplicationStatus = "ACCEPTED"             // Accepted, account provisioned
	ApplicationStatusRejected            ApplicationStatus = "REJECTED"             // Rejected
)

// IsValid reports whether the status is one of the enumerated values.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusUnderReview,
		ApplicationStatusShortlisted, ApplicationStatusAssessmentSubmitted,
		ApplicationStatusInterviewScheduled, ApplicationStatusAccepted,
		ApplicationStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// validTransitions is the single authoritative transition table. Direct
// acceptance from UNDER_REVIEW/SHORTLISTED is the administrative override;
// INTERVIEW_SCHEDULED reaches ACCEPTED only through interview completion
// and falls back to SHORTLISTED when the interview is cancelled, so the
// applicant can book again.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending: {
		ApplicationStatusUnderReview,
		ApplicationStatusShortlisted,
		ApplicationStatusRejected,
	},
	ApplicationStatusUnderReview: {
		ApplicationStatusShortlisted,
		ApplicationStatusRejected,
		ApplicationStatusAccepted,
	},
	ApplicationStatusShortlisted: {
		ApplicationStatusAssessmentSubmitted,
		ApplicationStatusInterviewScheduled,
		ApplicationStatusRejected,
		ApplicationStatusAccepted,
	},
	ApplicationStatusAssessmentSubmitted: {
		ApplicationStatusInterviewScheduled,
		ApplicationStatusRejected,
	},
	ApplicationStatusInterviewScheduled: {
		ApplicationStatusShortlisted,
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
	},
}

// NonTerminalStatuses returns every status from which a transition is
// still possible.
func NonTerminalStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusPending,
		ApplicationStatusUnderReview,
		ApplicationStatusShortlisted,
		ApplicationStatusAssessmentSubmitted,
		ApplicationStatusInterviewScheduled,
	}
}

// BookableStatuses returns the statuses from which an interview may be
// scheduled.
func BookableStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusShortlisted,
		ApplicationStatusAssessmentSubmitted,
	}
}

// OverridableStatuses returns the statuses from which a direct
// administrative accept is permitted.
func OverridableStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusUnderReview,
		ApplicationStatusShortlisted,
	}
}

type Application struct {
	ID              kernel.ApplicationID `db:"id" json:"id"`
	ApplicantID     kernel.ApplicantID   `db:"applicant_id" json:"applicant_id"`
	CohortID        kernel.CohortID      `db:"cohort_id" json:"cohort_id"`
	TrackID         kernel.TrackID       `db:"track_id" json:"track_id"`
	FirstName       string               `db:"first_name" json:"first_name"`
	LastName        string               `db:"last_name" json:"last_name"`
	Email           kernel.Email         `db:"email" json:"email"`
	Phone           string               `db:"phone" json:"phone"`
	CVURL           kernel.BucketURL     `db:"cv_url" json:"cv_url"`
	Profile         string               `db:"profile" json:"profile"` // free-form applicant profile, JSON blob
	Status          ApplicationStatus    `db:"status" json:"status"`
	ReviewedBy      *kernel.UserID       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes     string               `db:"review_notes" json:"review_notes"`
	RejectionReason string               `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time            `db:"submitted_at" json:"submitted_at"`
	StatusChangedAt *time.Time           `db:"status_changed_at" json:"status_changed_at,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsTerminal checks if the application reached a final state
func (a *Application) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// IsActive checks if the application is still in the pipeline
func (a *Application) IsActive() bool {
	return !a.IsTerminal()
}

// CanTransition checks if newStatus is reachable from the current status
func (a *Application) CanTransition(newStatus ApplicationStatus) bool {
	allowed, ok := validTransitions[a.Status]
	if !ok {
		return false // terminal status, no transitions
	}
	return slices.Contains(allowed, newStatus)
}

// Transition moves the application to newStatus, enforcing the table
func (a *Application) Transition(newStatus ApplicationStatus) error {
	if !a.CanTransition(newStatus) {
		return ErrInvalidTransition().
			WithDetail("current_status", a.Status).
			WithDetail("new_status", newStatus)
	}

	now := time.Now()
	a.Status = newStatus
	a.StatusChangedAt = &now
	a.UpdatedAt = now
	return nil
}

// FullName returns the applicant's display name.
func (a *Application) FullName() string {
	switch {
	case a.FirstName == "" && a.LastName == "":
		return "Unknown"
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}
