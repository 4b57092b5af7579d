package interview

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// InterviewStatus represents the lifecycle of a booked interview
type InterviewStatus string

const (
	InterviewStatusScheduled InterviewStatus = "SCHEDULED"
	InterviewStatusCompleted InterviewStatus = "COMPLETED"
	InterviewStatusCancelled InterviewStatus = "CANCELLED"
)

// InterviewResult represents the outcome recorded at completion
type InterviewResult string

const (
	InterviewResultAccepted InterviewResult = "ACCEPTED"
	InterviewResultRejected InterviewResult = "REJECTED"
)

// IsValid checks if the result is valid
func (r InterviewResult) IsValid() bool {
	return r == InterviewResultAccepted || r == InterviewResultRejected
}

// Interview represents a booked interview. An application has at most one
// non-cancelled interview at a time.
type Interview struct {
	ID            kernel.InterviewID   `json:"id" db:"id"`
	ApplicationID kernel.ApplicationID `json:"application_id" db:"application_id"`
	SlotID        kernel.SlotID        `json:"slot_id" db:"slot_id"`
	Status        InterviewStatus      `json:"status" db:"status"`
	Result        *InterviewResult     `json:"result,omitempty" db:"result"`
	Feedback      string               `json:"feedback,omitempty" db:"feedback"`
	Rating        *int                 `json:"rating,omitempty" db:"rating"`
	CancelReason  string               `json:"cancel_reason,omitempty" db:"cancel_reason"`
	ScheduledAt   time.Time            `json:"scheduled_at" db:"scheduled_at"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt   *time.Time           `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" db:"updated_at"`
}

// IsActive checks if the interview still occupies its slot
func (i *Interview) IsActive() bool {
	return i.Status == InterviewStatusScheduled
}
