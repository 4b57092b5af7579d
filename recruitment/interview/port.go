package interview

import (
	"context"
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
)

// SlotRepository defines interview slot persistence
type SlotRepository interface {
	CreateSlots(ctx context.Context, slots []*InterviewSlot) error
	GetSlotByID(ctx context.Context, id kernel.SlotID) (*InterviewSlot, error)

	// ListAvailable returns slots with remaining capacity starting at or
	// after from, open to trackID, chronological.
	ListAvailable(ctx context.Context, from time.Time, trackID kernel.TrackID) ([]InterviewSlot, error)

	SetAvailability(ctx context.Context, id kernel.SlotID, available bool) error

	// DeleteSlot removes a slot with no bookings. Returns
	// ErrSlotHasBookings when booked_count > 0.
	DeleteSlot(ctx context.Context, id kernel.SlotID) error
}

// InterviewRepository defines interview persistence
type InterviewRepository interface {
	GetByID(ctx context.Context, id kernel.InterviewID) (*Interview, error)
	GetActiveByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (*Interview, error)
	ListBySlot(ctx context.Context, slotID kernel.SlotID) ([]Interview, error)
}

// BookingStore executes the slot lifecycle transactions. Book's atomic
// test-and-increment on booked_count is what keeps an overbooked slot
// impossible under concurrency.
type BookingStore interface {
	// Book increments the slot's booked_count (only while available and
	// under capacity), inserts the interview and flips the application to
	// INTERVIEW_SCHEDULED (only from one of the from statuses), all in
	// one transaction. Returns ErrSlotFull when the increment matches no
	// row and ErrAlreadyBooked when the application already holds an
	// active interview.
	Book(ctx context.Context, i *Interview, from []application.ApplicationStatus) error

	// Cancel marks the interview CANCELLED, decrements its slot's
	// booked_count and returns the application from INTERVIEW_SCHEDULED
	// to SHORTLISTED, all in one transaction.
	Cancel(ctx context.Context, id kernel.InterviewID, reason string) (*Interview, error)

	// Complete records the result on a SCHEDULED interview. Returns
	// ErrAlreadyCompleted when the interview is no longer scheduled.
	Complete(ctx context.Context, id kernel.InterviewID, result InterviewResult, feedback string, rating *int) (*Interview, error)
}
