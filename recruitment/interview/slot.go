package interview

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// InterviewSlot represents a bookable interview window. BookedCount is
// only ever moved by the atomic test-and-increment in the booking store;
// it never exceeds MaxInterviews.
type InterviewSlot struct {
	ID            kernel.SlotID      `json:"id" db:"id"`
	Date          time.Time          `json:"date" db:"date"`
	StartTime     time.Time          `json:"start_time" db:"start_time"`
	EndTime       time.Time          `json:"end_time" db:"end_time"`
	Tracks        []kernel.TrackID   `json:"tracks" db:"-"`
	MaxInterviews int                `json:"max_interviews" db:"max_interviews"`
	BookedCount   int                `json:"booked_count" db:"booked_count"`
	IsAvailable   bool               `json:"is_available" db:"is_available"`
	MeetingLink   kernel.MeetingLink `json:"meeting_link,omitempty" db:"meeting_link"`
	CreatedBy     kernel.UserID      `json:"created_by" db:"created_by"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// HasCapacity checks if the slot can take another booking
func (s *InterviewSlot) HasCapacity() bool {
	return s.IsAvailable && s.BookedCount < s.MaxInterviews
}

// AcceptsTrack checks if the slot is open to a track. A slot with no
// track restriction accepts every track.
func (s *InterviewSlot) AcceptsTrack(trackID kernel.TrackID) bool {
	if len(s.Tracks) == 0 {
		return true
	}
	for _, t := range s.Tracks {
		if t == trackID {
			return true
		}
	}
	return false
}

// Duration returns the slot length
func (s *InterviewSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
