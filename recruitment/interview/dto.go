package interview

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// GenerateSlotsRequest - DTO for bulk slot generation. Each day in
// [StartDate, EndDate] is sliced into DurationMinutes intervals between
// DailyStartTime and DailyEndTime (HH:MM, 24h).
type GenerateSlotsRequest struct {
	StartDate       string             `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate         string             `json:"end_date" validate:"required"`   // YYYY-MM-DD
	DailyStartTime  string             `json:"daily_start_time" validate:"required"`
	DailyEndTime    string             `json:"daily_end_time" validate:"required"`
	DurationMinutes int                `json:"duration_minutes" validate:"required,min=1"`
	MaxInterviews   int                `json:"max_interviews" validate:"required,min=1"`
	Tracks          []kernel.TrackID   `json:"tracks,omitempty"`
	MeetingLink     kernel.MeetingLink `json:"meeting_link,omitempty"`
}

// ManualSlotSpec - a single explicit slot in a manual creation request
type ManualSlotSpec struct {
	Date          string             `json:"date" validate:"required"` // YYYY-MM-DD
	StartTime     string             `json:"start_time" validate:"required"`
	EndTime       string             `json:"end_time" validate:"required"`
	MaxInterviews int                `json:"max_interviews" validate:"required,min=1"`
	Tracks        []kernel.TrackID   `json:"tracks,omitempty"`
	MeetingLink   kernel.MeetingLink `json:"meeting_link,omitempty"`
}

// CreateSlotsRequest - DTO for slot creation. Mode selects bulk generation
// or an explicit slot list.
type CreateSlotsRequest struct {
	Mode   string                `json:"mode" validate:"required"` // bulk or manual
	Bulk   *GenerateSlotsRequest `json:"bulk,omitempty"`
	Manual []ManualSlotSpec      `json:"manual,omitempty"`
}

// BookInterviewRequest - DTO for booking an interview
type BookInterviewRequest struct {
	ApplicationID kernel.ApplicationID `json:"application_id" validate:"required"`
	SlotID        kernel.SlotID        `json:"slot_id" validate:"required"`
}

// CancelInterviewRequest - DTO for cancelling an interview
type CancelInterviewRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CompleteInterviewRequest - DTO for recording an interview outcome
type CompleteInterviewRequest struct {
	Result   InterviewResult `json:"result" validate:"required"`
	Feedback string          `json:"feedback,omitempty"`
	Rating   *int            `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// DaySlots - available slots of one calendar day, chronological
type DaySlots struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Slots []InterviewSlot `json:"slots"`
}

// AvailableSlotsResponse - available slots grouped by date
type AvailableSlotsResponse struct {
	Days []DaySlots `json:"days"`
}

// CompleteInterviewResponse - returned from completion. ProvisionedUserID
// and TemporaryPassword are set only for an ACCEPTED result.
type CompleteInterviewResponse struct {
	Interview         *Interview    `json:"interview"`
	ProvisionedUserID kernel.UserID `json:"provisioned_user_id,omitempty"`
	TemporaryPassword string        `json:"temporary_password,omitempty"`
}

// SlotDate formats a slot date for grouping
func SlotDate(t time.Time) string {
	return t.Format("2006-01-02")
}
