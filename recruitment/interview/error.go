package interview

import (
	"net/http"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("INTERVIEW")

// Error codes
var (
	CodeSlotNotFound      = ErrRegistry.Register("SLOT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Interview slot not found")
	CodeInterviewNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Interview not found")
	CodeSlotFull          = ErrRegistry.Register("SLOT_FULL", errx.TypeConflict, http.StatusConflict, "Interview slot has no remaining capacity")
	CodeSlotUnavailable   = ErrRegistry.Register("SLOT_UNAVAILABLE", errx.TypeBusiness, http.StatusUnprocessableEntity, "Interview slot is not available")
	CodeAlreadyBooked     = ErrRegistry.Register("ALREADY_BOOKED", errx.TypeConflict, http.StatusConflict, "Application already has a scheduled interview")
	CodeNotEligible       = ErrRegistry.Register("NOT_ELIGIBLE", errx.TypeBusiness, http.StatusUnprocessableEntity, "Application is not eligible to book this slot")
	CodeSlotHasBookings   = ErrRegistry.Register("SLOT_HAS_BOOKINGS", errx.TypeConflict, http.StatusConflict, "Slot has active bookings and cannot be deleted")
	CodeInvalidTimeWindow = ErrRegistry.Register("INVALID_TIME_WINDOW", errx.TypeValidation, http.StatusBadRequest, "Invalid slot time window")
	CodeAlreadyCompleted  = ErrRegistry.Register("ALREADY_COMPLETED", errx.TypeConflict, http.StatusConflict, "Interview was already completed or cancelled")
	CodeInvalidRequest    = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request")
)

// Helper functions
func ErrSlotNotFound() *errx.Error {
	return ErrRegistry.New(CodeSlotNotFound)
}

func ErrInterviewNotFound() *errx.Error {
	return ErrRegistry.New(CodeInterviewNotFound)
}

func ErrSlotFull() *errx.Error {
	return ErrRegistry.New(CodeSlotFull)
}

func ErrSlotUnavailable() *errx.Error {
	return ErrRegistry.New(CodeSlotUnavailable)
}

func ErrAlreadyBooked() *errx.Error {
	return ErrRegistry.New(CodeAlreadyBooked)
}

func ErrNotEligible() *errx.Error {
	return ErrRegistry.New(CodeNotEligible)
}

func ErrSlotHasBookings() *errx.Error {
	return ErrRegistry.New(CodeSlotHasBookings)
}

func ErrInvalidTimeWindow() *errx.Error {
	return ErrRegistry.New(CodeInvalidTimeWindow)
}

func ErrAlreadyCompleted() *errx.Error {
	return ErrRegistry.New(CodeAlreadyCompleted)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}
