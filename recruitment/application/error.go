package application

import (
	"net/http"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("APPLICATION")

// Error codes
var (
	CodeApplicationNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application not found")
	CodeActiveApplicationExists = ErrRegistry.Register("ACTIVE_EXISTS", errx.TypeConflict, http.StatusConflict, "Applicant already has an active application for this cohort")
	CodeInvalidStatusTransition = ErrRegistry.Register("INVALID_STATUS_TRANSITION", errx.TypeBusiness, http.StatusBadRequest, "Invalid status transition")
	CodeAlreadyAccepted         = ErrRegistry.Register("ALREADY_ACCEPTED", errx.TypeConflict, http.StatusConflict, "Application is already accepted")
	CodeRejectionReasonRequired = ErrRegistry.Register("REJECTION_REASON_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Rejection reason is required")
	CodeInvalidStatus           = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Unknown application status")
	CodeInvalidRequest          = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
	CodeValidationFailed        = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Request validation failed")
	CodeInsufficientPermissions = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
)

// Helper functions
func ErrApplicationNotFound() *errx.Error {
	return ErrRegistry.New(CodeApplicationNotFound)
}

func ErrActiveApplicationExists() *errx.Error {
	return ErrRegistry.New(CodeActiveApplicationExists)
}

func ErrInvalidTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatusTransition)
}

func ErrAlreadyAccepted() *errx.Error {
	return ErrRegistry.New(CodeAlreadyAccepted)
}

func ErrRejectionReasonRequired() *errx.Error {
	return ErrRegistry.New(CodeRejectionReasonRequired)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeValidationFailed)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}
