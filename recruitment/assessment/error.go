package assessment

import (
	"net/http"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("ASSESSMENT")

// Error codes
var (
	CodeAssessmentNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Assessment not found")
	CodeNotEligible        = ErrRegistry.Register("NOT_ELIGIBLE", errx.TypeBusiness, http.StatusUnprocessableEntity, "Application is not eligible for assessment submission")
	CodeAlreadySubmitted   = ErrRegistry.Register("ALREADY_SUBMITTED", errx.TypeConflict, http.StatusConflict, "An assessment was already submitted for this application")
	CodeAlreadyGraded      = ErrRegistry.Register("ALREADY_GRADED", errx.TypeConflict, http.StatusConflict, "Assessment has already been graded")
	CodeInvalidSubmission  = ErrRegistry.Register("INVALID_SUBMISSION", errx.TypeValidation, http.StatusBadRequest, "Invalid assessment submission")
	CodeInvalidScore       = ErrRegistry.Register("INVALID_SCORE", errx.TypeValidation, http.StatusBadRequest, "Score must be between 0 and 100")
	CodeInvalidRequest     = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request")
)

// Helper functions
func ErrAssessmentNotFound() *errx.Error {
	return ErrRegistry.New(CodeAssessmentNotFound)
}

func ErrNotEligible() *errx.Error {
	return ErrRegistry.New(CodeNotEligible)
}

func ErrAlreadySubmitted() *errx.Error {
	return ErrRegistry.New(CodeAlreadySubmitted)
}

func ErrAlreadyGraded() *errx.Error {
	return ErrRegistry.New(CodeAlreadyGraded)
}

func ErrInvalidSubmission() *errx.Error {
	return ErrRegistry.New(CodeInvalidSubmission)
}

func ErrInvalidScore() *errx.Error {
	return ErrRegistry.New(CodeInvalidScore)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}
