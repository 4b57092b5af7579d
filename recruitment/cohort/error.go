package cohort

import (
	"net/http"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("COHORT")

// Error codes
var (
	CodeCohortNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Cohort not found")
	CodeTrackNotFound  = ErrRegistry.Register("TRACK_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Track not found")
	CodeCohortFull     = ErrRegistry.Register("FULL", errx.TypeConflict, http.StatusConflict, "Cohort has reached its enrollment capacity")
	CodeCohortClosed   = ErrRegistry.Register("CLOSED", errx.TypeBusiness, http.StatusForbidden, "Cohort is no longer accepting applications")
)

// Helper functions
func ErrCohortNotFound() *errx.Error {
	return ErrRegistry.New(CodeCohortNotFound)
}

func ErrTrackNotFound() *errx.Error {
	return ErrRegistry.New(CodeTrackNotFound)
}

func ErrCohortFull() *errx.Error {
	return ErrRegistry.New(CodeCohortFull)
}

func ErrCohortClosed() *errx.Error {
	return ErrRegistry.New(CodeCohortClosed)
}
