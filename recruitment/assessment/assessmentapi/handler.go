package assessmentapi

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/auth"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment/assessmentsrv"
)

// Handlers provides HTTP handlers for assessment operations
type Handlers struct {
	service *assessmentsrv.AssessmentService
}

// NewHandlers creates a new assessment handlers instance
func NewHandlers(service *assessmentsrv.AssessmentService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CheckEligibility reports whether an application may submit an assessment
// GET /api/applications/:id/assessment-eligibility
func (h *Handlers) CheckEligibility(c *fiber.Ctx) error {
	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return assessment.ErrInvalidRequest().WithDetail("application_id", "missing or empty")
	}

	// Check eligibility
	eligibility, err := h.service.CheckEligibility(c.Context(), applicationID)
	if err != nil {
		return err
	}

	return c.JSON(eligibility)
}

// SubmitAssessment submits an assessment. URL submissions post JSON; FILE
// submissions post multipart with the metadata as form fields.
// POST /api/assessments
func (h *Handlers) SubmitAssessment(c *fiber.Ctx) error {
	var (
		req      assessment.SubmitAssessmentRequest
		fileData []byte
		filename string
	)

	if file, err := c.FormFile("file"); err == nil {
		req.ApplicationID = kernel.ApplicationID(c.FormValue("application_id"))
		req.SubmissionType = assessment.SubmissionTypeFile
		req.Notes = c.FormValue("notes")

		fileContent, err := file.Open()
		if err != nil {
			return assessment.ErrInvalidSubmission().WithDetail("file_open_error", err.Error())
		}
		defer fileContent.Close()

		fileData, err = io.ReadAll(fileContent)
		if err != nil {
			return assessment.ErrInvalidSubmission().WithDetail("file_read_error", err.Error())
		}
		filename = file.Filename
	} else {
		if err := c.BodyParser(&req); err != nil {
			return assessment.ErrInvalidRequest().WithDetail("parse_error", err.Error())
		}
	}

	// Submit assessment
	submitted, err := h.service.Submit(c.Context(), req, fileData, filename)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(submitted)
}

// GetAssessmentByApplication retrieves the assessment for an application
// GET /api/applications/:id/assessment
func (h *Handlers) GetAssessmentByApplication(c *fiber.Ctx) error {
	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return assessment.ErrInvalidRequest().WithDetail("application_id", "missing or empty")
	}

	// Get assessment
	a, err := h.service.GetByApplicationID(c.Context(), applicationID)
	if err != nil {
		return err
	}

	return c.JSON(a)
}

// GradeAssessment grades a submitted assessment
// POST /api/assessments/:id/grade
func (h *Handlers) GradeAssessment(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return assessment.ErrInvalidRequest().WithDetail("auth", "missing auth context")
	}

	// Parse assessment ID from URL
	assessmentID := kernel.AssessmentID(c.Params("id"))
	if assessmentID.IsEmpty() {
		return assessment.ErrAssessmentNotFound().WithDetail("id", "missing or empty")
	}

	// Parse request body
	var req assessment.GradeAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return assessment.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Grade
	graded, err := h.service.Grade(c.Context(), assessmentID, req, authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(graded)
}

// DownloadSubmission downloads the stored file of a FILE submission
// GET /api/assessments/:id/file
func (h *Handlers) DownloadSubmission(c *fiber.Ctx) error {
	// Parse assessment ID from URL
	assessmentID := kernel.AssessmentID(c.Params("id"))
	if assessmentID.IsEmpty() {
		return assessment.ErrAssessmentNotFound().WithDetail("id", "missing or empty")
	}

	// Download submission
	stream, filename, err := h.service.DownloadSubmission(c.Context(), assessmentID)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Set headers for file download
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Set("Content-Type", "application/octet-stream")

	// Stream file to response
	return c.SendStream(stream)
}

// RegisterRoutes registers all assessment routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.Middleware) {
	// Applicant-facing routes: eligibility check and submission happen
	// before the applicant has an account.
	app.Get("/api/applications/:id/assessment-eligibility", handlers.CheckEligibility)
	app.Post("/api/assessments", handlers.SubmitAssessment)

	// Staff routes
	app.Get("/api/applications/:id/assessment",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeAssessmentsRead),
		handlers.GetAssessmentByApplication,
	)

	app.Get("/api/assessments/:id/file",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeAssessmentsRead),
		handlers.DownloadSubmission,
	)

	app.Post("/api/assessments/:id/grade",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeAssessmentsGrade),
		handlers.GradeAssessment,
	)
}
