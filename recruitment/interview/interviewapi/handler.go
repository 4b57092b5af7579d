package interviewapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/auth"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview/interviewsrv"
)

// Handlers provides HTTP handlers for slot and interview operations
type Handlers struct {
	service *interviewsrv.InterviewService
}

// NewHandlers creates a new interview handlers instance
func NewHandlers(service *interviewsrv.InterviewService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateSlots creates interview slots in bulk or manual mode
// POST /api/interview-slots
func (h *Handlers) CreateSlots(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return interview.ErrInvalidRequest().WithDetail("auth", "missing auth context")
	}

	// Parse request body
	var req interview.CreateSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Create slots
	slots, err := h.service.CreateSlots(c.Context(), req, authContext.UserID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created": len(slots),
		"slots":   slots,
	})
}

// ListAvailableSlots lists bookable slots for an application, grouped by
// date
// GET /api/interview-slots/available?application_id=
func (h *Handlers) ListAvailableSlots(c *fiber.Ctx) error {
	// Parse application ID from query
	applicationID := kernel.ApplicationID(c.Query("application_id"))
	if applicationID.IsEmpty() {
		return interview.ErrInvalidRequest().WithDetail("application_id", "missing or empty")
	}

	// List available slots
	available, err := h.service.ListAvailable(c.Context(), applicationID)
	if err != nil {
		return err
	}

	return c.JSON(available)
}

// GetSlot retrieves a slot by ID
// GET /api/interview-slots/:id
func (h *Handlers) GetSlot(c *fiber.Ctx) error {
	// Parse slot ID from URL
	slotID := kernel.SlotID(c.Params("id"))
	if slotID.IsEmpty() {
		return interview.ErrSlotNotFound().WithDetail("id", "missing or empty")
	}

	// Get slot
	slot, err := h.service.GetSlot(c.Context(), slotID)
	if err != nil {
		return err
	}

	return c.JSON(slot)
}

// DeleteSlot removes an unbooked slot; a booked slot is deactivated
// DELETE /api/interview-slots/:id
func (h *Handlers) DeleteSlot(c *fiber.Ctx) error {
	// Parse slot ID from URL
	slotID := kernel.SlotID(c.Params("id"))
	if slotID.IsEmpty() {
		return interview.ErrSlotNotFound().WithDetail("id", "missing or empty")
	}

	// Delete or deactivate
	deleted, err := h.service.DeleteSlot(c.Context(), slotID)
	if err != nil {
		return err
	}

	if deleted {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Slot has bookings and was deactivated instead of deleted",
	})
}

// BookInterview books an application into a slot
// POST /api/interviews
func (h *Handlers) BookInterview(c *fiber.Ctx) error {
	// Parse request body
	var req interview.BookInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Book interview
	booked, err := h.service.Book(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(booked)
}

// GetInterview retrieves an interview by ID
// GET /api/interviews/:id
func (h *Handlers) GetInterview(c *fiber.Ctx) error {
	// Parse interview ID from URL
	interviewID := kernel.InterviewID(c.Params("id"))
	if interviewID.IsEmpty() {
		return interview.ErrInterviewNotFound().WithDetail("id", "missing or empty")
	}

	// Get interview
	i, err := h.service.GetInterview(c.Context(), interviewID)
	if err != nil {
		return err
	}

	return c.JSON(i)
}

// CancelInterview cancels a scheduled interview
// POST /api/interviews/:id/cancel
func (h *Handlers) CancelInterview(c *fiber.Ctx) error {
	// Parse interview ID from URL
	interviewID := kernel.InterviewID(c.Params("id"))
	if interviewID.IsEmpty() {
		return interview.ErrInterviewNotFound().WithDetail("id", "missing or empty")
	}

	// Parse request body
	var req interview.CancelInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Cancel
	cancelled, err := h.service.Cancel(c.Context(), interviewID, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(cancelled)
}

// CompleteInterview records the interview outcome
// POST /api/interviews/:id/complete
func (h *Handlers) CompleteInterview(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return interview.ErrInvalidRequest().WithDetail("auth", "missing auth context")
	}

	// Parse interview ID from URL
	interviewID := kernel.InterviewID(c.Params("id"))
	if interviewID.IsEmpty() {
		return interview.ErrInterviewNotFound().WithDetail("id", "missing or empty")
	}

	// Parse request body
	var req interview.CompleteInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return interview.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Complete
	result, err := h.service.Complete(c.Context(), interviewID, req, authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// RegisterRoutes registers all slot and interview routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.Middleware) {
	slots := app.Group("/api/interview-slots")

	// Applicant-facing: browse available slots
	slots.Get("/available", handlers.ListAvailableSlots)

	slots.Post("/",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeSlotsWrite),
		handlers.CreateSlots,
	)

	slots.Get("/:id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeSlotsRead),
		handlers.GetSlot,
	)

	slots.Delete("/:id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeSlotsDelete),
		handlers.DeleteSlot,
	)

	interviews := app.Group("/api/interviews")

	// Applicant-facing: book a slot
	interviews.Post("/", handlers.BookInterview)

	interviews.Get("/:id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsRead),
		handlers.GetInterview,
	)

	interviews.Post("/:id/cancel",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsSchedule),
		handlers.CancelInterview,
	)

	interviews.Post("/:id/complete",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeInterviewsConduct),
		handlers.CompleteInterview,
	)
}
