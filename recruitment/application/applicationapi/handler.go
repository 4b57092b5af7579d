package applicationapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/auth"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application/applicationsrv"
)

// Handlers provides HTTP handlers for application operations
type Handlers struct {
	service *applicationsrv.ApplicationService
}

// NewHandlers creates a new application handlers instance
func NewHandlers(service *applicationsrv.ApplicationService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// SubmitApplication submits a new application
// POST /api/applications
func (h *Handlers) SubmitApplication(c *fiber.Ctx) error {
	// Parse request body
	var req application.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Submit application
	newApplication, err := h.service.Submit(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newApplication)
}

// GetApplicationByID retrieves an application by ID
// GET /api/applications/:id
func (h *Handlers) GetApplicationByID(c *fiber.Ctx) error {
	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	// Get application
	app, err := h.service.GetByID(c.Context(), applicationID)
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// ListApplications retrieves applications with pagination, optionally
// filtered by status
// GET /api/applications?status=SHORTLISTED
func (h *Handlers) ListApplications(c *fiber.Ctx) error {
	// Parse pagination options
	pagination := parsePaginationOptions(c)

	// Parse optional status filter
	var status *application.ApplicationStatus
	if raw := c.Query("status"); raw != "" {
		s := application.ApplicationStatus(raw)
		status = &s
	}

	// List applications
	applications, err := h.service.List(c.Context(), status, pagination)
	if err != nil {
		return err
	}

	return c.JSON(applications)
}

// ReviewApplication moves an application through a review transition
// PATCH /api/applications/:id/review
func (h *Handlers) ReviewApplication(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return application.ErrInsufficientPermissions()
	}

	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	// Parse request body
	var req application.ReviewApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Review application
	updated, err := h.service.Review(c.Context(), applicationID, req, authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// ShortlistApplication shortlists an application
// POST /api/applications/:id/shortlist
func (h *Handlers) ShortlistApplication(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return application.ErrInsufficientPermissions()
	}

	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	// Shortlist
	updated, err := h.service.Shortlist(c.Context(), applicationID, authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// AcceptApplication accepts an application directly and provisions the
// platform account. The temporary password in the response is shown once.
// POST /api/applications/:id/accept
func (h *Handlers) AcceptApplication(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return application.ErrInsufficientPermissions()
	}

	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	// Parse request body (optional role override)
	var req application.AcceptApplicationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
		}
	}

	// Accept and provision
	result, err := h.service.Accept(c.Context(), applicationID, req, authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// RejectApplication rejects an application
// POST /api/applications/:id/reject
func (h *Handlers) RejectApplication(c *fiber.Ctx) error {
	// Get auth context
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return application.ErrInsufficientPermissions()
	}

	// Parse application ID from URL
	applicationID := kernel.ApplicationID(c.Params("id"))
	if applicationID.IsEmpty() {
		return application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}

	// Parse request body
	var req application.RejectApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	// Reject
	updated, err := h.service.Reject(c.Context(), applicationID, req.Reason, authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// ============================================================================
// Helper Functions
// ============================================================================

// parsePaginationOptions extracts pagination options from query parameters
func parsePaginationOptions(c *fiber.Ctx) kernel.PaginationOptions {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	// Ensure valid values
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return kernel.PaginationOptions{
		Page:     page,
		PageSize: pageSize,
	}
}

// RegisterRoutes registers all application routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.Middleware) {
	api := app.Group("/api/applications")

	// Public route: applicants submit without an account
	api.Post("/", handlers.SubmitApplication)

	// Read routes (require authentication + read scope)
	api.Get("/",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsRead),
		handlers.ListApplications,
	)

	api.Get("/:id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsRead),
		handlers.GetApplicationByID,
	)

	// Review transitions (require review scope)
	api.Patch("/:id/review",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsReview),
		handlers.ReviewApplication,
	)

	api.Post("/:id/shortlist",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsReview),
		handlers.ShortlistApplication,
	)

	// Accept/Reject (require approve scope)
	api.Post("/:id/accept",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsApprove),
		handlers.AcceptApplication,
	)

	api.Post("/:id/reject",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsApprove),
		handlers.RejectApplication,
	)
}
