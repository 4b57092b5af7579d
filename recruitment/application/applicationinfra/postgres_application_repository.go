package applicationinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
)

// PostgresApplicationRepository implements application.Repository using PostgreSQL
type PostgresApplicationRepository struct {
	db *sqlx.DB
}

// NewPostgresApplicationRepository creates a new PostgreSQL application repository
func NewPostgresApplicationRepository(db *sqlx.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

// ============================================================================
// Database Models
// ============================================================================

type applicationModel struct {
	ID              string     `db:"id"`
	ApplicantID     string     `db:"applicant_id"`
	CohortID        string     `db:"cohort_id"`
	TrackID         string     `db:"track_id"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Email           string     `db:"email"`
	Phone           string     `db:"phone"`
	CVURL           string     `db:"cv_url"`
	Profile         string     `db:"profile"`
	Status          string     `db:"status"`
	ReviewedBy      *string    `db:"reviewed_by"`
	ReviewNotes     string     `db:"review_notes"`
	RejectionReason string     `db:"rejection_reason"`
	SubmittedAt     time.Time  `db:"submitted_at"`
	StatusChangedAt *time.Time `db:"status_changed_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *applicationModel) toEntity() *application.Application {
	var reviewedBy *kernel.UserID
	if m.ReviewedBy != nil {
		uid := kernel.UserID(*m.ReviewedBy)
		reviewedBy = &uid
	}

	return &application.Application{
		ID:              kernel.ApplicationID(m.ID),
		ApplicantID:     kernel.ApplicantID(m.ApplicantID),
		CohortID:        kernel.CohortID(m.CohortID),
		TrackID:         kernel.TrackID(m.TrackID),
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Email:           kernel.Email(m.Email),
		Phone:           m.Phone,
		CVURL:           kernel.BucketURL(m.CVURL),
		Profile:         m.Profile,
		Status:          application.ApplicationStatus(m.Status),
		ReviewedBy:      reviewedBy,
		ReviewNotes:     m.ReviewNotes,
		RejectionReason: m.RejectionReason,
		SubmittedAt:     m.SubmittedAt,
		StatusChangedAt: m.StatusChangedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(app *application.Application) *applicationModel {
	var reviewedBy *string
	if app.ReviewedBy != nil {
		rid := string(*app.ReviewedBy)
		reviewedBy = &rid
	}

	return &applicationModel{
		ID:              string(app.ID),
		ApplicantID:     string(app.ApplicantID),
		CohortID:        string(app.CohortID),
		TrackID:         string(app.TrackID),
		FirstName:       app.FirstName,
		LastName:        app.LastName,
		Email:           string(app.Email),
		Phone:           app.Phone,
		CVURL:           string(app.CVURL),
		Profile:         app.Profile,
		Status:          string(app.Status),
		ReviewedBy:      reviewedBy,
		ReviewNotes:     app.ReviewNotes,
		RejectionReason: app.RejectionReason,
		SubmittedAt:     app.SubmittedAt,
		StatusChangedAt: app.StatusChangedAt,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

func statusStrings(statuses []application.ApplicationStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

const applicationColumns = `
	id, applicant_id, cohort_id, track_id, first_name, last_name,
	email, phone, cv_url, profile, status, reviewed_by, review_notes,
	rejection_reason, submitted_at, status_changed_at, created_at, updated_at
`

// ============================================================================
// Repository Implementation
// ============================================================================

// Create creates a new application
func (r *PostgresApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	model := fromEntity(app)

	query := `
		INSERT INTO applications (
			id, applicant_id, cohort_id, track_id, first_name, last_name,
			email, phone, cv_url, profile, status, reviewed_by, review_notes,
			rejection_reason, submitted_at, status_changed_at, created_at, updated_at
		) VALUES (
			:id, :applicant_id, :cohort_id, :track_id, :first_name, :last_name,
			:email, :phone, :cv_url, :profile, :status, :reviewed_by, :review_notes,
			:rejection_reason, :submitted_at, :status_changed_at, :created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			// partial unique index on (applicant_id, cohort_id) over
			// non-terminal statuses backs the one-active invariant
			if pqErr.Code == "23505" {
				return application.ErrActiveApplicationExists()
			}
			if pqErr.Code == "23503" {
				return fmt.Errorf("invalid foreign key reference: %w", err)
			}
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by ID
func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	var model applicationModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, application.ErrApplicationNotFound()
		}
		return nil, fmt.Errorf("failed to get application by id: %w", err)
	}

	return model.toEntity(), nil
}

// List retrieves all applications with pagination
func (r *PostgresApplicationRepository) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM applications`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	offset := (pagination.Page - 1) * pagination.PageSize
	totalPages := (total + pagination.PageSize - 1) / pagination.PageSize

	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY submitted_at DESC
		LIMIT $1 OFFSET $2
	`

	var models []applicationModel
	err := r.db.SelectContext(ctx, &models, query, pagination.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	entities := make([]application.Application, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	return &kernel.Paginated[application.Application]{
		Items: entities,
		Page: kernel.Page{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
			Pages:  totalPages,
		},
		Empty: len(entities) == 0,
	}, nil
}

// ListByStatus retrieves applications in a given status
func (r *PostgresApplicationRepository) ListByStatus(ctx context.Context, status application.ApplicationStatus, pagination kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM applications WHERE status = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, string(status)); err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}

	offset := (pagination.Page - 1) * pagination.PageSize
	totalPages := (total + pagination.PageSize - 1) / pagination.PageSize

	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE status = $1
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3
	`

	var models []applicationModel
	err := r.db.SelectContext(ctx, &models, query, string(status), pagination.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by status: %w", err)
	}

	entities := make([]application.Application, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	return &kernel.Paginated[application.Application]{
		Items: entities,
		Page: kernel.Page{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
			Pages:  totalPages,
		},
		Empty: len(entities) == 0,
	}, nil
}

// ExistsActiveByApplicantAndCohort checks for a non-terminal application
// of the applicant in the cohort
func (r *PostgresApplicationRepository) ExistsActiveByApplicantAndCohort(ctx context.Context, applicantID kernel.ApplicantID, cohortID kernel.CohortID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE applicant_id = $1 AND cohort_id = $2 AND status = ANY($3)
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query,
		string(applicantID), string(cohortID),
		pq.Array(statusStrings(application.NonTerminalStatuses())))
	if err != nil {
		return false, fmt.Errorf("failed to check active application: %w", err)
	}

	return exists, nil
}

// TransitionStatus applies the status change only if the current status is
// still in from. The conditional UPDATE is the serialization point: of two
// concurrent transitions on one application, exactly one matches.
func (r *PostgresApplicationRepository) TransitionStatus(ctx context.Context, id kernel.ApplicationID, from []application.ApplicationStatus, change application.StatusChange) (*application.Application, error) {
	query := `
		UPDATE applications SET
			status = $1,
			reviewed_by = COALESCE($2, reviewed_by),
			review_notes = COALESCE($3, review_notes),
			rejection_reason = COALESCE($4, rejection_reason),
			status_changed_at = $5,
			updated_at = $5
		WHERE id = $6 AND status = ANY($7)
		RETURNING ` + applicationColumns

	var reviewedBy *string
	if change.ReviewedBy != nil {
		rid := string(*change.ReviewedBy)
		reviewedBy = &rid
	}

	var model applicationModel
	err := r.db.GetContext(ctx, &model, query,
		string(change.To), reviewedBy, change.ReviewNotes, change.RejectionReason,
		time.Now(), string(id), pq.Array(statusStrings(from)))
	if err == nil {
		return model.toEntity(), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to transition application status: %w", err)
	}

	// No row matched: distinguish missing, already-accepted and stale.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == application.ApplicationStatusAccepted && change.To == application.ApplicationStatusAccepted {
		return nil, application.ErrAlreadyAccepted()
	}
	return nil, application.ErrInvalidTransition().
		WithDetail("current_status", current.Status).
		WithDetail("new_status", change.To)
}
