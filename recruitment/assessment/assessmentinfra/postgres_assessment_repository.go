package assessmentinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment"
)

// PostgresAssessmentRepository implements assessment.Repository using PostgreSQL
type PostgresAssessmentRepository struct {
	db *sqlx.DB
}

// NewPostgresAssessmentRepository creates a new PostgreSQL assessment repository
func NewPostgresAssessmentRepository(db *sqlx.DB) *PostgresAssessmentRepository {
	return &PostgresAssessmentRepository{db: db}
}

// ============================================================================
// Database Models
// ============================================================================

type assessmentModel struct {
	ID             string     `db:"id"`
	ApplicationID  string     `db:"application_id"`
	SubmissionType string     `db:"submission_type"`
	FileURL        string     `db:"file_url"`
	SubmissionURL  string     `db:"submission_url"`
	Notes          string     `db:"notes"`
	Status         string     `db:"status"`
	Score          *int       `db:"score"`
	Feedback       string     `db:"feedback"`
	GradedBy       *string    `db:"graded_by"`
	SubmittedAt    time.Time  `db:"submitted_at"`
	GradedAt       *time.Time `db:"graded_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *assessmentModel) toEntity() *assessment.Assessment {
	var gradedBy *kernel.UserID
	if m.GradedBy != nil {
		uid := kernel.UserID(*m.GradedBy)
		gradedBy = &uid
	}

	return &assessment.Assessment{
		ID:             kernel.AssessmentID(m.ID),
		ApplicationID:  kernel.ApplicationID(m.ApplicationID),
		SubmissionType: assessment.SubmissionType(m.SubmissionType),
		FileURL:        kernel.BucketURL(m.FileURL),
		SubmissionURL:  m.SubmissionURL,
		Notes:          m.Notes,
		Status:         assessment.AssessmentStatus(m.Status),
		Score:          m.Score,
		Feedback:       m.Feedback,
		GradedBy:       gradedBy,
		SubmittedAt:    m.SubmittedAt,
		GradedAt:       m.GradedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(a *assessment.Assessment) *assessmentModel {
	var gradedBy *string
	if a.GradedBy != nil {
		uid := string(*a.GradedBy)
		gradedBy = &uid
	}

	return &assessmentModel{
		ID:             string(a.ID),
		ApplicationID:  string(a.ApplicationID),
		SubmissionType: string(a.SubmissionType),
		FileURL:        string(a.FileURL),
		SubmissionURL:  a.SubmissionURL,
		Notes:          a.Notes,
		Status:         string(a.Status),
		Score:          a.Score,
		Feedback:       a.Feedback,
		GradedBy:       gradedBy,
		SubmittedAt:    a.SubmittedAt,
		GradedAt:       a.GradedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

const assessmentColumns = `
	id, application_id, submission_type, file_url, submission_url, notes,
	status, score, feedback, graded_by, submitted_at, graded_at,
	created_at, updated_at
`

// ============================================================================
// Repository Implementation
// ============================================================================

// Submit inserts the assessment and flips its application from SHORTLISTED
// to ASSESSMENT_SUBMITTED in one transaction. The conditional flip and the
// unique index on application_id close both race windows: a concurrent
// transition and a concurrent duplicate submission.
func (r *PostgresAssessmentRepository) Submit(ctx context.Context, a *assessment.Assessment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin submit transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE applications SET
			status = $1,
			status_changed_at = $2,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`, string(application.ApplicationStatusAssessmentSubmitted), now,
		string(a.ApplicationID), string(application.ApplicationStatusShortlisted))
	if err != nil {
		return fmt.Errorf("failed to flip application status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return r.classifyFailedFlip(ctx, a.ApplicationID)
	}

	model := fromEntity(a)
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO assessments (
			id, application_id, submission_type, file_url, submission_url, notes,
			status, score, feedback, graded_by, submitted_at, graded_at,
			created_at, updated_at
		) VALUES (
			:id, :application_id, :submission_type, :file_url, :submission_url, :notes,
			:status, :score, :feedback, :graded_by, :submitted_at, :graded_at,
			:created_at, :updated_at
		)
	`, model)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return assessment.ErrAlreadySubmitted().
				WithDetail("application_id", a.ApplicationID.String())
		}
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an assessment by ID
func (r *PostgresAssessmentRepository) GetByID(ctx context.Context, id kernel.AssessmentID) (*assessment.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`

	var model assessmentModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, assessment.ErrAssessmentNotFound()
		}
		return nil, fmt.Errorf("failed to get assessment by id: %w", err)
	}

	return model.toEntity(), nil
}

// GetByApplicationID retrieves the assessment submitted for an application
func (r *PostgresAssessmentRepository) GetByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (*assessment.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE application_id = $1`

	var model assessmentModel
	err := r.db.GetContext(ctx, &model, query, string(applicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, assessment.ErrAssessmentNotFound().
				WithDetail("application_id", applicationID.String())
		}
		return nil, fmt.Errorf("failed to get assessment by application id: %w", err)
	}

	return model.toEntity(), nil
}

// ExistsByApplicationID checks for an existing submission
func (r *PostgresAssessmentRepository) ExistsByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assessments WHERE application_id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, string(applicationID))
	if err != nil {
		return false, fmt.Errorf("failed to check assessment existence: %w", err)
	}

	return exists, nil
}

// Grade records score and feedback, only while the assessment is SUBMITTED
func (r *PostgresAssessmentRepository) Grade(ctx context.Context, id kernel.AssessmentID, score int, feedback string, gradedBy kernel.UserID) (*assessment.Assessment, error) {
	query := `
		UPDATE assessments SET
			status = $1,
			score = $2,
			feedback = $3,
			graded_by = $4,
			graded_at = $5,
			updated_at = $5
		WHERE id = $6 AND status = $7
		RETURNING ` + assessmentColumns

	var model assessmentModel
	err := r.db.GetContext(ctx, &model, query,
		string(assessment.AssessmentStatusGraded), score, feedback,
		string(gradedBy), time.Now(), string(id),
		string(assessment.AssessmentStatusSubmitted))
	if err == nil {
		return model.toEntity(), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to grade assessment: %w", err)
	}

	// No row matched: distinguish missing from already graded.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.IsGraded() {
		return nil, assessment.ErrAlreadyGraded().WithDetail("assessment_id", id.String())
	}
	return nil, fmt.Errorf("failed to grade assessment %s in status %s", id, existing.Status)
}

// classifyFailedFlip explains a zero-row conditional update on the
// application.
func (r *PostgresAssessmentRepository) classifyFailedFlip(ctx context.Context, applicationID kernel.ApplicationID) error {
	var status string
	err := r.db.GetContext(ctx, &status, `SELECT status FROM applications WHERE id = $1`, string(applicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return application.ErrApplicationNotFound().
				WithDetail("application_id", applicationID.String())
		}
		return fmt.Errorf("failed to inspect application status: %w", err)
	}
	if application.ApplicationStatus(status) == application.ApplicationStatusAssessmentSubmitted {
		return assessment.ErrAlreadySubmitted().
			WithDetail("application_id", applicationID.String())
	}
	return assessment.ErrNotEligible().
		WithDetail("application_id", applicationID.String()).
		WithDetail("current_status", status)
}
