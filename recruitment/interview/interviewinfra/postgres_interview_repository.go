package interviewinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview"
)

// PostgresInterviewRepository implements interview.InterviewRepository
// using PostgreSQL
type PostgresInterviewRepository struct {
	db *sqlx.DB
}

// NewPostgresInterviewRepository creates a new PostgreSQL interview repository
func NewPostgresInterviewRepository(db *sqlx.DB) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{db: db}
}

type interviewModel struct {
	ID            string     `db:"id"`
	ApplicationID string     `db:"application_id"`
	SlotID        string     `db:"slot_id"`
	Status        string     `db:"status"`
	Result        *string    `db:"result"`
	Feedback      string     `db:"feedback"`
	Rating        *int       `db:"rating"`
	CancelReason  string     `db:"cancel_reason"`
	ScheduledAt   time.Time  `db:"scheduled_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	CancelledAt   *time.Time `db:"cancelled_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *interviewModel) toEntity() *interview.Interview {
	var result *interview.InterviewResult
	if m.Result != nil {
		r := interview.InterviewResult(*m.Result)
		result = &r
	}

	return &interview.Interview{
		ID:            kernel.InterviewID(m.ID),
		ApplicationID: kernel.ApplicationID(m.ApplicationID),
		SlotID:        kernel.SlotID(m.SlotID),
		Status:        interview.InterviewStatus(m.Status),
		Result:        result,
		Feedback:      m.Feedback,
		Rating:        m.Rating,
		CancelReason:  m.CancelReason,
		ScheduledAt:   m.ScheduledAt,
		CompletedAt:   m.CompletedAt,
		CancelledAt:   m.CancelledAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

const interviewColumns = `
	id, application_id, slot_id, status, result, feedback, rating,
	cancel_reason, scheduled_at, completed_at, cancelled_at,
	created_at, updated_at
`

// GetByID retrieves an interview by ID
func (r *PostgresInterviewRepository) GetByID(ctx context.Context, id kernel.InterviewID) (*interview.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	var model interviewModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interview.ErrInterviewNotFound()
		}
		return nil, fmt.Errorf("failed to get interview by id: %w", err)
	}

	return model.toEntity(), nil
}

// GetActiveByApplicationID retrieves the application's scheduled interview
func (r *PostgresInterviewRepository) GetActiveByApplicationID(ctx context.Context, applicationID kernel.ApplicationID) (*interview.Interview, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE application_id = $1 AND status = $2
	`

	var model interviewModel
	err := r.db.GetContext(ctx, &model, query, string(applicationID), string(interview.InterviewStatusScheduled))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interview.ErrInterviewNotFound().
				WithDetail("application_id", applicationID.String())
		}
		return nil, fmt.Errorf("failed to get active interview: %w", err)
	}

	return model.toEntity(), nil
}

// ListBySlot retrieves all interviews booked into a slot
func (r *PostgresInterviewRepository) ListBySlot(ctx context.Context, slotID kernel.SlotID) ([]interview.Interview, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE slot_id = $1
		ORDER BY scheduled_at ASC
	`

	var models []interviewModel
	err := r.db.SelectContext(ctx, &models, query, string(slotID))
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews by slot: %w", err)
	}

	interviews := make([]interview.Interview, 0, len(models))
	for _, model := range models {
		interviews = append(interviews, *model.toEntity())
	}

	return interviews, nil
}
