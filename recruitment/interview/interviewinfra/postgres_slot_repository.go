package interviewinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview"
)

// PostgresSlotRepository implements interview.SlotRepository using PostgreSQL
type PostgresSlotRepository struct {
	db *sqlx.DB
}

// NewPostgresSlotRepository creates a new PostgreSQL slot repository
func NewPostgresSlotRepository(db *sqlx.DB) *PostgresSlotRepository {
	return &PostgresSlotRepository{db: db}
}

// ============================================================================
// Database Models
// ============================================================================

type slotModel struct {
	ID            string         `db:"id"`
	Date          time.Time      `db:"date"`
	StartTime     time.Time      `db:"start_time"`
	EndTime       time.Time      `db:"end_time"`
	Tracks        pq.StringArray `db:"tracks"`
	MaxInterviews int            `db:"max_interviews"`
	BookedCount   int            `db:"booked_count"`
	IsAvailable   bool           `db:"is_available"`
	MeetingLink   string         `db:"meeting_link"`
	CreatedBy     string         `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *slotModel) toEntity() *interview.InterviewSlot {
	tracks := make([]kernel.TrackID, 0, len(m.Tracks))
	for _, t := range m.Tracks {
		tracks = append(tracks, kernel.TrackID(t))
	}

	return &interview.InterviewSlot{
		ID:            kernel.SlotID(m.ID),
		Date:          m.Date,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Tracks:        tracks,
		MaxInterviews: m.MaxInterviews,
		BookedCount:   m.BookedCount,
		IsAvailable:   m.IsAvailable,
		MeetingLink:   kernel.MeetingLink(m.MeetingLink),
		CreatedBy:     kernel.UserID(m.CreatedBy),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// fromSlotEntity converts domain entity to database model
func fromSlotEntity(s *interview.InterviewSlot) *slotModel {
	tracks := make(pq.StringArray, 0, len(s.Tracks))
	for _, t := range s.Tracks {
		tracks = append(tracks, string(t))
	}

	return &slotModel{
		ID:            string(s.ID),
		Date:          s.Date,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Tracks:        tracks,
		MaxInterviews: s.MaxInterviews,
		BookedCount:   s.BookedCount,
		IsAvailable:   s.IsAvailable,
		MeetingLink:   string(s.MeetingLink),
		CreatedBy:     string(s.CreatedBy),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

const slotColumns = `
	id, date, start_time, end_time, tracks, max_interviews, booked_count,
	is_available, meeting_link, created_by, created_at, updated_at
`

// ============================================================================
// Repository Implementation
// ============================================================================

// CreateSlots inserts a batch of generated slots in one transaction
func (r *PostgresSlotRepository) CreateSlots(ctx context.Context, slots []*interview.InterviewSlot) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin slot creation transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO interview_slots (
			id, date, start_time, end_time, tracks, max_interviews, booked_count,
			is_available, meeting_link, created_by, created_at, updated_at
		) VALUES (
			:id, :date, :start_time, :end_time, :tracks, :max_interviews, :booked_count,
			:is_available, :meeting_link, :created_by, :created_at, :updated_at
		)
	`

	for _, slot := range slots {
		if _, err := tx.NamedExecContext(ctx, query, fromSlotEntity(slot)); err != nil {
			return fmt.Errorf("failed to create interview slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot creation transaction: %w", err)
	}

	return nil
}

// GetSlotByID retrieves a slot by ID
func (r *PostgresSlotRepository) GetSlotByID(ctx context.Context, id kernel.SlotID) (*interview.InterviewSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM interview_slots WHERE id = $1`

	var model slotModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interview.ErrSlotNotFound()
		}
		return nil, fmt.Errorf("failed to get slot by id: %w", err)
	}

	return model.toEntity(), nil
}

// ListAvailable returns bookable slots at or after from, open to the
// track, chronological. An empty tracks array means no restriction.
func (r *PostgresSlotRepository) ListAvailable(ctx context.Context, from time.Time, trackID kernel.TrackID) ([]interview.InterviewSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM interview_slots
		WHERE is_available
		  AND booked_count < max_interviews
		  AND start_time >= $1
		  AND (cardinality(tracks) = 0 OR $2 = ANY(tracks))
		ORDER BY start_time ASC
	`

	var models []slotModel
	err := r.db.SelectContext(ctx, &models, query, from, string(trackID))
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}

	slots := make([]interview.InterviewSlot, 0, len(models))
	for _, model := range models {
		slots = append(slots, *model.toEntity())
	}

	return slots, nil
}

// SetAvailability toggles a slot's availability
func (r *PostgresSlotRepository) SetAvailability(ctx context.Context, id kernel.SlotID, available bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE interview_slots SET is_available = $1, updated_at = $2 WHERE id = $3
	`, available, time.Now(), string(id))
	if err != nil {
		return fmt.Errorf("failed to set slot availability: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return interview.ErrSlotNotFound().WithDetail("slot_id", id.String())
	}

	return nil
}

// DeleteSlot removes a slot with no bookings. The booked_count guard in
// the DELETE makes the check and the removal one statement.
func (r *PostgresSlotRepository) DeleteSlot(ctx context.Context, id kernel.SlotID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM interview_slots WHERE id = $1 AND booked_count = 0
	`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// No row matched: distinguish missing from booked.
	var bookedCount int
	err = r.db.GetContext(ctx, &bookedCount, `SELECT booked_count FROM interview_slots WHERE id = $1`, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return interview.ErrSlotNotFound().WithDetail("slot_id", id.String())
		}
		return fmt.Errorf("failed to inspect slot: %w", err)
	}

	return interview.ErrSlotHasBookings().
		WithDetail("slot_id", id.String()).
		WithDetail("booked_count", bookedCount)
}
