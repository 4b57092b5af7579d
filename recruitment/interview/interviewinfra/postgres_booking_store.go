package interviewinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview"
)

// PostgresBookingStore implements interview.BookingStore using a single
// PostgreSQL transaction across interview_slots, interviews and
// applications.
type PostgresBookingStore struct {
	db *sqlx.DB
}

// NewPostgresBookingStore creates a new PostgreSQL booking store
func NewPostgresBookingStore(db *sqlx.DB) *PostgresBookingStore {
	return &PostgresBookingStore{db: db}
}

// Book claims slot capacity, inserts the interview and flips the
// application, atomically. The test-and-increment on booked_count is the
// lock: of N concurrent bookings on the last seat, exactly one matches.
func (s *PostgresBookingStore) Book(ctx context.Context, i *interview.Interview, from []application.ApplicationStatus) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE interview_slots SET
			booked_count = booked_count + 1,
			updated_at = $1
		WHERE id = $2 AND is_available AND booked_count < max_interviews
	`, now, string(i.SlotID))
	if err != nil {
		return fmt.Errorf("failed to claim slot capacity: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return s.classifyFailedClaim(ctx, i.SlotID)
	}

	// partial unique index on application_id over SCHEDULED interviews
	// backs the one-active-booking invariant
	_, err = tx.ExecContext(ctx, `
		INSERT INTO interviews (
			id, application_id, slot_id, status, feedback, cancel_reason,
			scheduled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, '', '', $5, $6, $6)
	`, string(i.ID), string(i.ApplicationID), string(i.SlotID),
		string(interview.InterviewStatusScheduled), i.ScheduledAt, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return interview.ErrAlreadyBooked().
				WithDetail("application_id", i.ApplicationID.String())
		}
		return fmt.Errorf("failed to create interview: %w", err)
	}

	fromStrings := make([]string, 0, len(from))
	for _, st := range from {
		fromStrings = append(fromStrings, string(st))
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE applications SET
			status = $1,
			status_changed_at = $2,
			updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`, string(application.ApplicationStatusInterviewScheduled), now,
		string(i.ApplicationID), pq.Array(fromStrings))
	if err != nil {
		return fmt.Errorf("failed to flip application status: %w", err)
	}

	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return s.classifyFailedFlip(ctx, i.ApplicationID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

// Cancel marks the interview CANCELLED, releases its slot seat and
// returns the application to SHORTLISTED so it can book again, all in
// one transaction. An application that already left INTERVIEW_SCHEDULED
// is left alone.
func (s *PostgresBookingStore) Cancel(ctx context.Context, id kernel.InterviewID, reason string) (*interview.Interview, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var model interviewModel
	err = tx.GetContext(ctx, &model, `
		UPDATE interviews SET
			status = $1,
			cancel_reason = $2,
			cancelled_at = $3,
			updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+interviewColumns,
		string(interview.InterviewStatusCancelled), reason, now,
		string(id), string(interview.InterviewStatusScheduled))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.classifyFinishedInterview(ctx, id)
		}
		return nil, fmt.Errorf("failed to cancel interview: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE interview_slots SET
			booked_count = GREATEST(booked_count - 1, 0),
			updated_at = $1
		WHERE id = $2
	`, now, model.SlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to release slot capacity: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE applications SET
			status = $1,
			status_changed_at = $2,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`, string(application.ApplicationStatusShortlisted), now,
		model.ApplicationID, string(application.ApplicationStatusInterviewScheduled))
	if err != nil {
		return nil, fmt.Errorf("failed to release application status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancel transaction: %w", err)
	}

	return model.toEntity(), nil
}

// Complete records the interview outcome, only while SCHEDULED
func (s *PostgresBookingStore) Complete(ctx context.Context, id kernel.InterviewID, result interview.InterviewResult, feedback string, rating *int) (*interview.Interview, error) {
	var model interviewModel
	err := s.db.GetContext(ctx, &model, `
		UPDATE interviews SET
			status = $1,
			result = $2,
			feedback = $3,
			rating = $4,
			completed_at = $5,
			updated_at = $5
		WHERE id = $6 AND status = $7
		RETURNING `+interviewColumns,
		string(interview.InterviewStatusCompleted), string(result), feedback,
		rating, time.Now(), string(id), string(interview.InterviewStatusScheduled))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.classifyFinishedInterview(ctx, id)
		}
		return nil, fmt.Errorf("failed to complete interview: %w", err)
	}

	return model.toEntity(), nil
}

// classifyFailedClaim explains a zero-row capacity claim.
func (s *PostgresBookingStore) classifyFailedClaim(ctx context.Context, slotID kernel.SlotID) error {
	var slot struct {
		IsAvailable bool `db:"is_available"`
		BookedCount int  `db:"booked_count"`
		Max         int  `db:"max_interviews"`
	}
	err := s.db.GetContext(ctx, &slot, `
		SELECT is_available, booked_count, max_interviews FROM interview_slots WHERE id = $1
	`, string(slotID))
	if err != nil {
		if err == sql.ErrNoRows {
			return interview.ErrSlotNotFound().WithDetail("slot_id", slotID.String())
		}
		return fmt.Errorf("failed to inspect slot: %w", err)
	}
	if !slot.IsAvailable {
		return interview.ErrSlotUnavailable().WithDetail("slot_id", slotID.String())
	}
	return interview.ErrSlotFull().
		WithDetail("slot_id", slotID.String()).
		WithDetail("max_interviews", slot.Max)
}

// classifyFailedFlip explains a zero-row status flip during booking.
func (s *PostgresBookingStore) classifyFailedFlip(ctx context.Context, applicationID kernel.ApplicationID) error {
	var status string
	err := s.db.GetContext(ctx, &status, `SELECT status FROM applications WHERE id = $1`, string(applicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return application.ErrApplicationNotFound().
				WithDetail("application_id", applicationID.String())
		}
		return fmt.Errorf("failed to inspect application status: %w", err)
	}
	if application.ApplicationStatus(status) == application.ApplicationStatusInterviewScheduled {
		return interview.ErrAlreadyBooked().
			WithDetail("application_id", applicationID.String())
	}
	return interview.ErrNotEligible().
		WithDetail("application_id", applicationID.String()).
		WithDetail("current_status", status)
}

// classifyFinishedInterview explains a zero-row conditional update on a
// SCHEDULED interview.
func (s *PostgresBookingStore) classifyFinishedInterview(ctx context.Context, id kernel.InterviewID) error {
	var status string
	err := s.db.GetContext(ctx, &status, `SELECT status FROM interviews WHERE id = $1`, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return interview.ErrInterviewNotFound().WithDetail("interview_id", id.String())
		}
		return fmt.Errorf("failed to inspect interview status: %w", err)
	}
	return interview.ErrAlreadyCompleted().
		WithDetail("interview_id", id.String()).
		WithDetail("current_status", status)
}
