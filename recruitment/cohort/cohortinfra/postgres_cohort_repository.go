package cohortinfra

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/cohort"
)

// PostgresCohortRepository implements cohort.Repository using PostgreSQL
type PostgresCohortRepository struct {
	db *sqlx.DB
}

// NewPostgresCohortRepository creates a new PostgreSQL cohort repository
func NewPostgresCohortRepository(db *sqlx.DB) *PostgresCohortRepository {
	return &PostgresCohortRepository{db: db}
}

// GetCohort retrieves a cohort by ID
func (r *PostgresCohortRepository) GetCohort(ctx context.Context, id kernel.CohortID) (*cohort.Cohort, error) {
	query := `
		SELECT id, name, start_date, end_date, capacity, current_students,
		       created_at, updated_at
		FROM cohorts
		WHERE id = $1
	`

	var c cohort.Cohort
	err := r.db.GetContext(ctx, &c, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cohort.ErrCohortNotFound()
		}
		return nil, fmt.Errorf("failed to get cohort by id: %w", err)
	}

	return &c, nil
}

// GetTrack retrieves a track by ID
func (r *PostgresCohortRepository) GetTrack(ctx context.Context, id kernel.TrackID) (*cohort.Track, error) {
	query := `
		SELECT id, cohort_id, name, created_at
		FROM tracks
		WHERE id = $1
	`

	var t cohort.Track
	err := r.db.GetContext(ctx, &t, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cohort.ErrTrackNotFound()
		}
		return nil, fmt.Errorf("failed to get track by id: %w", err)
	}

	return &t, nil
}

// TrackBelongsToCohort checks that a track is part of the cohort
func (r *PostgresCohortRepository) TrackBelongsToCohort(ctx context.Context, trackID kernel.TrackID, cohortID kernel.CohortID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tracks WHERE id = $1 AND cohort_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, string(trackID), string(cohortID))
	if err != nil {
		return false, fmt.Errorf("failed to check track membership: %w", err)
	}

	return exists, nil
}
