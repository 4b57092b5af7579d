package provisioninginfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/cohort"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning"
)

// PostgresStore implements provisioning.Store using a single PostgreSQL
// transaction across applications, users and cohorts.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgreSQL provisioning store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AcceptApplication flips the application to ACCEPTED, creates the user
// and increments cohort enrollment atomically. The conditional UPDATE on
// status is the lock: of two concurrent accepts, exactly one matches a row.
func (s *PostgresStore) AcceptApplication(ctx context.Context, appID kernel.ApplicationID, cohortID kernel.CohortID, from []application.ApplicationStatus, newUser *user.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback()

	fromStrings := make([]string, 0, len(from))
	for _, st := range from {
		fromStrings = append(fromStrings, string(st))
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE applications SET
			status = $1,
			status_changed_at = $2,
			updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`, string(application.ApplicationStatusAccepted), now, string(appID), pq.Array(fromStrings))
	if err != nil {
		return fmt.Errorf("failed to accept application: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return s.classifyFailedFlip(ctx, appID)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO users (
			id, email, first_name, last_name, role, status,
			password_hash, is_password_default, created_at, updated_at
		) VALUES (
			:id, :email, :first_name, :last_name, :role, :status,
			:password_hash, :is_password_default, :created_at, :updated_at
		)
	`, newUser)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return provisioning.ErrAlreadyProvisioned().WithDetail("email", newUser.Email.String())
		}
		return fmt.Errorf("failed to create provisioned user: %w", err)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE cohorts SET
			current_students = current_students + 1,
			updated_at = $1
		WHERE id = $2 AND current_students < capacity
	`, now, string(cohortID))
	if err != nil {
		return fmt.Errorf("failed to increment cohort enrollment: %w", err)
	}

	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return cohort.ErrCohortFull().WithDetail("cohort_id", cohortID.String())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accept transaction: %w", err)
	}

	return nil
}

// classifyFailedFlip reads the row outside the transaction to explain a
// zero-row conditional update.
func (s *PostgresStore) classifyFailedFlip(ctx context.Context, appID kernel.ApplicationID) error {
	var status string
	err := s.db.GetContext(ctx, &status, `SELECT status FROM applications WHERE id = $1`, string(appID))
	if err != nil {
		if err == sql.ErrNoRows {
			return application.ErrApplicationNotFound().WithDetail("application_id", appID.String())
		}
		return fmt.Errorf("failed to inspect application status: %w", err)
	}
	if application.ApplicationStatus(status) == application.ApplicationStatusAccepted {
		return application.ErrAlreadyAccepted().WithDetail("application_id", appID.String())
	}
	return application.ErrInvalidTransition().
		WithDetail("current_status", status).
		WithDetail("new_status", application.ApplicationStatusAccepted)
}
