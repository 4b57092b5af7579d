package cohort

import (
	"time"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// Cohort is a time-boxed program instance with enrollment capacity.
// CurrentStudents is maintained exclusively inside the acceptance
// transaction; nothing else writes it.
type Cohort struct {
	ID              kernel.CohortID `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	StartDate       time.Time       `db:"start_date" json:"start_date"`
	EndDate         time.Time       `db:"end_date" json:"end_date"`
	Capacity        int             `db:"capacity" json:"capacity"`
	CurrentStudents int             `db:"current_students" json:"current_students"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// HasCapacity reports whether the cohort can take another student.
func (c *Cohort) HasCapacity() bool {
	return c.CurrentStudents < c.Capacity
}

// IsOpen reports whether the cohort is still accepting applications.
func (c *Cohort) IsOpen(now time.Time) bool {
	return now.Before(c.EndDate)
}

// Track is a subject-matter curriculum line within a cohort.
type Track struct {
	ID        kernel.TrackID  `db:"id" json:"id"`
	CohortID  kernel.CohortID `db:"cohort_id" json:"cohort_id"`
	Name      string          `db:"name" json:"name"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
