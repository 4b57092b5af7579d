package cohort

import (
	"context"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

type Repository interface {
	// GetCohort retrieves a cohort by ID
	GetCohort(ctx context.Context, id kernel.CohortID) (*Cohort, error)

	// GetTrack retrieves a track by ID
	GetTrack(ctx context.Context, id kernel.TrackID) (*Track, error)

	// TrackBelongsToCohort checks that a track is part of the cohort
	TrackBelongsToCohort(ctx context.Context, trackID kernel.TrackID, cohortID kernel.CohortID) (bool, error)
}
