package provisioning

import (
	"context"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application"
)

// Store executes the acceptance transaction. The conditional status flip,
// the user insert and the cohort enrollment increment commit together or
// not at all: a half-accepted application with no account must be
// impossible.
type Store interface {
	// AcceptApplication flips the application to ACCEPTED (only from one
	// of the from statuses), creates newUser and increments the cohort's
	// current_students, all in one transaction. Returns
	// application.ErrAlreadyAccepted when the flip loses a race,
	// provisioning.ErrAlreadyProvisioned when the user email is taken,
	// and cohort.ErrCohortFull when the cohort is at capacity.
	AcceptApplication(ctx context.Context, appID kernel.ApplicationID, cohortID kernel.CohortID, from []application.ApplicationStatus, newUser *user.User) error
}
