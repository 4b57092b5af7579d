package notify

import (
	"context"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// TemplateKind selects the email template rendered by the mailer.
type TemplateKind string

const (
	KindApplicationReceived    TemplateKind = "application-received"
	KindApplicationUnderReview TemplateKind = "application-under-review"
	KindApplicationShortlisted TemplateKind = "application-shortlisted"
	KindApplicationRejected    TemplateKind = "application-rejected"
	KindAssessmentReceived     TemplateKind = "assessment-received"
	KindInterviewScheduled     TemplateKind = "interview-scheduled"
	KindInterviewCancelled     TemplateKind = "interview-cancelled"
	KindApplicationAccepted    TemplateKind = "application-accepted"
)

// Dispatcher hands a notification event to the delivery pipeline.
// Delivery is best-effort: callers log failures and never fail the
// triggering business operation on a dispatch error.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind TemplateKind, recipient kernel.Email, data map[string]any) error
}
