package assessment

import (
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
)

// SubmitAssessmentRequest - DTO for submitting an assessment. For FILE
// submissions the payload arrives as a multipart upload alongside this.
type SubmitAssessmentRequest struct {
	ApplicationID  kernel.ApplicationID `json:"application_id" validate:"required"`
	SubmissionType SubmissionType       `json:"submission_type" validate:"required"`
	SubmissionURL  string               `json:"submission_url,omitempty"`
	Notes          string               `json:"notes,omitempty"`
}

// GradeAssessmentRequest - DTO for grading a submission
type GradeAssessmentRequest struct {
	Score    int    `json:"score" validate:"min=0,max=100"`
	Feedback string `json:"feedback,omitempty"`
}

// EligibilityResponse - DTO for the eligibility check. Reasons lists every
// failed condition, not just the first.
type EligibilityResponse struct {
	ApplicationID kernel.ApplicationID `json:"application_id"`
	Eligible      bool                 `json:"eligible"`
	Reasons       []string             `json:"reasons,omitempty"`
}
