package auth

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - Recruitment Pipeline
// ============================================================================

const (
	ScopeAll = "*"

	// Application scopes
	ScopeApplicationsAll     = "applications:*"
	ScopeApplicationsRead    = "applications:read"
	ScopeApplicationsWrite   = "applications:write"
	ScopeApplicationsReview  = "applications:review"  // Move through review states
	ScopeApplicationsApprove = "applications:approve" // Accept/reject applications

	// Assessment scopes
	ScopeAssessmentsAll   = "assessments:*"
	ScopeAssessmentsRead  = "assessments:read"
	ScopeAssessmentsWrite = "assessments:write"
	ScopeAssessmentsGrade = "assessments:grade"

	// Interview scopes
	ScopeInterviewsAll      = "interviews:*"
	ScopeInterviewsRead     = "interviews:read"
	ScopeInterviewsWrite    = "interviews:write"
	ScopeInterviewsSchedule = "interviews:schedule"
	ScopeInterviewsConduct  = "interviews:conduct"

	// Slot scopes
	ScopeSlotsAll    = "slots:*"
	ScopeSlotsRead   = "slots:read"
	ScopeSlotsWrite  = "slots:write"
	ScopeSlotsDelete = "slots:delete"

	// User scopes
	ScopeUsersAll   = "users:*"
	ScopeUsersRead  = "users:read"
	ScopeUsersWrite = "users:write"
)

// DomainScopeCategories organizes domain-specific scopes
var DomainScopeCategories = map[string][]string{
	"Applications": {
		ScopeApplicationsAll,
		ScopeApplicationsRead,
		ScopeApplicationsWrite,
		ScopeApplicationsReview,
		ScopeApplicationsApprove,
	},
	"Assessments": {
		ScopeAssessmentsAll,
		ScopeAssessmentsRead,
		ScopeAssessmentsWrite,
		ScopeAssessmentsGrade,
	},
	"Interviews": {
		ScopeInterviewsAll,
		ScopeInterviewsRead,
		ScopeInterviewsWrite,
		ScopeInterviewsSchedule,
		ScopeInterviewsConduct,
	},
	"Slots": {
		ScopeSlotsAll,
		ScopeSlotsRead,
		ScopeSlotsWrite,
		ScopeSlotsDelete,
	},
	"Users": {
		ScopeUsersAll,
		ScopeUsersRead,
		ScopeUsersWrite,
	},
}
