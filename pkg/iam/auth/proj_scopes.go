package auth

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - Job placement
// ============================================================================

const (
	// Wildcard granting every scope
	ScopeAll = "*"

	// Matching scopes
	ScopeMatchingsAll      = "matchings:*"
	ScopeMatchingsRead     = "matchings:read"
	ScopeMatchingsWrite    = "matchings:write"
	ScopeMatchingsDelete   = "matchings:delete"
	ScopeMatchingsGenerate = "matchings:generate" // Bulk generation, sync or queued
)

// DomainScopeCategories organizes domain-specific scopes
var DomainScopeCategories = map[string][]string{
	"Matchings": {
		ScopeMatchingsAll,
		ScopeMatchingsRead,
		ScopeMatchingsWrite,
		ScopeMatchingsDelete,
		ScopeMatchingsGenerate,
	},
}

// DomainScopeDescriptions provides descriptions for domain scopes
var DomainScopeDescriptions = map[string]string{
	ScopeAll:               "Full access",
	ScopeMatchingsAll:      "Full access to matching management",
	ScopeMatchingsRead:     "View matches, statistics and scores",
	ScopeMatchingsWrite:    "Create matches and change their status",
	ScopeMatchingsDelete:   "Delete pending matches",
	ScopeMatchingsGenerate: "Generate ranked matches for a worker or vacancy",
}

// DomainScopeGroups defines domain-specific role groupings
var DomainScopeGroups = map[string][]string{
	"placement_admin": {
		ScopeMatchingsAll,
	},
	"recruiter": {
		ScopeMatchingsRead,
		ScopeMatchingsWrite,
		ScopeMatchingsGenerate,
	},
	"company_viewer": {
		ScopeMatchingsRead,
	},
}

// ExpandScopeGroup returns the scopes granted by a role, or nil for unknown roles
func ExpandScopeGroup(role string) []string {
	return DomainScopeGroups[role]
}
