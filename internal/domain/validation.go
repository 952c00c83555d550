package domain

import "time"

// IssueKind identifies one kind of drift found on a converted lead.
type IssueKind int

const (
	IssueTenantMissing IssueKind = iota + 1
	IssueTenantInactive
	IssueAdminRelationshipMissing
	IssueOwnerIdentityMissing
)

// String renders the issue for display.
func (k IssueKind) String() string {
	switch k {
	case IssueTenantMissing:
		return "tenant missing"
	case IssueTenantInactive:
		return "tenant inactive"
	case IssueAdminRelationshipMissing:
		return "admin relationship missing"
	case IssueOwnerIdentityMissing:
		return "owner identity not found"
	default:
		return "unknown issue"
	}
}

// Action is a remediation strategy for a drifted lead.
type Action string

const (
	ActionNone               Action = "none"
	ActionRevertStatus       Action = "revert_status"
	ActionRetryConversion    Action = "retry_conversion"
	ActionManualIntervention Action = "manual_intervention"
)

// Actions lists every action Classify may recommend.
var Actions = []Action{ActionNone, ActionRevertStatus, ActionRetryConversion, ActionManualIntervention}

// Executable reports whether the remediation executor may run the action.
func (a Action) Executable() bool {
	return a == ActionRevertStatus || a == ActionRetryConversion
}

// TenantProbe is the observed state of the tenant created for a lead.
type TenantProbe struct {
	Exists bool
	Active bool
	Tenant Tenant // zero unless Exists
}

// IdentityProbe is the observed state of the owner's identity account.
type IdentityProbe struct {
	Exists     bool
	IdentityID string
}

// ValidationResult is the outcome of checking one converted lead against the
// resources its promotion should have produced. It is never persisted.
type ValidationResult struct {
	LeadID                  string
	TenantID                string
	OwnerEmail              string
	TenantExists            bool
	TenantActive            bool
	IdentityExists          bool
	IdentityID              string
	AdminRelationshipExists bool
	Issues                  []IssueKind
	RecommendedAction       Action
	CheckedAt               time.Time
}

// IsValid reports whether the lead has no drift.
func (r ValidationResult) IsValid() bool {
	return len(r.Issues) == 0
}

// HasIssue reports whether the result carries the given issue kind.
func (r ValidationResult) HasIssue(kind IssueKind) bool {
	for _, k := range r.Issues {
		if k == kind {
			return true
		}
	}
	return false
}

// IssueMessages renders the issues as display strings.
func (r ValidationResult) IssueMessages() []string {
	out := make([]string, len(r.Issues))
	for i, k := range r.Issues {
		out[i] = k.String()
	}
	return out
}

// Classify maps probe results for a lead to a validation result. The rules
// are evaluated in order and the first match decides the action:
//
//	no tenant                      -> revert_status
//	tenant inactive                -> manual_intervention
//	tenant active, no admin link   -> retry_conversion
//	tenant active, admin linked    -> none
//
// Classify reads nothing but its arguments; CheckedAt is left for the caller.
func Classify(lead Lead, tenant TenantProbe, identity IdentityProbe, relationshipExists bool) ValidationResult {
	r := ValidationResult{
		LeadID:                  lead.ID,
		OwnerEmail:              lead.ContactEmail,
		TenantExists:            tenant.Exists,
		TenantActive:            tenant.Exists && tenant.Active,
		IdentityExists:          identity.Exists,
		IdentityID:              identity.IdentityID,
		AdminRelationshipExists: tenant.Exists && relationshipExists,
	}
	if tenant.Exists {
		r.TenantID = tenant.Tenant.ID
		if tenant.Tenant.OwnerEmail != "" {
			r.OwnerEmail = tenant.Tenant.OwnerEmail
		}
	}

	switch {
	case !r.TenantExists:
		r.Issues = []IssueKind{IssueTenantMissing}
		r.RecommendedAction = ActionRevertStatus
	case !r.TenantActive:
		r.Issues = []IssueKind{IssueTenantInactive}
		r.RecommendedAction = ActionManualIntervention
	case !r.AdminRelationshipExists:
		r.Issues = []IssueKind{IssueAdminRelationshipMissing}
		if !identity.Exists {
			r.Issues = append(r.Issues, IssueOwnerIdentityMissing)
		}
		r.RecommendedAction = ActionRetryConversion
	default:
		r.RecommendedAction = ActionNone
	}

	return r
}
