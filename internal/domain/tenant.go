package domain

import "time"

// TenantStatus represents the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantTrial     TenantStatus = "trial"
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantCancelled TenantStatus = "cancelled"
	TenantArchived  TenantStatus = "archived"
)

// IsActive reports whether the status counts as a live tenant. Anything not
// suspended, cancelled or archived is active, including trials.
func (s TenantStatus) IsActive() bool {
	switch s {
	case TenantSuspended, TenantCancelled, TenantArchived:
		return false
	default:
		return true
	}
}

// TenantEvent represents an action that triggers a tenant state transition.
type TenantEvent string

const (
	TenantEventActivate   TenantEvent = "activate"
	TenantEventSuspend    TenantEvent = "suspend"
	TenantEventReactivate TenantEvent = "reactivate"
	TenantEventCancel     TenantEvent = "cancel"
	TenantEventArchive    TenantEvent = "archive"
)

// TenantTransitions defines all valid state changes in the tenant lifecycle.
// Billing and suspension flows drive these independently of promotion.
var TenantTransitions = []Transition[TenantStatus, TenantEvent]{
	{Event: TenantEventActivate, Src: TenantTrial, Dst: TenantActive},
	{Event: TenantEventSuspend, Src: TenantTrial, Dst: TenantSuspended},
	{Event: TenantEventSuspend, Src: TenantActive, Dst: TenantSuspended},
	{Event: TenantEventReactivate, Src: TenantSuspended, Dst: TenantActive},
	{Event: TenantEventCancel, Src: TenantTrial, Dst: TenantCancelled},
	{Event: TenantEventCancel, Src: TenantActive, Dst: TenantCancelled},
	{Event: TenantEventCancel, Src: TenantSuspended, Dst: TenantCancelled},
	{Event: TenantEventArchive, Src: TenantCancelled, Dst: TenantArchived},
}

// Tenant is an organization created by promoting a lead.
type Tenant struct {
	ID         string
	LeadID     string
	Name       string
	Slug       string
	Status     TenantStatus
	Plan       string
	OwnerEmail string
	OwnerName  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTenant creates a tenant in the initial "trial" state.
func NewTenant(id, leadID, name, slug, plan string) Tenant {
	now := time.Now().UTC()
	return Tenant{
		ID:        id,
		LeadID:    leadID,
		Name:      name,
		Slug:      slug,
		Status:    TenantTrial,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
