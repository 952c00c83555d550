package domain

import "time"

// LeadStatus represents where a sales lead sits in the pipeline.
type LeadStatus string

const (
	LeadNew        LeadStatus = "new"
	LeadQualified  LeadStatus = "qualified"
	LeadConverting LeadStatus = "converting"
	LeadConverted  LeadStatus = "converted"
	LeadLost       LeadStatus = "lost"
)

// LeadEvent represents an action that moves a lead between statuses.
type LeadEvent string

const (
	LeadEventQualify            LeadEvent = "qualify"
	LeadEventStartConversion    LeadEvent = "start_conversion"
	LeadEventCompleteConversion LeadEvent = "complete_conversion"
	LeadEventAbandonConversion  LeadEvent = "abandon_conversion"
	LeadEventRevertConversion   LeadEvent = "revert_conversion"
	LeadEventMarkLost           LeadEvent = "mark_lost"
	LeadEventReopen             LeadEvent = "reopen"
)

// LeadTransitions defines all valid state changes in the lead pipeline.
// revert_conversion is the compensating edge used by reconciliation.
var LeadTransitions = []Transition[LeadStatus, LeadEvent]{
	{Event: LeadEventQualify, Src: LeadNew, Dst: LeadQualified},
	{Event: LeadEventStartConversion, Src: LeadQualified, Dst: LeadConverting},
	{Event: LeadEventCompleteConversion, Src: LeadConverting, Dst: LeadConverted},
	{Event: LeadEventAbandonConversion, Src: LeadConverting, Dst: LeadQualified},
	{Event: LeadEventRevertConversion, Src: LeadConverted, Dst: LeadQualified},
	{Event: LeadEventMarkLost, Src: LeadNew, Dst: LeadLost},
	{Event: LeadEventMarkLost, Src: LeadQualified, Dst: LeadLost},
	{Event: LeadEventReopen, Src: LeadLost, Dst: LeadNew},
}

// Lead is a sales prospect that may be promoted into a tenant.
type Lead struct {
	ID           string
	Status       LeadStatus
	ContactName  string
	ContactEmail string
	ContactPhone string
	Company      string
	Notes        string
	TenantID     string // empty until promotion creates a tenant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLead creates a lead in the "new" state.
func NewLead(id, company, contactName, contactEmail string) Lead {
	now := time.Now().UTC()
	return Lead{
		ID:           id,
		Status:       LeadNew,
		ContactName:  contactName,
		ContactEmail: contactEmail,
		Company:      company,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// StatusChange is one audited status transition of a lead.
type StatusChange struct {
	LeadID    string
	From      LeadStatus
	To        LeadStatus
	Note      string
	ChangedAt time.Time
}

// Transition defines a valid state change: an event moves an entity from Src to Dst.
type Transition[S ~string, E ~string] struct {
	Event E
	Src   S
	Dst   S
}
