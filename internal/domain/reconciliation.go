package domain

import "fmt"

// InvalidLead pairs a drifted lead with the validation that flagged it.
type InvalidLead struct {
	Lead       Lead
	Validation ValidationResult
}

// LeadError is a lead whose validation could not complete.
type LeadError struct {
	Lead Lead
	Err  error
}

// BatchReport is the transient result of validating many leads.
type BatchReport struct {
	Valid   []Lead
	Invalid []InvalidLead
	Errored []LeadError
}

// Total is the number of leads the report covers.
func (r BatchReport) Total() int {
	return len(r.Valid) + len(r.Invalid) + len(r.Errored)
}

// FixResult is the outcome of one remediation.
type FixResult struct {
	LeadID  string
	Action  Action
	Success bool
	Message string
}

// FixOutcome is the per-item record of a bulk remediation.
type FixOutcome struct {
	FixResult
	Err error
}

// BulkResult aggregates a bulk remediation.
type BulkResult struct {
	Successful int
	Failed     int
	Outcomes   []FixOutcome
}

// FixedLeadIDs returns the leads whose remediation succeeded.
func (r BulkResult) FixedLeadIDs() []string {
	ids := make([]string, 0, r.Successful)
	for _, o := range r.Outcomes {
		if o.Success {
			ids = append(ids, o.LeadID)
		}
	}
	return ids
}

// NotificationKind classifies an aggregate notification.
type NotificationKind string

const (
	NotificationDriftDetected NotificationKind = "drift_detected"
	NotificationBulkFixed     NotificationKind = "bulk_fixed"
)

// Notification is an aggregate message surfaced to operators.
type Notification struct {
	Kind  NotificationKind
	Count int
	Total int
}

// Message renders the notification for display.
func (n Notification) Message() string {
	switch n.Kind {
	case NotificationDriftDetected:
		return fmt.Sprintf("found %d invalid conversions", n.Count)
	case NotificationBulkFixed:
		return fmt.Sprintf("fixed %d of %d leads", n.Count, n.Total)
	default:
		return fmt.Sprintf("%s: %d", n.Kind, n.Count)
	}
}
