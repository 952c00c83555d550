package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrIdentityExists     = errors.New("identity already exists")

	// ErrStatusConflict is returned by conditional status updates when the
	// lead is no longer in the expected status.
	ErrStatusConflict = errors.New("lead status changed concurrently")

	// ErrLeadNotConverted is returned when reconciliation is asked to check
	// a lead that is not in the converted state.
	ErrLeadNotConverted = errors.New("lead is not converted")
)

// SlugConflictError is returned when a tenant slug is already in use.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Entity  string
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s event %q is not valid from state %q", e.Entity, e.Event, e.Current)
}

// ProbeError reports that a resource could not be read while validating a
// lead. It never means the resource is absent.
type ProbeError struct {
	Probe  string
	LeadID string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s for lead %s: %v", e.Probe, e.LeadID, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ActionRejectedError is returned when the executor is asked to run an action
// that must be handled by a person, or that does nothing.
type ActionRejectedError struct {
	Action Action
}

func (e *ActionRejectedError) Error() string {
	return fmt.Sprintf("action %q cannot be executed automatically", e.Action)
}

// ActionNotApplicableError is returned when an executable action does not fit
// the lead's observed state.
type ActionNotApplicableError struct {
	Action Action
	Reason string
}

func (e *ActionNotApplicableError) Error() string {
	return fmt.Sprintf("action %q not applicable: %s", e.Action, e.Reason)
}

// PromotionError reports which promotion step failed.
type PromotionError struct {
	LeadID string
	Step   string
	Err    error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("promoting lead %s: step %s: %v", e.LeadID, e.Step, e.Err)
}

func (e *PromotionError) Unwrap() error { return e.Err }
