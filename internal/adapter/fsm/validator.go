package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Compile-time checks: the concrete validators implement the domain ports.
var (
	_ domain.LeadTransitionValidator   = (*Validator[domain.LeadStatus, domain.LeadEvent])(nil)
	_ domain.TenantTransitionValidator = (*Validator[domain.TenantStatus, domain.TenantEvent])(nil)
)

// buildEvents converts a transition table into looplab/fsm EventDesc format.
// It consolidates transitions with the same event+destination into a single
// EventDesc with multiple source states (e.g. tenant "cancel" from trial,
// active and suspended all go to "cancelled").
func buildEvents[S ~string, E ~string](transitions []domain.Transition[S, E]) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator checks lifecycle events using looplab/fsm. It creates a
// short-lived FSM instance per Apply call, initialized with the entity's
// current state, because looplab/fsm tracks its current state internally.
type Validator[S ~string, E ~string] struct {
	entity string
	events []loopfsm.EventDesc
}

// New creates a validator for an arbitrary transition table.
func New[S ~string, E ~string](entity string, transitions []domain.Transition[S, E]) *Validator[S, E] {
	return &Validator[S, E]{
		entity: entity,
		events: buildEvents(transitions),
	}
}

// NewLeadValidator creates a validator for the lead pipeline.
func NewLeadValidator() *Validator[domain.LeadStatus, domain.LeadEvent] {
	return New("lead", domain.LeadTransitions)
}

// NewTenantValidator creates a validator for the tenant lifecycle.
func NewTenantValidator() *Validator[domain.TenantStatus, domain.TenantEvent] {
	return New("tenant", domain.TenantTransitions)
}

// Apply checks if the given event is valid from the current status and
// returns the destination status. Returns a domain.TransitionError if
// the transition is not allowed.
func (v *Validator[S, E]) Apply(ctx context.Context, current S, event E) (S, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Entity:  v.entity,
				Event:   string(event),
				Current: string(current),
			}
		}
		return "", err
	}

	return S(machine.Current()), nil
}
