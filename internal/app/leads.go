package app

import (
	"context"
	"strings"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// LeadService manages leads outside of promotion and reconciliation.
type LeadService struct {
	repo      domain.LeadRepository
	validator domain.LeadTransitionValidator
}

// NewLeadService creates a lead service.
func NewLeadService(repo domain.LeadRepository, validator domain.LeadTransitionValidator) *LeadService {
	return &LeadService{repo: repo, validator: validator}
}

// CreateLeadInput carries the contact data of a new lead.
type CreateLeadInput struct {
	Company      string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Notes        string
}

// Create stores a new lead in the "new" state.
func (s *LeadService) Create(ctx context.Context, in CreateLeadInput) (domain.Lead, error) {
	lead := domain.NewLead(generateID(), in.Company, in.ContactName, strings.TrimSpace(in.ContactEmail))
	lead.ContactPhone = in.ContactPhone
	lead.Notes = in.Notes

	if err := s.repo.Create(ctx, lead); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// GetByID returns a lead by its identifier.
func (s *LeadService) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns leads matching the filter.
func (s *LeadService) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	return s.repo.List(ctx, filter)
}

// History returns the audited status changes of a lead.
func (s *LeadService) History(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// Transition applies a pipeline event to a lead. The write is conditional on
// the status read here, so a concurrent change surfaces as ErrStatusConflict.
func (s *LeadService) Transition(ctx context.Context, id string, event domain.LeadEvent, note string) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	next, err := s.validator.Apply(ctx, lead.Status, event)
	if err != nil {
		return domain.Lead{}, err
	}

	return s.repo.UpdateStatus(ctx, id, lead.Status, next, note)
}
