package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// TenantService orchestrates tenant lifecycle operations. Tenants are
// created by promotion; this service reads them and moves them through
// billing-driven states.
type TenantService struct {
	repo      domain.TenantRepository
	validator domain.TenantTransitionValidator
}

// NewTenantService creates a service with the given adapters.
func NewTenantService(repo domain.TenantRepository, validator domain.TenantTransitionValidator) *TenantService {
	return &TenantService{
		repo:      repo,
		validator: validator,
	}
}

// GetByID returns a tenant by its unique identifier.
func (s *TenantService) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns tenants matching the given filter.
func (s *TenantService) List(ctx context.Context, filter domain.TenantFilter) ([]domain.Tenant, error) {
	return s.repo.List(ctx, filter)
}

// Transition applies a lifecycle event to a tenant, changing its state.
func (s *TenantService) Transition(ctx context.Context, id string, event domain.TenantEvent) (domain.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}

	newStatus, err := s.validator.Apply(ctx, tenant.Status, event)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant.Status = newStatus

	if err := s.repo.Update(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("updating tenant: %w", err)
	}

	return tenant, nil
}
