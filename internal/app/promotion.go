package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Promotion steps, reported in *domain.PromotionError.
const (
	StepStartConversion    = "start_conversion"
	StepCreateTenant       = "create_tenant"
	StepCompleteConversion = "complete_conversion"
	StepLinkAdmin          = "link_admin"
)

var _ domain.RelationshipRepairer = (*PromotionService)(nil)

// PromoteInput describes the tenant to create for a lead.
type PromoteInput struct {
	TenantName string
	Slug       string
	Plan       string
}

// Promotion is the set of resources produced by promoting a lead.
type Promotion struct {
	Lead       domain.Lead
	Tenant     domain.Tenant
	Membership domain.Membership
}

// PromotionService turns qualified leads into tenants. The steps are
// separate writes; drift left by a failure after the lead is converted is
// repaired by reconciliation.
type PromotionService struct {
	leads       domain.LeadRepository
	tenants     domain.TenantRepository
	identities  domain.IdentityResolver
	memberships domain.MembershipRepository
	validator   domain.LeadTransitionValidator
	logger      *slog.Logger
}

// NewPromotionService creates a promotion service.
func NewPromotionService(
	leads domain.LeadRepository,
	tenants domain.TenantRepository,
	identities domain.IdentityResolver,
	memberships domain.MembershipRepository,
	validator domain.LeadTransitionValidator,
	logger *slog.Logger,
) *PromotionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromotionService{
		leads:       leads,
		tenants:     tenants,
		identities:  identities,
		memberships: memberships,
		validator:   validator,
		logger:      logger,
	}
}

// Promote runs the promotion pipeline for a qualified lead.
func (s *PromotionService) Promote(ctx context.Context, leadID string, in PromoteInput) (Promotion, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return Promotion{}, err
	}

	converting, err := s.validator.Apply(ctx, lead.Status, domain.LeadEventStartConversion)
	if err != nil {
		return Promotion{}, err
	}
	lead, err = s.leads.UpdateStatus(ctx, lead.ID, lead.Status, converting, "promotion started")
	if err != nil {
		return Promotion{}, &domain.PromotionError{LeadID: leadID, Step: StepStartConversion, Err: err}
	}

	name := in.TenantName
	if name == "" {
		name = lead.Company
	}
	tenant := domain.NewTenant(generateID(), lead.ID, name, in.Slug, in.Plan)
	tenant.OwnerEmail = lead.ContactEmail
	tenant.OwnerName = lead.ContactName

	if err := s.tenants.Create(ctx, tenant); err != nil {
		s.abandon(ctx, lead, err)
		return Promotion{}, &domain.PromotionError{LeadID: leadID, Step: StepCreateTenant, Err: err}
	}

	if err := s.leads.SetTenant(ctx, lead.ID, tenant.ID); err != nil {
		s.logger.WarnContext(ctx, "linking tenant to lead failed",
			"lead_id", lead.ID,
			"tenant_id", tenant.ID,
			"error", err,
		)
	}

	converted, err := s.validator.Apply(ctx, lead.Status, domain.LeadEventCompleteConversion)
	if err != nil {
		return Promotion{}, err
	}
	lead, err = s.leads.UpdateStatus(ctx, lead.ID, lead.Status, converted, "promoted to tenant "+tenant.ID)
	if err != nil {
		return Promotion{}, &domain.PromotionError{LeadID: leadID, Step: StepCompleteConversion, Err: err}
	}

	membership, err := s.RepairRelationship(ctx, tenant.ID, tenant.OwnerEmail)
	if err != nil {
		s.logger.WarnContext(ctx, "promotion left lead without admin relationship",
			"lead_id", lead.ID,
			"tenant_id", tenant.ID,
			"error", err,
		)
		return Promotion{Lead: lead, Tenant: tenant}, &domain.PromotionError{LeadID: leadID, Step: StepLinkAdmin, Err: err}
	}

	s.logger.InfoContext(ctx, "lead promoted",
		"lead_id", lead.ID,
		"tenant_id", tenant.ID,
		"membership_id", membership.ID,
	)

	return Promotion{Lead: lead, Tenant: tenant, Membership: membership}, nil
}

// RepairRelationship resolves the owner's identity and makes it an admin of
// the tenant. Calling it again for the same pair returns the existing
// membership.
func (s *PromotionService) RepairRelationship(ctx context.Context, tenantID, ownerEmail string) (domain.Membership, error) {
	identity, err := s.identities.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("resolving owner %s: %w", ownerEmail, err)
	}

	m, err := s.memberships.Upsert(ctx, tenantID, identity.ID, domain.RoleAdmin)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("linking admin to tenant %s: %w", tenantID, err)
	}
	return m, nil
}

// abandon moves a converting lead back to qualified after the tenant could
// not be created.
func (s *PromotionService) abandon(ctx context.Context, lead domain.Lead, cause error) {
	prev, err := s.validator.Apply(ctx, lead.Status, domain.LeadEventAbandonConversion)
	if err == nil {
		_, err = s.leads.UpdateStatus(ctx, lead.ID, lead.Status, prev, "promotion abandoned: "+cause.Error())
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "abandoning conversion failed",
			"lead_id", lead.ID,
			"error", err,
		)
	}
}
