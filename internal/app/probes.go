package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Probes read the resources a promotion should have produced. A not-found
// answer becomes Exists=false; any other failure is returned as an error so
// an outage is never mistaken for drift.
type Probes struct {
	tenants     domain.TenantRepository
	identities  domain.IdentityResolver
	memberships domain.MembershipRepository
}

// NewProbes creates probes over the given ports.
func NewProbes(tenants domain.TenantRepository, identities domain.IdentityResolver, memberships domain.MembershipRepository) *Probes {
	return &Probes{
		tenants:     tenants,
		identities:  identities,
		memberships: memberships,
	}
}

// TenantStatus reports whether the tenant created for the lead exists and is
// active.
func (p *Probes) TenantStatus(ctx context.Context, lead domain.Lead) (domain.TenantProbe, error) {
	tenant, err := p.tenants.GetByLead(ctx, lead.ID)
	if errors.Is(err, domain.ErrTenantNotFound) {
		return domain.TenantProbe{}, nil
	}
	if err != nil {
		return domain.TenantProbe{}, fmt.Errorf("reading tenant: %w", err)
	}

	return domain.TenantProbe{
		Exists: true,
		Active: tenant.Status.IsActive(),
		Tenant: tenant,
	}, nil
}

// IdentityExists reports whether an identity account exists for email.
func (p *Probes) IdentityExists(ctx context.Context, email string) (domain.IdentityProbe, error) {
	if strings.TrimSpace(email) == "" {
		return domain.IdentityProbe{}, nil
	}

	identity, err := p.identities.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return domain.IdentityProbe{}, nil
	}
	if err != nil {
		return domain.IdentityProbe{}, fmt.Errorf("resolving identity: %w", err)
	}

	return domain.IdentityProbe{Exists: true, IdentityID: identity.ID}, nil
}

// RelationshipExists reports whether identityID is an admin of tenantID.
func (p *Probes) RelationshipExists(ctx context.Context, tenantID, identityID string) (bool, error) {
	return p.findMembership(ctx, tenantID, identityID, domain.RoleAdmin)
}

// RelationshipExistsForTenant reports whether any identity holds role on
// tenantID. Used when the owner's identity cannot be resolved.
func (p *Probes) RelationshipExistsForTenant(ctx context.Context, tenantID string, role domain.Role) (bool, error) {
	return p.findMembership(ctx, tenantID, "", role)
}

func (p *Probes) findMembership(ctx context.Context, tenantID, identityID string, role domain.Role) (bool, error) {
	_, err := p.memberships.Find(ctx, tenantID, identityID, role)
	if errors.Is(err, domain.ErrMembershipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading membership: %w", err)
	}
	return true, nil
}
