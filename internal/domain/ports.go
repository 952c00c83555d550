package domain

import "context"

// LeadRepository defines the persistence contract for leads.
type LeadRepository interface {
	Create(ctx context.Context, lead Lead) error
	GetByID(ctx context.Context, id string) (Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]Lead, error)
	ListConverted(ctx context.Context) ([]Lead, error)
	// UpdateStatus moves the lead from -> to only if it is still in from,
	// recording note in the status history. It returns ErrStatusConflict
	// when the lead exists but has moved on.
	UpdateStatus(ctx context.Context, id string, from, to LeadStatus, note string) (Lead, error)
	SetTenant(ctx context.Context, leadID, tenantID string) error
	History(ctx context.Context, leadID string) ([]StatusChange, error)
}

// LeadFilter holds optional criteria for listing leads.
type LeadFilter struct {
	Status *LeadStatus
	Limit  int
	Offset int
}

// TenantRepository defines the persistence contract for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetByLead(ctx context.Context, leadID string) (Tenant, error)
	GetBySlug(ctx context.Context, slug string) (Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]Tenant, error)
	Update(ctx context.Context, tenant Tenant) error
}

// TenantFilter holds optional criteria for listing tenants.
type TenantFilter struct {
	Status *TenantStatus
	Limit  int
	Offset int
}

// IdentityResolver looks up identity accounts. It never creates them.
type IdentityResolver interface {
	FindByEmail(ctx context.Context, email string) (Identity, error)
}

// IdentityDirectory is the writable side of the identity store, used to seed
// accounts mirrored from the provider.
type IdentityDirectory interface {
	IdentityResolver
	Create(ctx context.Context, identity Identity) error
}

// MembershipRepository stores tenant-identity relationships.
type MembershipRepository interface {
	// Find returns a membership for the tenant with the given role. An empty
	// identityID matches any identity.
	Find(ctx context.Context, tenantID, identityID string, role Role) (Membership, error)
	// Upsert creates the membership unless an identical one exists, and
	// returns the stored row either way.
	Upsert(ctx context.Context, tenantID, identityID string, role Role) (Membership, error)
}

// RelationshipRepairer re-runs the relationship step of a promotion.
type RelationshipRepairer interface {
	RepairRelationship(ctx context.Context, tenantID, ownerEmail string) (Membership, error)
}

// InvalidLeadStore holds the currently known invalid leads between sweeps.
type InvalidLeadStore interface {
	Replace(ctx context.Context, items []InvalidLead) error
	List(ctx context.Context) ([]InvalidLead, error)
	Remove(ctx context.Context, leadIDs ...string) error
}

// Notifier delivers aggregate, fire-and-forget notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LeadTransitionValidator checks lead lifecycle events.
type LeadTransitionValidator interface {
	Apply(ctx context.Context, current LeadStatus, event LeadEvent) (LeadStatus, error)
}

// TenantTransitionValidator checks tenant lifecycle events.
type TenantTransitionValidator interface {
	Apply(ctx context.Context, current TenantStatus, event TenantEvent) (TenantStatus, error)
}

// ReconciliationMetrics records the outcome of sweeps and remediations.
type ReconciliationMetrics interface {
	RecordSweep(ctx context.Context, report BatchReport, knownInvalid int)
	RecordFixes(ctx context.Context, action Action, successful, failed int)
}
