package domain

import "time"

// Identity is an account at the external identity provider, addressable by email.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Role is the capacity in which an identity belongs to a tenant.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership links an identity to a tenant with a role. An admin membership
// for the tenant owner is the last artifact of a successful promotion.
type Membership struct {
	ID         string
	TenantID   string
	IdentityID string
	Role       Role
	CreatedAt  time.Time
}
