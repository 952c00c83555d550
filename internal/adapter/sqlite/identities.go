package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Compile-time checks.
var (
	_ domain.IdentityDirectory    = (*IdentityDirectory)(nil)
	_ domain.MembershipRepository = (*MembershipRepository)(nil)
)

// IdentityDirectory is a local mirror of identity-provider accounts.
type IdentityDirectory struct {
	db *sql.DB
}

func (r *IdentityDirectory) Create(ctx context.Context, i domain.Identity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, display_name, created_at) VALUES (?, ?, ?, ?)`,
		i.ID, strings.ToLower(strings.TrimSpace(i.Email)), i.DisplayName, formatTime(i.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdentityExists
		}
		return fmt.Errorf("inserting identity: %w", err)
	}
	return nil
}

// FindByEmail matches case-insensitively.
func (r *IdentityDirectory) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	var i domain.Identity
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, created_at FROM identities WHERE email = ?`,
		strings.TrimSpace(email),
	).Scan(&i.ID, &i.Email, &i.DisplayName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, domain.ErrIdentityNotFound
		}
		return domain.Identity{}, fmt.Errorf("scanning identity: %w", err)
	}

	i.CreatedAt = parseTime(createdAt)
	return i, nil
}

// MembershipRepository implements domain.MembershipRepository using SQLite.
type MembershipRepository struct {
	db *sql.DB
}

func (r *MembershipRepository) Find(ctx context.Context, tenantID, identityID string, role domain.Role) (domain.Membership, error) {
	query := `SELECT id, tenant_id, identity_id, role, created_at FROM memberships WHERE tenant_id = ? AND role = ?`
	args := []any{tenantID, string(role)}

	if identityID != "" {
		query += ` AND identity_id = ?`
		args = append(args, identityID)
	}
	query += ` ORDER BY created_at LIMIT 1`

	m, err := scanMembership(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Membership{}, domain.ErrMembershipNotFound
	}
	return m, err
}

// Upsert inserts the membership unless the (tenant, identity, role) triple
// already exists, then returns the stored row.
func (r *MembershipRepository) Upsert(ctx context.Context, tenantID, identityID string, role domain.Role) (domain.Membership, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, tenant_id, identity_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, identity_id, role) DO NOTHING`,
		uuid.NewString(), tenantID, identityID, string(role), formatTime(time.Now()),
	)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("upserting membership: %w", err)
	}

	return r.Find(ctx, tenantID, identityID, role)
}

func scanMembership(row scanner) (domain.Membership, error) {
	var m domain.Membership
	var role, createdAt string

	if err := row.Scan(&m.ID, &m.TenantID, &m.IdentityID, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Membership{}, err
		}
		return domain.Membership{}, fmt.Errorf("scanning membership: %w", err)
	}

	m.Role = domain.Role(role)
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}
