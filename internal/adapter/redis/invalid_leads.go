// Package redis shares the invalid-lead set between processes through Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// DefaultKey is the hash holding the invalid set, one field per lead.
const DefaultKey = "leadrecon:invalid_leads"

// Compile-time check: InvalidLeadStore implements domain.InvalidLeadStore.
var _ domain.InvalidLeadStore = (*InvalidLeadStore)(nil)

// InvalidLeadStore keeps the known invalid leads in a Redis hash. A positive
// ttl expires the whole set if no sweep refreshes it.
type InvalidLeadStore struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewInvalidLeadStore creates a store under key. An empty key uses DefaultKey.
func NewInvalidLeadStore(client goredis.UniversalClient, key string, ttl time.Duration) *InvalidLeadStore {
	if key == "" {
		key = DefaultKey
	}
	return &InvalidLeadStore{client: client, key: key, ttl: ttl}
}

// Replace swaps the whole set atomically.
func (s *InvalidLeadStore) Replace(ctx context.Context, items []domain.InvalidLead) error {
	fields := make(map[string]any, len(items))
	for _, it := range items {
		data, err := json.Marshal(toRecord(it))
		if err != nil {
			return fmt.Errorf("encoding invalid lead %s: %w", it.Lead.ID, err)
		}
		fields[it.Lead.ID] = data
	}

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
			if s.ttl > 0 {
				pipe.Expire(ctx, s.key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing invalid set: %w", err)
	}
	return nil
}

// List returns the stored leads ordered by lead ID.
func (s *InvalidLeadStore) List(ctx context.Context) ([]domain.InvalidLead, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading invalid set: %w", err)
	}

	out := make([]domain.InvalidLead, 0, len(raw))
	for id, data := range raw {
		var r record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decoding invalid lead %s: %w", id, err)
		}
		out = append(out, r.toDomain())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lead.ID < out[j].Lead.ID })
	return out, nil
}

func (s *InvalidLeadStore) Remove(ctx context.Context, leadIDs ...string) error {
	if len(leadIDs) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, leadIDs...).Err(); err != nil {
		return fmt.Errorf("removing from invalid set: %w", err)
	}
	return nil
}

// record is the JSON form of an invalid lead.
type record struct {
	LeadID        string    `json:"lead_id"`
	Status        string    `json:"status"`
	Company       string    `json:"company"`
	ContactName   string    `json:"contact_name"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	LeadTenantID  string    `json:"lead_tenant_id,omitempty"`
	LeadCreatedAt time.Time `json:"lead_created_at"`
	LeadUpdatedAt time.Time `json:"lead_updated_at"`

	TenantID                string             `json:"tenant_id,omitempty"`
	OwnerEmail              string             `json:"owner_email"`
	TenantExists            bool               `json:"tenant_exists"`
	TenantActive            bool               `json:"tenant_active"`
	IdentityExists          bool               `json:"identity_exists"`
	IdentityID              string             `json:"identity_id,omitempty"`
	AdminRelationshipExists bool               `json:"admin_relationship_exists"`
	Issues                  []domain.IssueKind `json:"issues"`
	RecommendedAction       string             `json:"recommended_action"`
	CheckedAt               time.Time          `json:"checked_at"`
}

func toRecord(it domain.InvalidLead) record {
	l, v := it.Lead, it.Validation
	return record{
		LeadID:        l.ID,
		Status:        string(l.Status),
		Company:       l.Company,
		ContactName:   l.ContactName,
		ContactEmail:  l.ContactEmail,
		ContactPhone:  l.ContactPhone,
		LeadTenantID:  l.TenantID,
		LeadCreatedAt: l.CreatedAt,
		LeadUpdatedAt: l.UpdatedAt,

		TenantID:                v.TenantID,
		OwnerEmail:              v.OwnerEmail,
		TenantExists:            v.TenantExists,
		TenantActive:            v.TenantActive,
		IdentityExists:          v.IdentityExists,
		IdentityID:              v.IdentityID,
		AdminRelationshipExists: v.AdminRelationshipExists,
		Issues:                  v.Issues,
		RecommendedAction:       string(v.RecommendedAction),
		CheckedAt:               v.CheckedAt,
	}
}

func (r record) toDomain() domain.InvalidLead {
	return domain.InvalidLead{
		Lead: domain.Lead{
			ID:           r.LeadID,
			Status:       domain.LeadStatus(r.Status),
			Company:      r.Company,
			ContactName:  r.ContactName,
			ContactEmail: r.ContactEmail,
			ContactPhone: r.ContactPhone,
			TenantID:     r.LeadTenantID,
			CreatedAt:    r.LeadCreatedAt,
			UpdatedAt:    r.LeadUpdatedAt,
		},
		Validation: domain.ValidationResult{
			LeadID:                  r.LeadID,
			TenantID:                r.TenantID,
			OwnerEmail:              r.OwnerEmail,
			TenantExists:            r.TenantExists,
			TenantActive:            r.TenantActive,
			IdentityExists:          r.IdentityExists,
			IdentityID:              r.IdentityID,
			AdminRelationshipExists: r.AdminRelationshipExists,
			Issues:                  r.Issues,
			RecommendedAction:       domain.Action(r.RecommendedAction),
			CheckedAt:               r.CheckedAt,
		},
	}
}
