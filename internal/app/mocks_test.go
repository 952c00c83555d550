package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// --- Mocks ---
// All mocks are safe for concurrent use: the batch validator and bulk fix
// call them from several goroutines.

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockLeads struct {
	mu        sync.Mutex
	leads     map[string]domain.Lead
	history   []domain.StatusChange
	updateErr map[string]error
	listErr   error
	updates   int
}

func newMockLeads(leads ...domain.Lead) *mockLeads {
	m := &mockLeads{
		leads:     make(map[string]domain.Lead),
		updateErr: make(map[string]error),
	}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *mockLeads) Create(_ context.Context, l domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.ID] = l
	return nil
}

func (m *mockLeads) GetByID(_ context.Context, id string) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	return l, nil
}

func (m *mockLeads) List(_ context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Lead
	for _, l := range m.leads {
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockLeads) ListConverted(ctx context.Context) ([]domain.Lead, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	s := domain.LeadConverted
	return m.List(ctx, domain.LeadFilter{Status: &s})
}

func (m *mockLeads) UpdateStatus(_ context.Context, id string, from, to domain.LeadStatus, note string) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateErr[id]; err != nil {
		return domain.Lead{}, err
	}
	l, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	if l.Status != from {
		return domain.Lead{}, domain.ErrStatusConflict
	}
	l.Status = to
	l.UpdatedAt = time.Now()
	m.leads[id] = l
	m.updates++
	m.history = append(m.history, domain.StatusChange{LeadID: id, From: from, To: to, Note: note, ChangedAt: l.UpdatedAt})
	return l, nil
}

func (m *mockLeads) SetTenant(_ context.Context, leadID, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return domain.ErrLeadNotFound
	}
	l.TenantID = tenantID
	m.leads[leadID] = l
	return nil
}

func (m *mockLeads) History(_ context.Context, leadID string) ([]domain.StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StatusChange
	for _, h := range m.history {
		if h.LeadID == leadID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockLeads) status(id string) domain.LeadStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[id].Status
}

type mockTenants struct {
	mu        sync.Mutex
	tenants   map[string]domain.Tenant
	leadErr   map[string]error
	createErr error
}

func newMockTenants(tenants ...domain.Tenant) *mockTenants {
	m := &mockTenants{
		tenants: make(map[string]domain.Tenant),
		leadErr: make(map[string]error),
	}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *mockTenants) Create(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.tenants {
		if existing.Slug == t.Slug {
			return &domain.SlugConflictError{Slug: t.Slug}
		}
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenants) GetByID(_ context.Context, id string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockTenants) GetByLead(_ context.Context, leadID string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.leadErr[leadID]; err != nil {
		return domain.Tenant{}, err
	}
	for _, t := range m.tenants {
		if t.LeadID == leadID {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockTenants) GetBySlug(_ context.Context, slug string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockTenants) List(_ context.Context, _ domain.TenantFilter) ([]domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTenants) Update(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[t.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	m.tenants[t.ID] = t
	return nil
}

type mockIdentities struct {
	mu     sync.Mutex
	byMail map[string]domain.Identity
	err    error
	calls  int
}

func newMockIdentities(ids ...domain.Identity) *mockIdentities {
	m := &mockIdentities{byMail: make(map[string]domain.Identity)}
	for _, id := range ids {
		m.byMail[strings.ToLower(id.Email)] = id
	}
	return m
}

func (m *mockIdentities) FindByEmail(_ context.Context, email string) (domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Identity{}, m.err
	}
	id, ok := m.byMail[strings.ToLower(email)]
	if !ok {
		return domain.Identity{}, domain.ErrIdentityNotFound
	}
	return id, nil
}

func (m *mockIdentities) Create(_ context.Context, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(identity.Email)
	if _, ok := m.byMail[key]; ok {
		return domain.ErrIdentityExists
	}
	m.byMail[key] = identity
	return nil
}

type mockMemberships struct {
	mu      sync.Mutex
	rows    []domain.Membership
	findErr error
	seq     int
}

func (m *mockMemberships) Find(_ context.Context, tenantID, identityID string, role domain.Role) (domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return domain.Membership{}, m.findErr
	}
	for _, r := range m.rows {
		if r.TenantID == tenantID && r.Role == role && (identityID == "" || r.IdentityID == identityID) {
			return r, nil
		}
	}
	return domain.Membership{}, domain.ErrMembershipNotFound
}

func (m *mockMemberships) Upsert(_ context.Context, tenantID, identityID string, role domain.Role) (domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TenantID == tenantID && r.IdentityID == identityID && r.Role == role {
			return r, nil
		}
	}
	m.seq++
	r := domain.Membership{
		ID:         fmt.Sprintf("m%d", m.seq),
		TenantID:   tenantID,
		IdentityID: identityID,
		Role:       role,
		CreatedAt:  time.Now(),
	}
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *mockMemberships) count(tenantID, identityID string, role domain.Role) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.TenantID == tenantID && r.IdentityID == identityID && r.Role == role {
			n++
		}
	}
	return n
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return m.err
}

func (m *mockNotifier) notifications() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.sent...)
}

type mockInvalidStore struct {
	mu    sync.Mutex
	items map[string]domain.InvalidLead
}

func newMockInvalidStore() *mockInvalidStore {
	return &mockInvalidStore{items: make(map[string]domain.InvalidLead)}
}

func (m *mockInvalidStore) Replace(_ context.Context, items []domain.InvalidLead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]domain.InvalidLead, len(items))
	for _, it := range items {
		m.items[it.Lead.ID] = it
	}
	return nil
}

func (m *mockInvalidStore) List(_ context.Context) ([]domain.InvalidLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.InvalidLead, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lead.ID < out[j].Lead.ID })
	return out, nil
}

func (m *mockInvalidStore) Remove(_ context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.items, id)
	}
	return nil
}

func (m *mockInvalidStore) ids() []string {
	items, _ := m.List(context.Background())
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Lead.ID
	}
	return out
}

type mockMetrics struct {
	mu         sync.Mutex
	sweeps     int
	known      int
	successful int
	failed     int
}

func (m *mockMetrics) RecordSweep(_ context.Context, _ domain.BatchReport, knownInvalid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	m.known = knownInvalid
}

func (m *mockMetrics) RecordFixes(_ context.Context, _ domain.Action, successful, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successful += successful
	m.failed += failed
}

// --- Fixtures ---

func convertedLead(id string) domain.Lead {
	l := domain.NewLead(id, "Company "+id, "Owner "+id, strings.ToLower(id)+"@example.com")
	l.Status = domain.LeadConverted
	return l
}

func tenantFor(lead domain.Lead, status domain.TenantStatus) domain.Tenant {
	t := domain.NewTenant("t-"+lead.ID, lead.ID, lead.Company, "slug-"+strings.ToLower(lead.ID), "free")
	t.Status = status
	t.OwnerEmail = lead.ContactEmail
	return t
}

func identityFor(lead domain.Lead) domain.Identity {
	return domain.Identity{ID: "i-" + lead.ID, Email: lead.ContactEmail}
}
