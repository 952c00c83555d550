package domain_test

import (
	"testing"
	"time"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

func TestNewTenant(t *testing.T) {
	before := time.Now().UTC()
	tenant := domain.NewTenant("id-1", "lead-1", "Acme Corp", "acme-corp", "pro")
	after := time.Now().UTC()

	if tenant.ID != "id-1" {
		t.Errorf("ID = %q, want %q", tenant.ID, "id-1")
	}
	if tenant.LeadID != "lead-1" {
		t.Errorf("LeadID = %q, want %q", tenant.LeadID, "lead-1")
	}
	if tenant.Slug != "acme-corp" {
		t.Errorf("Slug = %q, want %q", tenant.Slug, "acme-corp")
	}
	if tenant.Status != domain.TenantTrial {
		t.Errorf("Status = %q, want %q", tenant.Status, domain.TenantTrial)
	}
	if tenant.CreatedAt.Before(before) || tenant.CreatedAt.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", tenant.CreatedAt, before, after)
	}
	if tenant.UpdatedAt != tenant.CreatedAt {
		t.Errorf("UpdatedAt should equal CreatedAt on new tenant")
	}
}

func TestTenantStatus_IsActive(t *testing.T) {
	cases := []struct {
		status domain.TenantStatus
		want   bool
	}{
		{domain.TenantTrial, true},
		{domain.TenantActive, true},
		{domain.TenantSuspended, false},
		{domain.TenantCancelled, false},
		{domain.TenantArchived, false},
	}

	for _, tc := range cases {
		if got := tc.status.IsActive(); got != tc.want {
			t.Errorf("%q.IsActive() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestTenantTransitions_AllEventsHaveEntries(t *testing.T) {
	events := []domain.TenantEvent{
		domain.TenantEventActivate,
		domain.TenantEventSuspend,
		domain.TenantEventReactivate,
		domain.TenantEventCancel,
		domain.TenantEventArchive,
	}

	for _, event := range events {
		found := false
		for _, tr := range domain.TenantTransitions {
			if tr.Event == event {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("event %q has no transition defined", event)
		}
	}
}

func TestTenantTransitions_InvalidPaths(t *testing.T) {
	invalid := []struct {
		event domain.TenantEvent
		src   domain.TenantStatus
	}{
		{domain.TenantEventReactivate, domain.TenantActive},
		{domain.TenantEventActivate, domain.TenantSuspended},
		{domain.TenantEventArchive, domain.TenantActive},
		{domain.TenantEventCancel, domain.TenantArchived},
	}

	for _, tc := range invalid {
		for _, tr := range domain.TenantTransitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}
