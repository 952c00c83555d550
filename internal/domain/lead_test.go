package domain_test

import (
	"testing"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

func TestNewLead(t *testing.T) {
	lead := domain.NewLead("l-1", "Acme", "Ada", "ada@acme.test")

	if lead.Status != domain.LeadNew {
		t.Errorf("Status = %q, want %q", lead.Status, domain.LeadNew)
	}
	if lead.ContactEmail != "ada@acme.test" {
		t.Errorf("ContactEmail = %q, want %q", lead.ContactEmail, "ada@acme.test")
	}
	if lead.TenantID != "" {
		t.Errorf("TenantID = %q, want empty", lead.TenantID)
	}
	if lead.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestLeadTransitions_PromotionPath(t *testing.T) {
	cases := []struct {
		event domain.LeadEvent
		src   domain.LeadStatus
		dst   domain.LeadStatus
	}{
		{domain.LeadEventQualify, domain.LeadNew, domain.LeadQualified},
		{domain.LeadEventStartConversion, domain.LeadQualified, domain.LeadConverting},
		{domain.LeadEventCompleteConversion, domain.LeadConverting, domain.LeadConverted},
		{domain.LeadEventAbandonConversion, domain.LeadConverting, domain.LeadQualified},
		{domain.LeadEventRevertConversion, domain.LeadConverted, domain.LeadQualified},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.LeadTransitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q → %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestLeadTransitions_ConvertedOnlyReverts(t *testing.T) {
	for _, tr := range domain.LeadTransitions {
		if tr.Src == domain.LeadConverted && tr.Event != domain.LeadEventRevertConversion {
			t.Errorf("unexpected transition %q out of %q", tr.Event, tr.Src)
		}
	}
}
