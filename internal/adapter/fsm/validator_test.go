package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/neomorfeo/leadrecon/internal/adapter/fsm"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

func TestLeadValidator_AllTransitions(t *testing.T) {
	v := adapter.NewLeadValidator()
	ctx := context.Background()

	for _, tr := range domain.LeadTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestTenantValidator_AllTransitions(t *testing.T) {
	v := adapter.NewTenantValidator()
	ctx := context.Background()

	for _, tr := range domain.TenantTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestLeadValidator_RevertOnlyFromConverted(t *testing.T) {
	v := adapter.NewLeadValidator()
	ctx := context.Background()

	_, err := v.Apply(ctx, domain.LeadQualified, domain.LeadEventRevertConversion)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Entity != "lead" {
		t.Errorf("entity = %q, want %q", trErr.Entity, "lead")
	}
	if trErr.Current != string(domain.LeadQualified) {
		t.Errorf("current = %q, want %q", trErr.Current, domain.LeadQualified)
	}
}

func TestTenantValidator_UnknownEvent(t *testing.T) {
	v := adapter.NewTenantValidator()

	_, err := v.Apply(context.Background(), domain.TenantActive, domain.TenantEvent("bogus"))
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}

func TestTenantValidator_CancelFromSuspended(t *testing.T) {
	v := adapter.NewTenantValidator()

	got, err := v.Apply(context.Background(), domain.TenantSuspended, domain.TenantEventCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.TenantCancelled {
		t.Errorf("got %q, want %q", got, domain.TenantCancelled)
	}
}
