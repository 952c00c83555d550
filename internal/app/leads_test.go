package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/leadrecon/internal/adapter/fsm"
	"github.com/neomorfeo/leadrecon/internal/app"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

func TestLeadService_Create(t *testing.T) {
	repo := newMockLeads()
	svc := app.NewLeadService(repo, fsm.NewLeadValidator())

	lead, err := svc.Create(context.Background(), app.CreateLeadInput{
		Company:      "Acme",
		ContactName:  "Ada",
		ContactEmail: "  ada@acme.test ",
		ContactPhone: "555-0100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.ID == "" {
		t.Error("ID should not be empty")
	}
	if lead.Status != domain.LeadNew {
		t.Errorf("Status = %q, want %q", lead.Status, domain.LeadNew)
	}
	if lead.ContactEmail != "ada@acme.test" {
		t.Errorf("ContactEmail = %q, want %q", lead.ContactEmail, "ada@acme.test")
	}

	stored, err := repo.GetByID(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("lead not found in repo: %v", err)
	}
	if stored.ContactPhone != "555-0100" {
		t.Errorf("stored ContactPhone = %q, want %q", stored.ContactPhone, "555-0100")
	}
}

func TestLeadService_Transition(t *testing.T) {
	repo := newMockLeads()
	svc := app.NewLeadService(repo, fsm.NewLeadValidator())
	ctx := context.Background()

	lead, _ := svc.Create(ctx, app.CreateLeadInput{Company: "Acme", ContactEmail: "ada@acme.test"})

	lead, err := svc.Transition(ctx, lead.ID, domain.LeadEventQualify, "called back")
	if err != nil {
		t.Fatalf("qualify failed: %v", err)
	}
	if lead.Status != domain.LeadQualified {
		t.Errorf("Status = %q, want %q", lead.Status, domain.LeadQualified)
	}

	history, err := svc.History(ctx, lead.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history len = %d, want 1", len(history))
	}
	if history[0].From != domain.LeadNew || history[0].To != domain.LeadQualified {
		t.Errorf("history = %s -> %s, want new -> qualified", history[0].From, history[0].To)
	}
	if history[0].Note != "called back" {
		t.Errorf("note = %q, want %q", history[0].Note, "called back")
	}
}

func TestLeadService_Transition_Invalid(t *testing.T) {
	repo := newMockLeads()
	svc := app.NewLeadService(repo, fsm.NewLeadValidator())
	ctx := context.Background()

	lead, _ := svc.Create(ctx, app.CreateLeadInput{Company: "Acme"})

	// A new lead cannot be reverted.
	_, err := svc.Transition(ctx, lead.ID, domain.LeadEventRevertConversion, "")
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if repo.status(lead.ID) != domain.LeadNew {
		t.Errorf("Status = %q, want %q", repo.status(lead.ID), domain.LeadNew)
	}
}

func TestLeadService_NotFound(t *testing.T) {
	svc := app.NewLeadService(newMockLeads(), fsm.NewLeadValidator())

	if _, err := svc.History(context.Background(), "missing"); !errors.Is(err, domain.ErrLeadNotFound) {
		t.Errorf("History: expected ErrLeadNotFound, got %v", err)
	}
	if _, err := svc.Transition(context.Background(), "missing", domain.LeadEventQualify, ""); !errors.Is(err, domain.ErrLeadNotFound) {
		t.Errorf("Transition: expected ErrLeadNotFound, got %v", err)
	}
}
