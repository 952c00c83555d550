package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadrecon/internal/app"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	Status       string `json:"status" doc:"Pipeline status"`
	Company      string `json:"company" doc:"Prospect company"`
	ContactName  string `json:"contact_name" doc:"Contact person"`
	ContactEmail string `json:"contact_email" doc:"Contact email, becomes the tenant owner"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Notes        string `json:"notes,omitempty"`
	TenantID     string `json:"tenant_id,omitempty" doc:"Tenant created by promotion"`
	CreatedAt    string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt    string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toLeadResponse(l domain.Lead) LeadResponse {
	return LeadResponse{
		ID:           l.ID,
		Status:       string(l.Status),
		Company:      l.Company,
		ContactName:  l.ContactName,
		ContactEmail: l.ContactEmail,
		ContactPhone: l.ContactPhone,
		Notes:        l.Notes,
		TenantID:     l.TenantID,
		CreatedAt:    formatTime(l.CreatedAt),
		UpdatedAt:    formatTime(l.UpdatedAt),
	}
}

// StatusChangeResponse is one entry of a lead's status history.
type StatusChangeResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Note      string `json:"note,omitempty"`
	ChangedAt string `json:"changed_at"`
}

// --- Create Lead ---

type CreateLeadInput struct {
	Body struct {
		Company      string `json:"company" minLength:"1" maxLength:"255" doc:"Prospect company"`
		ContactName  string `json:"contact_name" minLength:"1" maxLength:"255"`
		ContactEmail string `json:"contact_email" format:"email" doc:"Contact email"`
		ContactPhone string `json:"contact_phone,omitempty" maxLength:"50"`
		Notes        string `json:"notes,omitempty"`
	}
}

type LeadOutput struct {
	Body LeadResponse
}

// --- Get Lead ---

type GetLeadInput struct {
	ID string `path:"id" doc:"Lead ID"`
}

// --- List Leads ---

type ListLeadsInput struct {
	Status string `query:"status" required:"false" enum:"new,qualified,converting,converted,lost" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"500" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListLeadsOutput struct {
	Body []LeadResponse
}

// --- Lead Transition ---

// Conversion events are driven by promotion and reconciliation only.
type LeadTransitionInput struct {
	ID   string `path:"id" doc:"Lead ID"`
	Body struct {
		Event string `json:"event" enum:"qualify,mark_lost,reopen" doc:"Pipeline event to trigger"`
		Note  string `json:"note,omitempty" maxLength:"500"`
	}
}

// --- History ---

type LeadHistoryOutput struct {
	Body []StatusChangeResponse
}

// --- Promote ---

type PromoteLeadInput struct {
	ID   string `path:"id" doc:"Lead ID"`
	Body struct {
		TenantName string `json:"tenant_name,omitempty" maxLength:"255" doc:"Defaults to the lead's company"`
		Slug       string `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"URL-friendly identifier (lowercase, hyphens)"`
		Plan       string `json:"plan,omitempty" default:"free" doc:"Subscription plan"`
	}
}

type PromotionResponse struct {
	Lead         LeadResponse   `json:"lead"`
	Tenant       TenantResponse `json:"tenant"`
	MembershipID string         `json:"membership_id"`
}

type PromoteLeadOutput struct {
	Body PromotionResponse
}

func registerLeads(api huma.API, leads *app.LeadService, promotions *app.PromotionService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads",
		Summary:     "Create a new lead",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *CreateLeadInput) (*LeadOutput, error) {
		lead, err := leads.Create(ctx, app.CreateLeadInput{
			Company:      input.Body.Company,
			ContactName:  input.Body.ContactName,
			ContactEmail: input.Body.ContactEmail,
			ContactPhone: input.Body.ContactPhone,
			Notes:        input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-lead",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads/{id}",
		Summary:     "Get a lead by ID",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *GetLeadInput) (*LeadOutput, error) {
		lead, err := leads.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-leads",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads",
		Summary:     "List leads",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *ListLeadsInput) (*ListLeadsOutput, error) {
		filter := domain.LeadFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.LeadStatus(input.Status)
			filter.Status = &s
		}

		list, err := leads.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]LeadResponse, len(list))
		for i, l := range list {
			resp[i] = toLeadResponse(l)
		}
		return &ListLeadsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/events",
		Summary:     "Trigger a pipeline event",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *LeadTransitionInput) (*LeadOutput, error) {
		lead, err := leads.Transition(ctx, input.ID, domain.LeadEvent(input.Body.Event), input.Body.Note)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lead-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads/{id}/history",
		Summary:     "List a lead's status changes",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *GetLeadInput) (*LeadHistoryOutput, error) {
		changes, err := leads.History(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]StatusChangeResponse, len(changes))
		for i, c := range changes {
			resp[i] = StatusChangeResponse{
				From:      string(c.From),
				To:        string(c.To),
				Note:      c.Note,
				ChangedAt: formatTime(c.ChangedAt),
			}
		}
		return &LeadHistoryOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "promote-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{id}/promote",
		Summary:     "Promote a qualified lead into a tenant",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *PromoteLeadInput) (*PromoteLeadOutput, error) {
		p, err := promotions.Promote(ctx, input.ID, app.PromoteInput{
			TenantName: input.Body.TenantName,
			Slug:       input.Body.Slug,
			Plan:       input.Body.Plan,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PromoteLeadOutput{Body: PromotionResponse{
			Lead:         toLeadResponse(p.Lead),
			Tenant:       toTenantResponse(p.Tenant),
			MembershipID: p.Membership.ID,
		}}, nil
	})
}
