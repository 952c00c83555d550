package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadrecon/internal/app"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

// ValidationResponse is the API representation of a lead validation.
type ValidationResponse struct {
	LeadID                  string   `json:"lead_id"`
	Valid                   bool     `json:"valid"`
	TenantID                string   `json:"tenant_id,omitempty"`
	OwnerEmail              string   `json:"owner_email"`
	TenantExists            bool     `json:"tenant_exists"`
	TenantActive            bool     `json:"tenant_active"`
	IdentityExists          bool     `json:"identity_exists"`
	IdentityID              string   `json:"identity_id,omitempty"`
	AdminRelationshipExists bool     `json:"admin_relationship_exists"`
	Issues                  []string `json:"issues"`
	RecommendedAction       string   `json:"recommended_action" enum:"none,revert_status,retry_conversion,manual_intervention"`
	CheckedAt               string   `json:"checked_at"`
}

func toValidationResponse(v domain.ValidationResult) ValidationResponse {
	return ValidationResponse{
		LeadID:                  v.LeadID,
		Valid:                   v.IsValid(),
		TenantID:                v.TenantID,
		OwnerEmail:              v.OwnerEmail,
		TenantExists:            v.TenantExists,
		TenantActive:            v.TenantActive,
		IdentityExists:          v.IdentityExists,
		IdentityID:              v.IdentityID,
		AdminRelationshipExists: v.AdminRelationshipExists,
		Issues:                  v.IssueMessages(),
		RecommendedAction:       string(v.RecommendedAction),
		CheckedAt:               formatTime(v.CheckedAt),
	}
}

type InvalidLeadResponse struct {
	Lead       LeadResponse       `json:"lead"`
	Validation ValidationResponse `json:"validation"`
}

func toInvalidLeadResponses(items []domain.InvalidLead) []InvalidLeadResponse {
	resp := make([]InvalidLeadResponse, len(items))
	for i, item := range items {
		resp[i] = InvalidLeadResponse{
			Lead:       toLeadResponse(item.Lead),
			Validation: toValidationResponse(item.Validation),
		}
	}
	return resp
}

type LeadErrorResponse struct {
	LeadID string `json:"lead_id"`
	Error  string `json:"error"`
}

// ReportResponse summarizes a validation pass.
type ReportResponse struct {
	Total   int                   `json:"total"`
	Valid   int                   `json:"valid"`
	Invalid []InvalidLeadResponse `json:"invalid"`
	Errored []LeadErrorResponse   `json:"errored"`
}

func toReportResponse(r domain.BatchReport) ReportResponse {
	errored := make([]LeadErrorResponse, len(r.Errored))
	for i, e := range r.Errored {
		errored[i] = LeadErrorResponse{LeadID: e.Lead.ID, Error: e.Err.Error()}
	}
	return ReportResponse{
		Total:   r.Total(),
		Valid:   len(r.Valid),
		Invalid: toInvalidLeadResponses(r.Invalid),
		Errored: errored,
	}
}

type FixResultResponse struct {
	LeadID  string `json:"lead_id"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func toFixResultResponse(r domain.FixResult) FixResultResponse {
	return FixResultResponse{
		LeadID:  r.LeadID,
		Action:  string(r.Action),
		Success: r.Success,
		Message: r.Message,
	}
}

type BulkFixResponse struct {
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
	Results    []FixResultResponse `json:"results"`
}

// --- Validate ---

type ValidateAllOutput struct {
	Body ReportResponse
}

type ValidateLeadInput struct {
	ID string `path:"id" doc:"Lead ID"`
}

type ValidateLeadOutput struct {
	Body ValidationResponse
}

// --- Invalid leads ---

type InvalidLeadsOutput struct {
	Body []InvalidLeadResponse
}

// --- Fix ---

// The schema accepts every action so that non-executable ones are rejected
// with a reason instead of a schema error.
type FixLeadInput struct {
	ID   string `path:"id" doc:"Lead ID"`
	Body struct {
		Action string `json:"action" enum:"none,revert_status,retry_conversion,manual_intervention" doc:"Remediation to apply"`
	}
}

type FixLeadOutput struct {
	Body FixResultResponse
}

type BulkFixInput struct {
	Body struct {
		Action  string   `json:"action" enum:"none,revert_status,retry_conversion,manual_intervention" doc:"Remediation to apply"`
		LeadIDs []string `json:"lead_ids,omitempty" doc:"Leads from the invalid set; empty means all of them"`
	}
}

type BulkFixOutput struct {
	Body BulkFixResponse
}

// --- Sweep ---

type SweepResponse struct {
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at"`
	Report     ReportResponse `json:"report"`
}

type SweepOutput struct {
	Body SweepResponse
}

func registerReconciliation(api huma.API, svc *app.ReconciliationService, watcher *app.Watcher) {
	huma.Register(api, huma.Operation{
		OperationID: "validate-all",
		Method:      http.MethodPost,
		Path:        "/api/v1/reconciliation/validate",
		Summary:     "Validate every converted lead",
		Tags:        []string{"Reconciliation"},
	}, func(ctx context.Context, _ *struct{}) (*ValidateAllOutput, error) {
		report, err := svc.ValidateAll(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ValidateAllOutput{Body: toReportResponse(report)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-invalid-leads",
		Method:      http.MethodGet,
		Path:        "/api/v1/reconciliation/invalid-leads",
		Summary:     "List the currently known invalid leads",
		Tags:        []string{"Reconciliation"},
	}, func(ctx context.Context, _ *struct{}) (*InvalidLeadsOutput, error) {
		items, err := svc.InvalidLeads(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &InvalidLeadsOutput{Body: toInvalidLeadResponses(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/reconciliation/leads/{id}/validate",
		Summary:     "Validate one converted lead",
		Tags:        []string{"Reconciliation"},
	}, func(ctx context.Context, input *ValidateLeadInput) (*ValidateLeadOutput, error) {
		v, err := svc.ValidateLead(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ValidateLeadOutput{Body: toValidationResponse(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "fix-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/reconciliation/leads/{id}/fix",
		Summary:     "Revalidate a lead and apply a remediation",
		Tags:        []string{"Reconciliation"},
	}, func(ctx context.Context, input *FixLeadInput) (*FixLeadOutput, error) {
		result, err := svc.FixLead(ctx, input.ID, domain.Action(input.Body.Action))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &FixLeadOutput{Body: toFixResultResponse(result)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "bulk-fix",
		Method:      http.MethodPost,
		Path:        "/api/v1/reconciliation/bulk-fix",
		Summary:     "Apply a remediation to many invalid leads",
		Tags:        []string{"Reconciliation"},
	}, func(ctx context.Context, input *BulkFixInput) (*BulkFixOutput, error) {
		action := domain.Action(input.Body.Action)
		if !action.Executable() {
			return nil, toHumaError(&domain.ActionRejectedError{Action: action})
		}

		result, err := svc.BulkFixLeads(ctx, input.Body.LeadIDs, action)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := BulkFixResponse{
			Successful: result.Successful,
			Failed:     result.Failed,
			Results:    make([]FixResultResponse, len(result.Outcomes)),
		}
		for i, o := range result.Outcomes {
			resp.Results[i] = toFixResultResponse(o.FixResult)
		}
		return &BulkFixOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "trigger-sweep",
		Method:      http.MethodPost,
		Path:        "/api/v1/reconciliation/sweep",
		Summary:     "Run a sweep now unless one is in flight",
		Tags:        []string{"Reconciliation"},
	}, func(ctx context.Context, _ *struct{}) (*SweepOutput, error) {
		out, ran := watcher.Sweep(ctx)
		if !ran {
			return nil, huma.Error409Conflict("a sweep is already running")
		}
		if out.Err != nil {
			return nil, toHumaError(out.Err)
		}
		return &SweepOutput{Body: SweepResponse{
			StartedAt:  formatTime(out.StartedAt),
			FinishedAt: formatTime(out.FinishedAt),
			Report:     toReportResponse(out.Report),
		}}, nil
	})
}
