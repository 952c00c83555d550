package http

import (
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadrecon/internal/app"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Services are the application services exposed over the API.
type Services struct {
	Leads          *app.LeadService
	Tenants        *app.TenantService
	Identities     *app.IdentityService
	Promotions     *app.PromotionService
	Reconciliation *app.ReconciliationService
	Watcher        *app.Watcher
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, s Services) {
	registerLeads(api, s.Leads, s.Promotions)
	registerTenants(api, s.Tenants)
	registerIdentities(api, s.Identities)
	registerReconciliation(api, s.Reconciliation, s.Watcher)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	var slugErr *domain.SlugConflictError
	if errors.As(err, &slugErr) {
		return huma.Error409Conflict(slugErr.Error())
	}

	var probeErr *domain.ProbeError
	if errors.As(err, &probeErr) {
		return huma.Error503ServiceUnavailable(probeErr.Error())
	}

	var promoErr *domain.PromotionError
	if errors.As(err, &promoErr) {
		var trErr *domain.TransitionError
		if errors.As(err, &trErr) {
			return huma.Error422UnprocessableEntity(trErr.Error())
		}
		return huma.Error500InternalServerError("promotion failed at step " + promoErr.Step)
	}

	switch {
	case errors.Is(err, domain.ErrLeadNotFound):
		return huma.Error404NotFound("lead not found")
	case errors.Is(err, domain.ErrTenantNotFound):
		return huma.Error404NotFound("tenant not found")
	case errors.Is(err, domain.ErrIdentityNotFound):
		return huma.Error404NotFound("identity not found")
	case errors.Is(err, domain.ErrIdentityExists):
		return huma.Error409Conflict("identity already exists")
	case errors.Is(err, domain.ErrStatusConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrLeadNotConverted):
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var rejErr *domain.ActionRejectedError
	if errors.As(err, &rejErr) {
		return huma.Error422UnprocessableEntity(rejErr.Error())
	}

	var naErr *domain.ActionNotApplicableError
	if errors.As(err, &naErr) {
		return huma.Error422UnprocessableEntity(naErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
