package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// DefaultConcurrency bounds how many leads are validated or fixed at once.
const DefaultConcurrency = 8

// BatchValidator checks converted leads against their expected resources.
type BatchValidator struct {
	probes      *Probes
	concurrency int
	logger      *slog.Logger
}

// NewBatchValidator creates a validator. A concurrency below one falls back
// to DefaultConcurrency.
func NewBatchValidator(probes *Probes, concurrency int, logger *slog.Logger) *BatchValidator {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchValidator{probes: probes, concurrency: concurrency, logger: logger}
}

// ValidateOne probes a single converted lead and classifies the result.
// Probe failures are returned as *domain.ProbeError.
func (v *BatchValidator) ValidateOne(ctx context.Context, lead domain.Lead) (domain.ValidationResult, error) {
	if lead.Status != domain.LeadConverted {
		return domain.ValidationResult{}, domain.ErrLeadNotConverted
	}

	var (
		tenant   domain.TenantProbe
		identity domain.IdentityProbe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tenant, err = v.probes.TenantStatus(gctx, lead)
		if err != nil {
			return &domain.ProbeError{Probe: "tenant", LeadID: lead.ID, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		identity, err = v.probes.IdentityExists(gctx, ownerEmail(lead, domain.TenantProbe{}))
		if err != nil {
			return &domain.ProbeError{Probe: "identity", LeadID: lead.ID, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ValidationResult{}, err
	}

	// The tenant may name a different owner than the lead's contact.
	if email := ownerEmail(lead, tenant); !strings.EqualFold(email, lead.ContactEmail) {
		var err error
		identity, err = v.probes.IdentityExists(ctx, email)
		if err != nil {
			return domain.ValidationResult{}, &domain.ProbeError{Probe: "identity", LeadID: lead.ID, Err: err}
		}
	}

	related := false
	if tenant.Exists {
		var err error
		if identity.Exists {
			related, err = v.probes.RelationshipExists(ctx, tenant.Tenant.ID, identity.IdentityID)
		} else {
			related, err = v.probes.RelationshipExistsForTenant(ctx, tenant.Tenant.ID, domain.RoleAdmin)
		}
		if err != nil {
			return domain.ValidationResult{}, &domain.ProbeError{Probe: "relationship", LeadID: lead.ID, Err: err}
		}
	}

	result := domain.Classify(lead, tenant, identity, related)
	result.CheckedAt = time.Now().UTC()
	return result, nil
}

// ValidateLeads validates every converted lead in leads with bounded
// concurrency. Each lead lands in exactly one bucket of the report; a
// failure for one lead never affects another.
func (v *BatchValidator) ValidateLeads(ctx context.Context, leads []domain.Lead) domain.BatchReport {
	converted := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if l.Status == domain.LeadConverted {
			converted = append(converted, l)
		}
	}

	type outcome struct {
		result domain.ValidationResult
		err    error
	}
	outcomes := make([]outcome, len(converted))

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, lead := range converted {
		g.Go(func() error {
			res, err := v.ValidateOne(ctx, lead)
			outcomes[i] = outcome{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var report domain.BatchReport
	for i, o := range outcomes {
		lead := converted[i]
		switch {
		case o.err != nil:
			v.logger.WarnContext(ctx, "lead validation failed", "lead_id", lead.ID, "error", o.err)
			report.Errored = append(report.Errored, domain.LeadError{Lead: lead, Err: o.err})
		case o.result.IsValid():
			report.Valid = append(report.Valid, lead)
		default:
			report.Invalid = append(report.Invalid, domain.InvalidLead{Lead: lead, Validation: o.result})
		}
	}

	return report
}

func ownerEmail(lead domain.Lead, tenant domain.TenantProbe) string {
	if tenant.Exists && tenant.Tenant.OwnerEmail != "" {
		return tenant.Tenant.OwnerEmail
	}
	return lead.ContactEmail
}
