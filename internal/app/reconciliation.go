package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// ReconciliationService is the entry point for callers of the engine. It
// validates and fixes leads and keeps the set of known invalid leads current.
type ReconciliationService struct {
	leads      domain.LeadRepository
	batch      *BatchValidator
	remediator *Remediator
	invalid    domain.InvalidLeadStore
	notifier   domain.Notifier
	metrics    domain.ReconciliationMetrics
	logger     *slog.Logger
}

// NewReconciliationService wires the engine. notifier and metrics may be nil.
func NewReconciliationService(
	leads domain.LeadRepository,
	batch *BatchValidator,
	remediator *Remediator,
	invalid domain.InvalidLeadStore,
	notifier domain.Notifier,
	metrics domain.ReconciliationMetrics,
	logger *slog.Logger,
) *ReconciliationService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconciliationService{
		leads:      leads,
		batch:      batch,
		remediator: remediator,
		invalid:    invalid,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// ValidateAll validates every converted lead and replaces the invalid set.
// Only loading the leads can fail the call; per-lead failures are reported
// in BatchReport.Errored.
func (s *ReconciliationService) ValidateAll(ctx context.Context) (domain.BatchReport, error) {
	leads, err := s.leads.ListConverted(ctx)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("listing converted leads: %w", err)
	}

	report := s.batch.ValidateLeads(ctx, leads)
	known := s.refreshInvalid(ctx, report)
	s.metrics.RecordSweep(ctx, report, known)

	return report, nil
}

// refreshInvalid stores the report's invalid leads. A lead whose validation
// errored keeps its previous entry, so an outage neither adds nor clears it.
func (s *ReconciliationService) refreshInvalid(ctx context.Context, report domain.BatchReport) int {
	next := append([]domain.InvalidLead(nil), report.Invalid...)

	if len(report.Errored) > 0 {
		errored := make(map[string]struct{}, len(report.Errored))
		for _, e := range report.Errored {
			errored[e.Lead.ID] = struct{}{}
		}

		previous, err := s.invalid.List(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "reading invalid set failed", "error", err)
		}
		for _, p := range previous {
			if _, ok := errored[p.Lead.ID]; ok {
				next = append(next, p)
			}
		}
	}

	if err := s.invalid.Replace(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "storing invalid set failed", "error", err)
	}
	return len(next)
}

// ValidateOne validates a single converted lead. A lead found valid is
// dropped from the invalid set.
func (s *ReconciliationService) ValidateOne(ctx context.Context, lead domain.Lead) (domain.ValidationResult, error) {
	result, err := s.batch.ValidateOne(ctx, lead)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if result.IsValid() {
		s.forget(ctx, lead.ID)
	}
	return result, nil
}

// ValidateLead loads a lead and validates it.
func (s *ReconciliationService) ValidateLead(ctx context.Context, leadID string) (domain.ValidationResult, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return s.ValidateOne(ctx, lead)
}

// Fix applies action to lead using the given validation. On success the lead
// leaves the invalid set.
func (s *ReconciliationService) Fix(ctx context.Context, lead domain.Lead, v domain.ValidationResult, action domain.Action) (domain.FixResult, error) {
	result, err := s.remediator.Fix(ctx, lead, v, action)
	if err != nil {
		s.metrics.RecordFixes(ctx, action, 0, 1)
		return result, err
	}

	s.metrics.RecordFixes(ctx, action, 1, 0)
	s.forget(ctx, lead.ID)
	return result, nil
}

// FixLead revalidates a lead and applies action to it. Only executable
// actions are accepted. A lead that is no longer converted, or that a
// previous fix already repaired, goes to the executor as well, so repeating
// a fix succeeds as a no-op.
func (s *ReconciliationService) FixLead(ctx context.Context, leadID string, action domain.Action) (domain.FixResult, error) {
	if !action.Executable() {
		return domain.FixResult{LeadID: leadID, Action: action}, &domain.ActionRejectedError{Action: action}
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return domain.FixResult{}, err
	}

	if lead.Status != domain.LeadConverted {
		return s.Fix(ctx, lead, domain.ValidationResult{LeadID: lead.ID}, action)
	}

	v, err := s.ValidateOne(ctx, lead)
	if err != nil {
		return domain.FixResult{}, err
	}

	return s.Fix(ctx, lead, v, action)
}

// BulkFix applies action to every item. Leads fixed successfully leave the
// invalid set; failed ones stay for a later attempt.
func (s *ReconciliationService) BulkFix(ctx context.Context, items []domain.InvalidLead, action domain.Action) domain.BulkResult {
	result := s.remediator.BulkFix(ctx, items, action)
	s.settle(ctx, action, result)
	return result
}

// BulkFixLeads applies action to the given leads from the invalid set, or to
// the whole set when leadIDs is empty. Repeated IDs are fixed once; IDs not
// in the set count as failures.
func (s *ReconciliationService) BulkFixLeads(ctx context.Context, leadIDs []string, action domain.Action) (domain.BulkResult, error) {
	known, err := s.invalid.List(ctx)
	if err != nil {
		return domain.BulkResult{}, fmt.Errorf("reading invalid set: %w", err)
	}

	items := known
	var missing []domain.FixOutcome
	if len(leadIDs) > 0 {
		byID := make(map[string]domain.InvalidLead, len(known))
		for _, k := range known {
			byID[k.Lead.ID] = k
		}

		items = make([]domain.InvalidLead, 0, len(leadIDs))
		seen := make(map[string]struct{}, len(leadIDs))
		for _, id := range leadIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			item, ok := byID[id]
			if !ok {
				err := &domain.ActionNotApplicableError{Action: action, Reason: "lead is not in the invalid set"}
				missing = append(missing, domain.FixOutcome{
					FixResult: domain.FixResult{LeadID: id, Action: action, Message: err.Error()},
					Err:       err,
				})
				continue
			}
			items = append(items, item)
		}
	}

	result := s.remediator.BulkFix(ctx, items, action)
	result.Outcomes = append(result.Outcomes, missing...)
	result.Failed += len(missing)

	s.settle(ctx, action, result)
	return result, nil
}

func (s *ReconciliationService) settle(ctx context.Context, action domain.Action, result domain.BulkResult) {
	s.metrics.RecordFixes(ctx, action, result.Successful, result.Failed)
	s.forget(ctx, result.FixedLeadIDs()...)

	s.logger.InfoContext(ctx, "bulk remediation finished",
		"action", string(action),
		"successful", result.Successful,
		"failed", result.Failed,
	)

	notify(ctx, s.notifier, s.logger, domain.Notification{
		Kind:  domain.NotificationBulkFixed,
		Count: result.Successful,
		Total: result.Successful + result.Failed,
	})
}

// InvalidLeads returns the currently known invalid leads.
func (s *ReconciliationService) InvalidLeads(ctx context.Context) ([]domain.InvalidLead, error) {
	return s.invalid.List(ctx)
}

func (s *ReconciliationService) forget(ctx context.Context, leadIDs ...string) {
	if len(leadIDs) == 0 {
		return
	}
	if err := s.invalid.Remove(ctx, leadIDs...); err != nil {
		s.logger.WarnContext(ctx, "removing leads from invalid set failed",
			"lead_ids", leadIDs,
			"error", err,
		)
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordSweep(context.Context, domain.BatchReport, int) {}
func (noopMetrics) RecordFixes(context.Context, domain.Action, int, int) {}
