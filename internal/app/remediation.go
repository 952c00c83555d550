package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Remediator applies remediation actions to drifted leads. Every action is
// idempotent: running it again, or concurrently with another actor, ends in
// the same state.
type Remediator struct {
	leads       domain.LeadRepository
	repairer    domain.RelationshipRepairer
	validator   domain.LeadTransitionValidator
	concurrency int
	logger      *slog.Logger
}

// NewRemediator creates a remediator.
func NewRemediator(
	leads domain.LeadRepository,
	repairer domain.RelationshipRepairer,
	validator domain.LeadTransitionValidator,
	concurrency int,
	logger *slog.Logger,
) *Remediator {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Remediator{
		leads:       leads,
		repairer:    repairer,
		validator:   validator,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Fix applies action to lead. The result is always populated; err is non-nil
// whenever Success is false.
func (r *Remediator) Fix(ctx context.Context, lead domain.Lead, v domain.ValidationResult, action domain.Action) (domain.FixResult, error) {
	var (
		msg string
		err error
	)

	switch action {
	case domain.ActionRevertStatus:
		msg, err = r.revert(ctx, lead, v)
	case domain.ActionRetryConversion:
		msg, err = r.retry(ctx, lead, v)
	default:
		err = &domain.ActionRejectedError{Action: action}
	}

	if err != nil {
		r.logger.WarnContext(ctx, "remediation failed",
			"lead_id", lead.ID,
			"action", string(action),
			"error", err,
		)
		return domain.FixResult{LeadID: lead.ID, Action: action, Message: err.Error()}, err
	}

	r.logger.InfoContext(ctx, "remediation applied",
		"lead_id", lead.ID,
		"action", string(action),
		"message", msg,
	)
	return domain.FixResult{LeadID: lead.ID, Action: action, Success: true, Message: msg}, nil
}

func (r *Remediator) revert(ctx context.Context, lead domain.Lead, v domain.ValidationResult) (string, error) {
	if v.TenantExists {
		return "", &domain.ActionNotApplicableError{
			Action: domain.ActionRevertStatus,
			Reason: "tenant " + v.TenantID + " exists and would be orphaned",
		}
	}
	if lead.Status != domain.LeadConverted {
		return fmt.Sprintf("lead is %s, nothing to revert", lead.Status), nil
	}

	next, err := r.validator.Apply(ctx, lead.Status, domain.LeadEventRevertConversion)
	if err != nil {
		return "", err
	}

	note := "reconciliation"
	if issues := v.IssueMessages(); len(issues) > 0 {
		note += ": " + strings.Join(issues, ", ")
	}

	_, err = r.leads.UpdateStatus(ctx, lead.ID, domain.LeadConverted, next, note)
	if errors.Is(err, domain.ErrStatusConflict) {
		return "lead already moved on, nothing to revert", nil
	}
	if err != nil {
		return "", fmt.Errorf("reverting lead %s: %w", lead.ID, err)
	}

	return fmt.Sprintf("status reverted to %s", next), nil
}

func (r *Remediator) retry(ctx context.Context, lead domain.Lead, v domain.ValidationResult) (string, error) {
	current, err := r.leads.GetByID(ctx, lead.ID)
	if err != nil {
		return "", fmt.Errorf("re-reading lead %s: %w", lead.ID, err)
	}
	if current.Status != domain.LeadConverted {
		return fmt.Sprintf("lead is %s, nothing to retry", current.Status), nil
	}

	if !v.TenantExists || v.TenantID == "" {
		return "", &domain.ActionNotApplicableError{
			Action: domain.ActionRetryConversion,
			Reason: "no tenant to link",
		}
	}

	email := v.OwnerEmail
	if email == "" {
		email = current.ContactEmail
	}

	m, err := r.repairer.RepairRelationship(ctx, v.TenantID, email)
	if err != nil {
		return "", fmt.Errorf("repairing relationship for lead %s: %w", lead.ID, err)
	}

	return fmt.Sprintf("admin relationship %s restored", m.ID), nil
}

// BulkFix applies action to every item with bounded concurrency. A failure
// on one item is recorded in its outcome and never stops the others.
func (r *Remediator) BulkFix(ctx context.Context, items []domain.InvalidLead, action domain.Action) domain.BulkResult {
	outcomes := make([]domain.FixOutcome, len(items))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, item := range items {
		g.Go(func() error {
			res, err := r.Fix(ctx, item.Lead, item.Validation, action)
			outcomes[i] = domain.FixOutcome{FixResult: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := domain.BulkResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Success {
			result.Successful++
		} else {
			result.Failed++
		}
	}
	return result
}
