package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

const meterName = "github.com/neomorfeo/leadrecon/internal/adapter/otel"

// Compile-time check: Metrics implements domain.ReconciliationMetrics.
var _ domain.ReconciliationMetrics = (*Metrics)(nil)

// Metrics records reconciliation outcomes as OpenTelemetry instruments.
type Metrics struct {
	sweeps       metric.Int64Counter
	validated    metric.Int64Counter
	invalidLeads metric.Int64Gauge
	fixes        metric.Int64Counter
}

// NewMetrics registers the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	sweeps, err := meter.Int64Counter("leadrecon.sweeps",
		metric.WithDescription("Completed reconciliation sweeps"))
	if err != nil {
		return nil, fmt.Errorf("creating sweeps counter: %w", err)
	}

	validated, err := meter.Int64Counter("leadrecon.leads_validated",
		metric.WithDescription("Converted leads checked, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating validated counter: %w", err)
	}

	invalidLeads, err := meter.Int64Gauge("leadrecon.invalid_leads",
		metric.WithDescription("Leads currently known to be invalid"))
	if err != nil {
		return nil, fmt.Errorf("creating invalid leads gauge: %w", err)
	}

	fixes, err := meter.Int64Counter("leadrecon.fixes",
		metric.WithDescription("Remediation attempts, by action and result"))
	if err != nil {
		return nil, fmt.Errorf("creating fixes counter: %w", err)
	}

	return &Metrics{
		sweeps:       sweeps,
		validated:    validated,
		invalidLeads: invalidLeads,
		fixes:        fixes,
	}, nil
}

func (m *Metrics) RecordSweep(ctx context.Context, report domain.BatchReport, knownInvalid int) {
	m.sweeps.Add(ctx, 1)
	m.validated.Add(ctx, int64(len(report.Valid)), metric.WithAttributes(attribute.String("outcome", "valid")))
	m.validated.Add(ctx, int64(len(report.Invalid)), metric.WithAttributes(attribute.String("outcome", "invalid")))
	m.validated.Add(ctx, int64(len(report.Errored)), metric.WithAttributes(attribute.String("outcome", "errored")))
	m.invalidLeads.Record(ctx, int64(knownInvalid))
}

func (m *Metrics) RecordFixes(ctx context.Context, action domain.Action, successful, failed int) {
	if successful > 0 {
		m.fixes.Add(ctx, int64(successful), metric.WithAttributes(
			attribute.String("action", string(action)),
			attribute.String("result", "success"),
		))
	}
	if failed > 0 {
		m.fixes.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("action", string(action)),
			attribute.String("result", "failure"),
		))
	}
}
