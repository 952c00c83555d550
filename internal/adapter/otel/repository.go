package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

const tracerName = "github.com/neomorfeo/leadrecon/internal/adapter/otel"

// recordError marks the span as failed.
func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// recordLookup treats notFound as an answer rather than a failure: probes
// expect it.
func recordLookup(span trace.Span, err, notFound error) {
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("result.found", true))
	case errors.Is(err, notFound):
		span.SetAttributes(attribute.Bool("result.found", false))
	default:
		recordError(span, err)
	}
}

// TracingTenantRepository wraps a domain.TenantRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingTenantRepository struct {
	next   domain.TenantRepository
	tracer trace.Tracer
}

// Compile-time check: TracingTenantRepository implements domain.TenantRepository.
var _ domain.TenantRepository = (*TracingTenantRepository)(nil)

// NewTracingTenantRepository creates a tracing decorator around the given repository.
func NewTracingTenantRepository(next domain.TenantRepository) *TracingTenantRepository {
	return &TracingTenantRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingTenantRepository) Create(ctx context.Context, tenant domain.Tenant) error {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.Create",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.slug", tenant.Slug),
			attribute.String("lead.id", tenant.LeadID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, tenant)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (r *TracingTenantRepository) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetByID",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer span.End()

	tenant, err := r.next.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
	}
	return tenant, err
}

func (r *TracingTenantRepository) GetByLead(ctx context.Context, leadID string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetByLead",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	tenant, err := r.next.GetByLead(ctx, leadID)
	recordLookup(span, err, domain.ErrTenantNotFound)
	if err == nil {
		span.SetAttributes(attribute.String("tenant.status", string(tenant.Status)))
	}
	return tenant, err
}

func (r *TracingTenantRepository) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetBySlug",
		trace.WithAttributes(attribute.String("tenant.slug", slug)),
	)
	defer span.End()

	tenant, err := r.next.GetBySlug(ctx, slug)
	if err != nil {
		recordError(span, err)
	}
	return tenant, err
}

func (r *TracingTenantRepository) List(ctx context.Context, filter domain.TenantFilter) ([]domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	tenants, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	return tenants, err
}

func (r *TracingTenantRepository) Update(ctx context.Context, tenant domain.Tenant) error {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.Update",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.status", string(tenant.Status)),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, tenant)
	if err != nil {
		recordError(span, err)
	}
	return err
}

// TracingLeadRepository wraps a domain.LeadRepository with OpenTelemetry tracing.
type TracingLeadRepository struct {
	next   domain.LeadRepository
	tracer trace.Tracer
}

// Compile-time check: TracingLeadRepository implements domain.LeadRepository.
var _ domain.LeadRepository = (*TracingLeadRepository)(nil)

// NewTracingLeadRepository creates a tracing decorator around the given repository.
func NewTracingLeadRepository(next domain.LeadRepository) *TracingLeadRepository {
	return &TracingLeadRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingLeadRepository) Create(ctx context.Context, lead domain.Lead) error {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.Create",
		trace.WithAttributes(attribute.String("lead.id", lead.ID)),
	)
	defer span.End()

	err := r.next.Create(ctx, lead)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (r *TracingLeadRepository) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.GetByID",
		trace.WithAttributes(attribute.String("lead.id", id)),
	)
	defer span.End()

	lead, err := r.next.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
	}
	return lead, err
}

func (r *TracingLeadRepository) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	leads, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(leads)))
	}
	return leads, err
}

func (r *TracingLeadRepository) ListConverted(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.ListConverted")
	defer span.End()

	leads, err := r.next.ListConverted(ctx)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(leads)))
	}
	return leads, err
}

func (r *TracingLeadRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LeadStatus, note string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("lead.id", id),
			attribute.String("lead.status.from", string(from)),
			attribute.String("lead.status.to", string(to)),
		),
	)
	defer span.End()

	lead, err := r.next.UpdateStatus(ctx, id, from, to, note)
	switch {
	case errors.Is(err, domain.ErrStatusConflict):
		// Lost an optimistic race; callers treat this as a no-op.
		span.SetAttributes(attribute.Bool("lead.status.conflict", true))
	case err != nil:
		recordError(span, err)
	}
	return lead, err
}

func (r *TracingLeadRepository) SetTenant(ctx context.Context, leadID, tenantID string) error {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.SetTenant",
		trace.WithAttributes(
			attribute.String("lead.id", leadID),
			attribute.String("tenant.id", tenantID),
		),
	)
	defer span.End()

	err := r.next.SetTenant(ctx, leadID, tenantID)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (r *TracingLeadRepository) History(ctx context.Context, leadID string) ([]domain.StatusChange, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.History",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	changes, err := r.next.History(ctx, leadID)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(changes)))
	}
	return changes, err
}
