package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// TracingIdentityResolver wraps a domain.IdentityResolver with tracing.
type TracingIdentityResolver struct {
	next   domain.IdentityResolver
	tracer trace.Tracer
}

// Compile-time check: TracingIdentityResolver implements domain.IdentityResolver.
var _ domain.IdentityResolver = (*TracingIdentityResolver)(nil)

// NewTracingIdentityResolver creates a tracing decorator around the given resolver.
func NewTracingIdentityResolver(next domain.IdentityResolver) *TracingIdentityResolver {
	return &TracingIdentityResolver{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

// FindByEmail does not put the address on the span.
func (r *TracingIdentityResolver) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	ctx, span := r.tracer.Start(ctx, "IdentityResolver.FindByEmail")
	defer span.End()

	identity, err := r.next.FindByEmail(ctx, email)
	recordLookup(span, err, domain.ErrIdentityNotFound)
	if err == nil {
		span.SetAttributes(attribute.String("identity.id", identity.ID))
	}
	return identity, err
}

// TracingMembershipRepository wraps a domain.MembershipRepository with tracing.
type TracingMembershipRepository struct {
	next   domain.MembershipRepository
	tracer trace.Tracer
}

// Compile-time check: TracingMembershipRepository implements domain.MembershipRepository.
var _ domain.MembershipRepository = (*TracingMembershipRepository)(nil)

// NewTracingMembershipRepository creates a tracing decorator around the given repository.
func NewTracingMembershipRepository(next domain.MembershipRepository) *TracingMembershipRepository {
	return &TracingMembershipRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingMembershipRepository) Find(ctx context.Context, tenantID, identityID string, role domain.Role) (domain.Membership, error) {
	ctx, span := r.tracer.Start(ctx, "MembershipRepository.Find",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("identity.id", identityID),
			attribute.String("membership.role", string(role)),
		),
	)
	defer span.End()

	m, err := r.next.Find(ctx, tenantID, identityID, role)
	recordLookup(span, err, domain.ErrMembershipNotFound)
	return m, err
}

func (r *TracingMembershipRepository) Upsert(ctx context.Context, tenantID, identityID string, role domain.Role) (domain.Membership, error) {
	ctx, span := r.tracer.Start(ctx, "MembershipRepository.Upsert",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("identity.id", identityID),
			attribute.String("membership.role", string(role)),
		),
	)
	defer span.End()

	m, err := r.next.Upsert(ctx, tenantID, identityID, role)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.String("membership.id", m.ID))
	}
	return m, err
}
