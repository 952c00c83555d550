// Package ratelimit throttles calls to external collaborators.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Compile-time check: IdentityResolver implements domain.IdentityResolver.
var _ domain.IdentityResolver = (*IdentityResolver)(nil)

// IdentityResolver wraps a domain.IdentityResolver with a token bucket, so a
// sweep over many leads cannot flood the identity provider.
type IdentityResolver struct {
	next    domain.IdentityResolver
	limiter *rate.Limiter
}

// NewIdentityResolver allows rps lookups per second with the given burst.
// A non-positive rps disables limiting.
func NewIdentityResolver(next domain.IdentityResolver, rps float64, burst int) *IdentityResolver {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &IdentityResolver{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// FindByEmail waits for a token, then delegates. A cancelled wait is a
// probe failure, never a missing identity.
func (r *IdentityResolver) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Identity{}, fmt.Errorf("waiting for identity lookup slot: %w", err)
	}
	return r.next.FindByEmail(ctx, email)
}
