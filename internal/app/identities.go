package app

import (
	"context"
	"strings"
	"time"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// IdentityService mirrors identity-provider accounts into the local directory.
type IdentityService struct {
	directory domain.IdentityDirectory
}

// NewIdentityService creates an identity service.
func NewIdentityService(directory domain.IdentityDirectory) *IdentityService {
	return &IdentityService{directory: directory}
}

// Register records an account. Emails are unique case-insensitively.
func (s *IdentityService) Register(ctx context.Context, email, displayName string) (domain.Identity, error) {
	identity := domain.Identity{
		ID:          generateID(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.directory.Create(ctx, identity); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}
