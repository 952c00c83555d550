package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadrecon/internal/app"
)

type IdentityResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type CreateIdentityInput struct {
	Body struct {
		Email       string `json:"email" format:"email" doc:"Account email, unique case-insensitively"`
		DisplayName string `json:"display_name,omitempty" maxLength:"255"`
	}
}

type IdentityOutput struct {
	Body IdentityResponse
}

func registerIdentities(api huma.API, svc *app.IdentityService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-identity",
		Method:      http.MethodPost,
		Path:        "/api/v1/identities",
		Summary:     "Mirror an identity-provider account",
		Tags:        []string{"Identities"},
	}, func(ctx context.Context, input *CreateIdentityInput) (*IdentityOutput, error) {
		identity, err := svc.Register(ctx, input.Body.Email, input.Body.DisplayName)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &IdentityOutput{Body: IdentityResponse{
			ID:          identity.ID,
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
			CreatedAt:   formatTime(identity.CreatedAt),
		}}, nil
	})
}
