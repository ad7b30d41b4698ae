package controllers

import (
	"net/http"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	"github.com/hkb-commerce/storefront-backend/api/validators"
	internalauth "github.com/hkb-commerce/storefront-backend/internal/auth"
)

// TokenRequest is the admin token exchange body.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// AuthController handles admin authentication.
type AuthController struct {
	svc *internalauth.Service
}

// NewAuthController wires the controller.
func NewAuthController(svc *internalauth.Service) *AuthController {
	return &AuthController{svc: svc}
}

// Token exchanges the admin API key for a bearer token.
func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, err)
		return
	}

	result, err := c.svc.ExchangeAPIKey(r.Context(), req.APIKey)
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, result)
}
