package controllers

import (
	"net/http"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	"github.com/hkb-commerce/storefront-backend/api/validators"
	"github.com/hkb-commerce/storefront-backend/internal/checkout"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
)

// CheckoutRequest is the public checkout body.
type CheckoutRequest struct {
	CustomerName    string                `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerEmail   string                `json:"customer_email" validate:"required,email"`
	CustomerPhone   string                `json:"customer_phone" validate:"omitempty,max=32"`
	DeliveryAddress string                `json:"delivery_address" validate:"required,max=500"`
	PaymentMethod   string                `json:"payment_method" validate:"required,oneof=payfast card eft"`
	Currency        string                `json:"currency" validate:"omitempty,len=3"`
	TotalCents      int64                 `json:"total_cents" validate:"required,gt=0"`
	Items           []CheckoutItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// CheckoutItemRequest is one cart line in the request.
type CheckoutItemRequest struct {
	ProductID      string `json:"product_id" validate:"required,max=64"`
	Name           string `json:"name" validate:"required,max=200"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"required,gt=0"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
}

// CheckoutController handles order initiation.
type CheckoutController struct {
	svc *checkout.Service
}

// NewCheckoutController wires the controller.
func NewCheckoutController(svc *checkout.Service) *CheckoutController {
	return &CheckoutController{svc: svc}
}

// Create validates the body, creates the pending order, and returns the
// signed gateway redirect.
func (c *CheckoutController) Create(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "ZAR"
	}

	items := make([]checkout.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, checkout.ItemInput{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}

	result, err := c.svc.Initiate(r.Context(), checkout.Input{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   enums.PaymentMethod(req.PaymentMethod),
		Currency:        currency,
		TotalCents:      req.TotalCents,
		Items:           items,
	})
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, result)
}
