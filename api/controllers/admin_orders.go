package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	"github.com/hkb-commerce/storefront-backend/internal/orders"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// AdminOrdersController serves the admin order reads.
type AdminOrdersController struct {
	svc *orders.Service
}

// NewAdminOrdersController wires the controller.
func NewAdminOrdersController(svc *orders.Service) *AdminOrdersController {
	return &AdminOrdersController{svc: svc}
}

type listEnvelope struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

// List returns a filtered page of orders.
func (c *AdminOrdersController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status, err := orders.ParseStatusFilter(q.Get("status"))
	if err != nil {
		responses.WriteError(w, r, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid status filter"))
		return
	}

	filter := orders.ListFilter{
		Status:        status,
		CustomerEmail: q.Get("customer_email"),
		Limit:         queryInt(q.Get("limit")),
		Offset:        queryInt(q.Get("offset")),
	}

	list, total, err := c.svc.List(r.Context(), filter)
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, listEnvelope{Items: list, Total: total})
}

// Get returns one order with its line items.
func (c *AdminOrdersController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		responses.WriteError(w, r, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid order id"))
		return
	}

	order, err := c.svc.Get(r.Context(), id)
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
