package controllers

import (
	"net/http"
	"time"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	"github.com/hkb-commerce/storefront-backend/internal/reports"
	"github.com/hkb-commerce/storefront-backend/internal/sales"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// AdminSalesController serves ledger and report reads.
type AdminSalesController struct {
	sales   *sales.Service
	reports reports.Repository
}

// NewAdminSalesController wires the controller.
func NewAdminSalesController(salesSvc *sales.Service, reportsRepo reports.Repository) *AdminSalesController {
	return &AdminSalesController{sales: salesSvc, reports: reportsRepo}
}

// ListSales returns a filtered page of ledger entries.
func (c *AdminSalesController) ListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, to, err := parsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}

	list, total, err := c.sales.List(r.Context(), sales.ListFilter{
		CustomerEmail: q.Get("customer_email"),
		From:          from,
		To:            to,
		Limit:         queryInt(q.Get("limit")),
		Offset:        queryInt(q.Get("offset")),
	})
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, listEnvelope{Items: list, Total: total})
}

// Summary returns aggregate totals from the report read model for a period.
func (c *AdminSalesController) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, to, err := parsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}

	summary, err := c.reports.Summarize(r.Context(), from, to)
	if err != nil {
		responses.WriteError(w, r, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, summary)
}

func parsePeriod(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if fromRaw != "" {
		if from, err = time.Parse(time.RFC3339, fromRaw); err != nil {
			return from, to, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid from timestamp")
		}
	}
	if toRaw != "" {
		if to, err = time.Parse(time.RFC3339, toRaw); err != nil {
			return from, to, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid to timestamp")
		}
	}
	return from, to, nil
}
