package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes order reads for the admin API.
type Service struct {
	repo Repository
}

// NewService validates params and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service requires a repository")
	}
	return &Service{repo: params.Repo}, nil
}

// Get returns one order with its line items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a filtered page of orders plus the unfiltered-page total.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status filter %q", filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// ParseStatusFilter converts a query param into a status filter, allowing
// empty.
func ParseStatusFilter(raw string) (enums.OrderStatus, error) {
	if raw == "" {
		return "", nil
	}
	return enums.ParseOrderStatus(raw)
}
