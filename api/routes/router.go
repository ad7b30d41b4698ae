package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hkb-commerce/storefront-backend/api/controllers"
	"github.com/hkb-commerce/storefront-backend/api/controllers/webhooks"
	"github.com/hkb-commerce/storefront-backend/api/middleware"
	internalauth "github.com/hkb-commerce/storefront-backend/internal/auth"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface needs.
type RouterParams struct {
	Logger  *logger.Logger
	Redis   *redis.Client
	Config  *config.Config
	Metrics prometheus.Gatherer

	Health      *controllers.HealthController
	Checkout    *controllers.CheckoutController
	Auth        *controllers.AuthController
	AdminOrders *controllers.AdminOrdersController
	AdminSales  *controllers.AdminSalesController
	PayFast     *webhooks.PayFastController

	AuthService *internalauth.Service
}

// NewRouter assembles the chi mux with the shared middleware stack.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(params.Logger))
	r.Use(middleware.Logging)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", params.Health.Live)
	r.Get("/health/ready", params.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(params.Redis, "checkout", params.Config.RateLimit.CheckoutPerMinute)).
			Post("/checkout", params.Checkout.Create)
		r.Post("/webhooks/payfast", params.PayFast.Notify)
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/token", params.Auth.Token)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(params.AuthService))
			r.Get("/orders", params.AdminOrders.List)
			r.Get("/orders/{orderID}", params.AdminOrders.Get)
			r.Get("/sales", params.AdminSales.ListSales)
			r.Get("/reports/summary", params.AdminSales.Summary)
		})
	})

	return r
}
