package controllers

import (
	"net/http"

	"github.com/hkb-commerce/storefront-backend/api/responses"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/redis"
)

// HealthController serves the liveness and readiness probes.
type HealthController struct {
	db    *db.Client
	redis *redis.Client
}

// NewHealthController wires the probe handlers.
func NewHealthController(dbClient *db.Client, redisClient *redis.Client) *HealthController {
	return &HealthController{db: dbClient, redis: redisClient}
}

// Live reports process liveness.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the backing stores are reachable.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	if err := c.db.Ping(r.Context()); err != nil {
		responses.WriteError(w, r, err)
		return
	}
	if c.redis != nil {
		if err := c.redis.Ping(r.Context()); err != nil {
			responses.WriteError(w, r, err)
			return
		}
	}
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}
