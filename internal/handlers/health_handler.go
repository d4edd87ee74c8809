package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store's liveness.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	pingDB    Pinger
	pingRedis Pinger
}

func NewHealthHandler(pingDB, pingRedis Pinger) *HealthHandler {
	return &HealthHandler{
		pingDB:    pingDB,
		pingRedis: pingRedis,
	}
}

// Healthcheck handles GET /api/healthcheck. It reports process liveness
// only; backing stores have their own probes.
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthDB handles GET /api/health/db
func (h *HealthHandler) HealthDB(c *gin.Context) {
	h.probe(c, "postgres", h.pingDB)
}

// HealthRedis handles GET /api/health/redis
func (h *HealthHandler) HealthRedis(c *gin.Context) {
	h.probe(c, "redis", h.pingRedis)
}

func (h *HealthHandler) probe(c *gin.Context, name string, ping Pinger) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := ping(ctx); err != nil {
		attachError(c, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": name,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": name})
}
