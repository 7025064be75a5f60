package handler

import (
	"net/http"

	"astro_consult/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	store repository.StoreInspector
	log   *zap.Logger
}

func NewHealthHandler(store repository.StoreInspector, log *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "Astrology API"})
}

// Test reports store connectivity inline, it never fails the request
func (h *HealthHandler) Test(c *gin.Context) {
	names, err := h.store.CollectionNames(c.Request.Context())
	if err != nil {
		msg := err.Error()
		if r := []rune(msg); len(r) > 80 {
			msg = string(r[:80])
		}
		c.JSON(http.StatusOK, gin.H{"backend": "running", "database": "error: " + msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backend": "running", "database": "connected", "collections": names})
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("store ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
}

func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Root)
	rg.GET("/test", h.Test)
	rg.GET("/health", h.Health)
}
