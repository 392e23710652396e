package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medirent/backend/internal/infrastructure/persistence"
	"github.com/medirent/backend/internal/interfaces/http/dto"
)

// SystemHandler exposes liveness and readiness probes
type SystemHandler struct {
	db        *persistence.Database
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{db: db, startedAt: time.Now()}
}

// RegisterRoutes registers probe routes on the engine root
func (h *SystemHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}

// Health reports process liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// Ready reports whether the service can accept traffic
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("UNAVAILABLE", "La base de données est inaccessible"))
		return
	}

	payload := gin.H{"status": "ready"}
	if stats, err := h.db.Stats(); err == nil {
		payload["database"] = gin.H{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}
	}
	c.JSON(http.StatusOK, payload)
}
