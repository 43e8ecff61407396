// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"metals_backend/internal/feature/prices/domain/entity"
)

// ProviderStatus exposes the terminal session state to health checks.
type ProviderStatus interface {
	ProviderStatus() entity.ConnectionStatus
}

// HealthHandler serves liveness and readiness endpoints including the
// terminal connection state and store table counts.
type HealthHandler struct {
	db       *gorm.DB
	provider ProviderStatus
}

// NewHealthHandler creates a HealthHandler over the store and provider.
func NewHealthHandler(db *gorm.DB, provider ProviderStatus) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

// Healthz handles the bare /healthz liveness probe. It responds to any
// method and prevents caching.
func Healthz(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}

// Health handles GET /health/. A terminal outage degrades the provider
// block but never fails the check; only an unreachable store does.
func (h *HealthHandler) Health(c *gin.Context) {
	dbReport, ok := h.databaseReport(c)
	status := http.StatusOK
	overall := "healthy"
	if !ok {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	ps := h.provider.ProviderStatus()
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "metals-backend",
		"provider": gin.H{
			"available": ps.Available,
			"connected": ps.Connected,
			"message":   ps.Message,
		},
		"database": dbReport,
	})
}

// HealthDB handles GET /health/db with per-table row counts.
func (h *HealthHandler) HealthDB(c *gin.Context) {
	report, ok := h.databaseReport(c)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HealthHandler) databaseReport(c *gin.Context) (gin.H, bool) {
	tables := []string{"tickers", "price_data", "settlement_prices", "custom_instruments"}
	counts := gin.H{}
	for _, table := range tables {
		var n int64
		if err := h.db.WithContext(c.Request.Context()).Table(table).Count(&n).Error; err != nil {
			return gin.H{"status": "error", "message": err.Error()}, false
		}
		counts[table] = n
	}
	return gin.H{"status": "ok", "tables": counts}, true
}
