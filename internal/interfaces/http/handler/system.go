package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	docs      string
	redoc     string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// WithDocs advertises the documentation entry points in the root response
func (h *SystemHandler) WithDocs(docs, redoc string) *SystemHandler {
	h.docs = docs
	h.redoc = redoc
	return h
}

// APIInfoResponse represents the root endpoint response
// @name HandlerAPIInfoResponse
type APIInfoResponse struct {
	Message   string `json:"message" example:"Invoice Management API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
	Docs      string `json:"docs,omitempty" example:"/docs"`
	Redoc     string `json:"redoc,omitempty" example:"/redoc"`
}

// HealthResponse represents the health check response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"up"`
}

// Root godoc
// @ID           getAPIInfo
// @Summary      API information
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[APIInfoResponse]
// @Router       / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	h.Success(c, APIInfoResponse{
		Message:   h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Docs:      h.docs,
		Redoc:     h.redoc,
	})
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports service health including database reachability
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "healthy", Database: "up"}
	if h.db == nil {
		h.Success(c, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Database health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}

	h.Success(c, resp)
}
