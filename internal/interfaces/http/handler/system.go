package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pension/backend/internal/interfaces/http/dto"
)

// Version is the API version reported by the health endpoint
const Version = "1.0"

// UserCounter reports how many profiles are registered
type UserCounter interface {
	UserCount() int
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	catalog   CatalogReader
	users     UserCounter
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler; users may be nil
func NewSystemHandler(name string, reader CatalogReader, users UserCounter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		catalog:   reader,
		users:     users,
		startTime: time.Now(),
	}
}

// Health reports liveness and whether a catalog is loaded.
// A process without a catalog is still healthy; it answers 503 on catalog routes.
// GET /api/v1/health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "healthy", Version: Version}
	if cat := h.catalog.Current(); cat != nil {
		resp.Products = cat.Len()
		resp.DataLoaded = cat.Len() > 0
	}
	if h.users != nil {
		resp.Users = h.users.UserCount()
	}
	h.Success(c, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns the service name, version and uptime.
// GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
