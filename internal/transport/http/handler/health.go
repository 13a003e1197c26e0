package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DependencyCheck returns nil when the dependency is reachable.
type DependencyCheck func(ctx context.Context) error

type HealthHandler struct {
	appName         string
	modelConfigured bool
	gcpConfigured   bool
	startedAt       time.Time
	checks          map[string]DependencyCheck
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(appName string, modelConfigured, gcpConfigured bool, startedAt time.Time, checks map[string]DependencyCheck) *HealthHandler {
	return &HealthHandler{
		appName:         appName,
		modelConfigured: modelConfigured,
		gcpConfigured:   gcpConfigured,
		startedAt:       startedAt,
		checks:          checks,
	}
}

// Check always answers 200; a failing dependency only changes status to
// "degraded".
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]dependencyStatus, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = dependencyStatus{OK: false, Message: err.Error()}
			status = "degraded"
			continue
		}
		deps[name] = dependencyStatus{OK: true}
	}

	body := gin.H{
		"status":            status,
		"message":           h.appName + " is running",
		"gemini_configured": h.modelConfigured,
		"gcp_configured":    h.gcpConfigured,
		"uptime_sec":        int(time.Since(h.startedAt).Seconds()),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(http.StatusOK, body)
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "API is running.")
}
