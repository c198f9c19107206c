package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status     string             `json:"status"`
	Message    string             `json:"message"`
	Timestamp  string             `json:"timestamp"`
	Uptime     float64            `json:"uptime"`
	Components []component.Health `json:"components,omitempty"`
}

// Health reports "ok" with uptime in seconds, or 503 "unhealthy" when any
// component is down. A degraded component still answers 200.
func Health(message string, started time.Time, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:    "ok",
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(started).Seconds(),
		}

		httpStatus := http.StatusOK
		if checker != nil {
			resp.Components = checker(c.Request.Context())
			switch component.Overall(resp.Components) {
			case component.StatusUnhealthy:
				resp.Status = string(component.StatusUnhealthy)
				httpStatus = http.StatusServiceUnavailable
			case component.StatusDegraded:
				resp.Status = string(component.StatusDegraded)
			}
		}
		c.JSON(httpStatus, resp)
	}
}
