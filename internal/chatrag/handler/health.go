package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz handles GET /healthz. It pings every registered storage backend
// and reports per-component status; any unhealthy backend degrades the
// overall status to 503.
func (h *Handler) Healthz(c *gin.Context) {
	if h.components == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	statuses := h.components.HealthCheckAll(ctx)
	components := make(map[string]gin.H, len(statuses))
	healthy := true
	for name, st := range statuses {
		entry := gin.H{
			"healthy":    st.Healthy,
			"latency_ms": st.Latency.Milliseconds(),
		}
		if st.Error != nil {
			entry["error"] = st.Error.Error()
		}
		if !st.Healthy {
			healthy = false
		}
		components[name] = entry
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "components": components})
}
