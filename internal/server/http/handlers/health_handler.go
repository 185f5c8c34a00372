package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AliXAbdullah03/nge-brain/internal/server/http/middleware"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	facade HealthFacade
}

func NewHealthHandler(facade HealthFacade) *HealthHandler {
	return &HealthHandler{facade: facade}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.facade.Health(c.Request.Context()); err != nil {
		_ = c.Error(err)
		middleware.AbortWithProblem(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database is unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
