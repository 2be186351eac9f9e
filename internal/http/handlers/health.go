package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready only when the data store answers.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		pctx, cancel := context.WithTimeout(ctx.Request.Context(), 1*time.Second)
		defer cancel()

		err := h.ping(pctx)

		if err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
