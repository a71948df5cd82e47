package handlers

import (
	"context"
	"net/http"
	"time"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.strg.Ping(ctx); err != nil {
		h.log.Warn("---Health--->>>", logger.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "database unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
