package handlers

import (
	"net/http"
	"strings"

	span "heroes/heroes_go_service/pkg/jaeger"
	"heroes/heroes_go_service/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_user.GetUser", id)
	defer dbSpan.Finish()

	user, err := h.strg.User().GetByID(ctx, id)
	if err != nil {
		h.handleError(c, "GetUser", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUserByUsername(c *gin.Context) {
	username := c.Param("username")

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_user.GetUserByUsername", username)
	defer dbSpan.Finish()

	user, err := h.strg.User().GetByUsername(ctx, username)
	if err != nil {
		h.handleError(c, "GetUserByUsername", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateTheme(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if !canActFor(c, id) {
		h.forbidden(c, "cannot change another user's theme")
		return
	}

	theme := strings.TrimSpace(c.Query("theme"))
	if theme == "" {
		h.badRequest(c, "theme is required")
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_user.UpdateTheme", theme)
	defer dbSpan.Finish()

	h.log.Info("---UpdateTheme--->>>", logger.Int64("id", id), logger.String("theme", theme))

	user, err := h.strg.User().UpdateTheme(ctx, id, theme)
	if err != nil {
		h.handleError(c, "UpdateTheme", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
