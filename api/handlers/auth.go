package handlers

import (
	"net/http"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	span "heroes/heroes_go_service/pkg/jaeger"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const currentUserKey = "current_user"

// Login checks the credentials and returns the user they belong to. The body may be JSON or a
// form with username and password.
func (h *Handler) Login(c *gin.Context) {
	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_auth.Login", nil)
	defer dbSpan.Finish()

	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, "username and password are required")
		return
	}

	h.log.Info("---Login--->>>", logger.String("username", req.Username))

	userID, err := h.strg.LoginInfo().Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.handleError(c, "Login", err)
		return
	}

	user, err := h.strg.User().GetByID(ctx, userID)
	if err != nil {
		h.handleError(c, "Login", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// BasicAuth resolves HTTP Basic credentials to a user and stores it on the context.
func (h *Handler) BasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			h.unauthorized(c)
			return
		}

		ctx := c.Request.Context()

		userID, err := h.strg.LoginInfo().Authenticate(ctx, username, password)
		if errors.Is(err, storage.ErrInvalidCredentials) {
			h.unauthorized(c)
			return
		}
		if err != nil {
			h.handleError(c, "BasicAuth", err)
			return
		}

		user, err := h.strg.User().GetByID(ctx, userID)
		if err != nil {
			h.handleError(c, "BasicAuth", err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequirePrivilege rejects users without privilege. It must run after BasicAuth.
func (h *Handler) RequirePrivilege(privilege string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).HasPrivilege(privilege) {
			h.forbidden(c, privilege+" privilege required")
			return
		}
		c.Next()
	}
}

// canActFor reports whether the current user may change userID's data: its own, or anyone's as ADMIN.
func canActFor(c *gin.Context, userID int64) bool {
	user := currentUser(c)
	return user != nil && (user.ID == userID || user.HasPrivilege(config.PrivilegeAdmin))
}

func (h *Handler) forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: msg})
}

func (h *Handler) unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="heroes"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
}

func currentUser(c *gin.Context) *models.User {
	user, _ := c.Get(currentUserKey)
	u, _ := user.(*models.User)
	return u
}
