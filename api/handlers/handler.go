package handlers

import (
	"net/http"
	"strconv"

	"heroes/heroes_go_service/api/middleware"
	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/helper"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type Handler struct {
	cfg     config.Config
	log     logger.LoggerI
	strg    storage.StorageI
	objects storage.ObjectStoreI
}

func NewHandler(cfg config.Config, log logger.LoggerI, strg storage.StorageI, objects storage.ObjectStoreI) *Handler {
	return &Handler{
		cfg:     cfg,
		log:     log,
		strg:    strg,
		objects: objects,
	}
}

// handleError maps err to a status and writes the error body. Server side failures are logged
// with the operation name, client errors are not.
func (h *Handler) handleError(c *gin.Context, op string, err error) {
	status, msg := helper.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("---"+op+"--->>>", logger.Error(err), logger.String("request_id", c.GetString(middleware.RequestIDKey)))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: msg})
}

var errBadID = errors.New("id must be a positive integer")

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
