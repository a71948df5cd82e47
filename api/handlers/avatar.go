package handlers

import (
	"encoding/base64"
	"io"
	"net/http"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	span "heroes/heroes_go_service/pkg/jaeger"
	"heroes/heroes_go_service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAvatarSize = 2 << 20

func (h *Handler) GetAvatarData(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_avatar.GetAvatarData", userID)
	defer dbSpan.Finish()

	avatar, err := h.strg.Avatar().GetByUserID(ctx, userID)
	if err != nil {
		h.handleError(c, "GetAvatarData", err)
		return
	}

	data, err := h.objects.Get(ctx, avatar.ObjectKey)
	if err != nil {
		h.handleError(c, "GetAvatarData", err)
		return
	}

	c.JSON(http.StatusOK, models.AvatarData{
		Avatar: *avatar,
		Data:   base64.StdEncoding.EncodeToString(data),
	})
}

func (h *Handler) GetAvatarImage(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_avatar.GetAvatarImage", userID)
	defer dbSpan.Finish()

	avatar, err := h.strg.Avatar().GetByUserID(ctx, userID)
	if err != nil {
		h.handleError(c, "GetAvatarImage", err)
		return
	}

	data, err := h.objects.Get(ctx, avatar.ObjectKey)
	if err != nil {
		h.handleError(c, "GetAvatarImage", err)
		return
	}

	c.Data(http.StatusOK, avatar.MimeType, data)
}

// UploadAvatar stores the multipart "file" image and points the user's avatar at it.
func (h *Handler) UploadAvatar(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if !canActFor(c, userID) {
		h.forbidden(c, "cannot change another user's avatar")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		h.badRequest(c, "file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.badRequest(c, "file is unreadable")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil || len(data) > maxAvatarSize {
		h.badRequest(c, "file is unreadable")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !config.ImageMimeTypes[mimeType] {
		mimeType = http.DetectContentType(data)
	}
	if !config.ImageMimeTypes[mimeType] {
		h.badRequest(c, "file must be an image")
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_avatar.UploadAvatar", userID)
	defer dbSpan.Finish()

	h.log.Info("---UploadAvatar--->>>", logger.Int64("user_id", userID), logger.String("mime_type", mimeType))

	if _, err := h.strg.User().GetByID(ctx, userID); err != nil {
		h.handleError(c, "UploadAvatar", err)
		return
	}

	key := "avatars/" + uuid.NewString()
	if err := h.objects.Put(ctx, key, mimeType, data); err != nil {
		h.handleError(c, "UploadAvatar", err)
		return
	}

	avatar, err := h.strg.Avatar().Upsert(ctx, &models.Avatar{
		UserID:    userID,
		MimeType:  mimeType,
		ObjectKey: key,
	})
	if err != nil {
		h.handleError(c, "UploadAvatar", err)
		return
	}

	c.JSON(http.StatusOK, avatar)
}
