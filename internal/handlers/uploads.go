package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/storage"
	"therapy-admin-server/internal/utils"
)

// maxImageSize caps uploaded cover and avatar images.
const maxImageSize = 5 << 20

// UploadHandler stores cover images and avatars in object storage.
type UploadHandler struct {
	base
	Store    storage.ObjectStore
	Profiles *services.ProfileService
	now      func() time.Time
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store storage.ObjectStore, profiles *services.ProfileService, logger *slog.Logger, m *metrics.Metrics) *UploadHandler {
	return &UploadHandler{base: newBase(logger, m), Store: store, Profiles: profiles, now: time.Now}
}

// upload reads the "file" form field and stores it under entityType for the caller.
func (h *UploadHandler) upload(c *gin.Context, entityType, userID string) (string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "An image file is required")
		return "", false
	}
	if file.Size > maxImageSize {
		utils.Error(c, http.StatusRequestEntityTooLarge, "Image must be 5 MB or smaller")
		return "", false
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.BadRequest(c, "Only image uploads are allowed")
		return "", false
	}

	src, err := file.Open()
	if err != nil {
		utils.BadRequest(c, "Could not read uploaded file")
		return "", false
	}
	defer src.Close()

	key := storage.ObjectPath(entityType, userID, file.Filename, h.now())
	if err := h.Store.Upload(c.Request.Context(), key, src, file.Size, contentType); err != nil {
		h.Logger.Error("upload failed", "key", key, "error", err)
		h.Metrics.StoreError("upload")
		utils.InternalServerError(c, "Upload failed: "+err.Error())
		return "", false
	}
	return h.Store.PublicURL(key), true
}

// UploadCover stores a module or article cover image and returns its URL.
func (h *UploadHandler) UploadCover(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var entityType string
	switch c.Param("entity") {
	case storage.EntityModule:
		entityType = storage.EntityModule
	case storage.EntityArticle:
		entityType = storage.EntityArticle
	default:
		utils.NotFound(c, "Unknown upload target")
		return
	}

	url, ok := h.upload(c, entityType, userID)
	if !ok {
		return
	}
	utils.Created(c, "Image uploaded successfully", gin.H{"url": url})
}

// UploadAvatar stores the caller's avatar and saves its URL on the profile.
func (h *UploadHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	url, ok := h.upload(c, storage.EntityAvatar, userID)
	if !ok {
		return
	}
	if err := h.Profiles.SetAvatar(c.Request.Context(), userID, url); err != nil {
		h.fail(c, "set_avatar", userID, err)
		return
	}
	utils.Success(c, "Avatar updated successfully", gin.H{"url": url})
}
