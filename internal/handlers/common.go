package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/auth"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/middleware"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

// base carries the logger and metrics every handler reports through.
type base struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newBase(logger *slog.Logger, m *metrics.Metrics) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{Logger: logger, Metrics: m}
}

// fail logs err against the operation and writes the matching response.
// Unexpected store errors are passed through with their own message.
func (b base) fail(c *gin.Context, op, id string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		b.Logger.Warn("record not found", "op", op, "id", id)
		utils.NotFound(c, "Record not found")
	case errors.Is(err, services.ErrAccessDenied):
		b.Logger.Warn("access denied", "op", op, "id", id)
		utils.Forbidden(c, services.NoticeAccessDenied)
	case errors.Is(err, services.ErrInvalidInput):
		utils.BadRequest(c, "Invalid input")
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrSlotTaken):
		b.Logger.Warn("conflicting change", "op", op, "id", id, "error", err)
		utils.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		utils.BadRequest(c, err.Error())
	default:
		b.Logger.Error("store operation failed", "op", op, "id", id, "error", err)
		b.Metrics.StoreError(op)
		utils.InternalServerError(c, err.Error())
	}
}

// failRead handles a failed detail read by sending the caller back to the
// owning list page with a notice.
func (b base) failRead(c *gin.Context, listPath, op, id string, err error) {
	notice := "Could not load the requested item."
	switch {
	case errors.Is(err, services.ErrNotFound):
		b.Logger.Warn("record not found", "op", op, "id", id)
		notice = "The requested item no longer exists."
	case errors.Is(err, services.ErrAccessDenied):
		b.Logger.Warn("access denied", "op", op, "id", id)
		notice = services.NoticeAccessDenied
	default:
		b.Logger.Error("store read failed", "op", op, "id", id, "error", err)
		b.Metrics.StoreError(op)
	}
	utils.RedirectWithNotice(c, listPath, notice)
}

// currentUser returns the caller's id or writes a 401.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok || userID == "" {
		utils.Unauthorized(c, "Authentication required")
		return "", false
	}
	return userID, true
}
