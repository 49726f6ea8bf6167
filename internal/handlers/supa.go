package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

const supaUsersPath = "/supa/users"

// SuperAdminHandler serves the platform owner's approval and user pages.
type SuperAdminHandler struct {
	base
	Approvals *services.ApprovalService
}

// NewSuperAdminHandler creates a new SuperAdminHandler.
func NewSuperAdminHandler(approvals *services.ApprovalService, logger *slog.Logger, m *metrics.Metrics) *SuperAdminHandler {
	return &SuperAdminHandler{base: newBase(logger, m), Approvals: approvals}
}

// Dashboard returns the platform counters and the approval queue.
func (h *SuperAdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.Approvals.Stats(ctx)
	if err != nil {
		h.fail(c, "stats", "", err)
		return
	}
	pending, err := h.Approvals.ListPending(ctx)
	if err != nil {
		h.fail(c, "list_pending", "", err)
		return
	}
	utils.Success(c, "Dashboard retrieved successfully", gin.H{"stats": stats, "pending": pending})
}

// ListPending returns profiles awaiting approval.
func (h *SuperAdminHandler) ListPending(c *gin.Context) {
	pending, err := h.Approvals.ListPending(c.Request.Context())
	if err != nil {
		h.fail(c, "list_pending", "", err)
		return
	}
	utils.Success(c, "Pending approvals retrieved successfully", pending)
}

// ApproveRequest carries the role picked for the approved profile.
type ApproveRequest struct {
	Role string `json:"role" form:"role"`
}

// Approve activates a pending profile. The role comes from the request's
// role edits, else the profile's current role, else therapist.
func (h *SuperAdminHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	var req ApproveRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()

	profile, err := h.Approvals.GetProfile(ctx, id)
	if err != nil {
		h.fail(c, "approve", id, err)
		return
	}
	edits := services.ParseRoleEdits(c.Request.PostForm)
	if req.Role != "" {
		edits[id] = models.Role(req.Role)
	}

	approved, err := h.Approvals.ApproveAndAssign(ctx, id, edits.Resolve(profile))
	if err != nil {
		h.fail(c, "approve", id, err)
		return
	}
	h.Logger.Info("profile approved", "id", id, "role", approved.Role)
	utils.Success(c, "User approved successfully", approved)
}

// SaveRoles commits every role_<id> edit submitted with the form.
func (h *SuperAdminHandler) SaveRoles(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	edits := services.ParseRoleEdits(c.Request.PostForm)
	if len(edits) == 0 {
		utils.BadRequest(c, "No role changes submitted")
		return
	}

	updated, err := h.Approvals.ChangeRoles(c.Request.Context(), edits)
	if err != nil {
		h.fail(c, "change_roles", "", err)
		return
	}
	utils.Success(c, "Roles updated successfully", updated)
}

// ListUsers returns every profile.
func (h *SuperAdminHandler) ListUsers(c *gin.Context) {
	profiles, err := h.Approvals.ListProfiles(c.Request.Context())
	if err != nil {
		h.fail(c, "list_profiles", "", err)
		return
	}
	utils.Success(c, "Users retrieved successfully", profiles)
}

// GetUser returns a profile with its appointments and authored content.
func (h *SuperAdminHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	detail, err := h.Approvals.UserDetail(c.Request.Context(), id)
	if err != nil {
		h.failRead(c, supaUsersPath, "user_detail", id, err)
		return
	}
	utils.Success(c, "User retrieved successfully", detail)
}

// ChangeRoleRequest represents the request body for the inline role editor.
type ChangeRoleRequest struct {
	Role string `json:"role" form:"role" binding:"required"`
}

// ChangeRole sets a profile's role.
func (h *SuperAdminHandler) ChangeRole(c *gin.Context) {
	id := c.Param("id")
	var req ChangeRoleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, err := h.Approvals.ChangeRole(c.Request.Context(), id, models.Role(req.Role))
	if err != nil {
		h.fail(c, "change_role", id, err)
		return
	}
	utils.Success(c, "Role updated successfully", p)
}

// Suspend bans a profile.
func (h *SuperAdminHandler) Suspend(c *gin.Context) {
	id := c.Param("id")
	if err := h.Approvals.Suspend(c.Request.Context(), id); err != nil {
		h.fail(c, "suspend", id, err)
		return
	}
	utils.Success(c, "User suspended", gin.H{"id": id, "status": models.ProfileStatusBanned})
}

// Restore reactivates a profile.
func (h *SuperAdminHandler) Restore(c *gin.Context) {
	id := c.Param("id")
	if err := h.Approvals.Restore(c.Request.Context(), id); err != nil {
		h.fail(c, "restore", id, err)
		return
	}
	utils.Success(c, "User restored", gin.H{"id": id, "status": models.ProfileStatusActive})
}

// ToggleStatus flips a profile between active and banned.
func (h *SuperAdminHandler) ToggleStatus(c *gin.Context) {
	id := c.Param("id")
	status, err := h.Approvals.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "toggle_status", id, err)
		return
	}
	utils.Success(c, "Status updated", gin.H{"id": id, "status": status})
}

// DeleteUser removes a profile.
func (h *SuperAdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.Approvals.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_profile", id, err)
		return
	}
	h.Logger.Info("profile deleted", "id", id)
	utils.Success(c, "User deleted successfully", nil)
}
