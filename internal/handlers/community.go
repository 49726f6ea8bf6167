package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

// CommunityHandler serves forums, threads, comments and journal moderation.
type CommunityHandler struct {
	base
	Content  *services.ContentService
	ListPath string
}

// NewCommunityHandler creates a new CommunityHandler.
func NewCommunityHandler(content *services.ContentService, listPath string, logger *slog.Logger, m *metrics.Metrics) *CommunityHandler {
	return &CommunityHandler{base: newBase(logger, m), Content: content, ListPath: listPath}
}

// ForumRequest represents the request body for creating or updating a forum.
type ForumRequest struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description"`
	Icon        string `json:"icon" form:"icon"`
}

// ThreadRequest represents the request body for opening a thread.
type ThreadRequest struct {
	Title        string `json:"title" form:"title" binding:"required"`
	OriginalPost string `json:"originalPost" form:"originalPost" binding:"required"`
}

// CommentRequest represents the request body for a thread reply.
type CommentRequest struct {
	Content string `json:"content" form:"content" binding:"required"`
}

// ListForums returns every forum.
func (h *CommunityHandler) ListForums(c *gin.Context) {
	forums, err := h.Content.ListForums(c.Request.Context())
	if err != nil {
		h.fail(c, "list_forums", "", err)
		return
	}
	utils.Success(c, "Forums retrieved successfully", forums)
}

// CreateForum stores a new forum.
func (h *CommunityHandler) CreateForum(c *gin.Context) {
	var req ForumRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	f, err := h.Content.CreateForum(c.Request.Context(), services.ForumInput{Title: req.Title, Description: req.Description, Icon: req.Icon})
	if err != nil {
		h.fail(c, "create_forum", "", err)
		return
	}
	utils.Created(c, "Forum created successfully", f)
}

// GetForum returns a forum with its threads, newest first.
func (h *CommunityHandler) GetForum(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	f, err := h.Content.GetForum(ctx, id)
	if err != nil {
		h.failRead(c, h.ListPath, "get_forum", id, err)
		return
	}
	threads, err := h.Content.ListThreads(ctx, id)
	if err != nil {
		h.failRead(c, h.ListPath, "list_threads", id, err)
		return
	}
	utils.Success(c, "Forum retrieved successfully", gin.H{"forum": f, "threads": threads})
}

// UpdateForum replaces a forum's fields.
func (h *CommunityHandler) UpdateForum(c *gin.Context) {
	id := c.Param("id")
	var req ForumRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	f, err := h.Content.UpdateForum(c.Request.Context(), id, services.ForumInput{Title: req.Title, Description: req.Description, Icon: req.Icon})
	if err != nil {
		h.fail(c, "update_forum", id, err)
		return
	}
	utils.Success(c, "Forum updated successfully", f)
}

// DeleteForum removes a forum with its threads and comments.
func (h *CommunityHandler) DeleteForum(c *gin.Context) {
	id := c.Param("id")
	if err := h.Content.DeleteForum(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_forum", id, err)
		return
	}
	utils.Success(c, "Forum deleted successfully", nil)
}

// CreateThread opens a thread in the forum as the caller.
func (h *CommunityHandler) CreateThread(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	forumID := c.Param("id")
	var req ThreadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	t, err := h.Content.CreateThread(c.Request.Context(), forumID, userID, req.Title, req.OriginalPost)
	if err != nil {
		h.fail(c, "create_thread", forumID, err)
		return
	}
	utils.Created(c, "Thread created successfully", t)
}

// GetThread returns a thread with its comments, oldest first.
func (h *CommunityHandler) GetThread(c *gin.Context) {
	id := c.Param("id")
	t, comments, err := h.Content.GetThread(c.Request.Context(), id)
	if err != nil {
		h.failRead(c, h.ListPath, "get_thread", id, err)
		return
	}
	utils.Success(c, "Thread retrieved successfully", gin.H{"thread": t, "comments": comments})
}

// DeleteThread removes a thread and its comments.
func (h *CommunityHandler) DeleteThread(c *gin.Context) {
	id := c.Param("id")
	if err := h.Content.DeleteThread(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_thread", id, err)
		return
	}
	utils.Success(c, "Thread deleted successfully", nil)
}

// AddComment replies to a thread as the caller.
func (h *CommunityHandler) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	threadID := c.Param("id")
	var req CommentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	comment, err := h.Content.AddComment(c.Request.Context(), threadID, userID, req.Content)
	if err != nil {
		h.fail(c, "add_comment", threadID, err)
		return
	}
	utils.Created(c, "Comment added successfully", comment)
}

// DeleteComment removes one thread comment.
func (h *CommunityHandler) DeleteComment(c *gin.Context) {
	id := c.Param("id")
	if err := h.Content.DeleteComment(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_comment", id, err)
		return
	}
	utils.Success(c, "Comment deleted successfully", nil)
}

// ListJournals returns every journal entry for moderation.
func (h *CommunityHandler) ListJournals(c *gin.Context) {
	entries, err := h.Content.ListJournals(c.Request.Context())
	if err != nil {
		h.fail(c, "list_journals", "", err)
		return
	}
	utils.Success(c, "Journals retrieved successfully", entries)
}

// DeleteJournal removes one journal entry.
func (h *CommunityHandler) DeleteJournal(c *gin.Context) {
	id := c.Param("id")
	if err := h.Content.DeleteJournal(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_journal", id, err)
		return
	}
	utils.Success(c, "Journal entry deleted successfully", nil)
}
