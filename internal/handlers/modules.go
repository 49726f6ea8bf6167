package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

// ModuleHandler manages modules, lessons and steps. A scoped handler only
// lists and edits the caller's own modules.
type ModuleHandler struct {
	base
	Content  *services.ContentService
	Scoped   bool
	ListPath string
}

// NewModuleHandler creates a new ModuleHandler.
func NewModuleHandler(content *services.ContentService, scoped bool, listPath string, logger *slog.Logger, m *metrics.Metrics) *ModuleHandler {
	return &ModuleHandler{base: newBase(logger, m), Content: content, Scoped: scoped, ListPath: listPath}
}

// ModuleRequest represents the request body for creating or updating a module.
type ModuleRequest struct {
	Title    string `json:"title" form:"title" binding:"required"`
	Subtitle string `json:"subtitle" form:"subtitle"`
	ImageURL string `json:"imageUrl" form:"imageUrl"`
	Category string `json:"category" form:"category"`
}

func (r ModuleRequest) input() services.ModuleInput {
	return services.ModuleInput{Title: r.Title, Subtitle: r.Subtitle, ImageURL: r.ImageURL, Category: r.Category}
}

// LessonRequest represents the request body for creating or updating a lesson.
type LessonRequest struct {
	Title string `json:"title" form:"title" binding:"required"`
	Order *int   `json:"order" form:"order" binding:"omitempty,gte=0"`
}

// StepRequest represents the request body for creating or updating a step.
type StepRequest struct {
	Type           string `json:"type" form:"type" binding:"required,oneof=text video prompt reflection"`
	Content        string `json:"content" form:"content"`
	PromptQuestion string `json:"promptQuestion" form:"promptQuestion"`
	Order          *int   `json:"order" form:"order" binding:"omitempty,gte=0"`
}

func (r StepRequest) input() services.StepInput {
	return services.StepInput{
		Order:          r.Order,
		Type:           models.StepType(r.Type),
		Content:        r.Content,
		PromptQuestion: r.PromptQuestion,
	}
}

// owns checks the caller against the module author when the handler is scoped.
func (h *ModuleHandler) owns(c *gin.Context, userID, op, id string, author func() (string, error)) bool {
	if !h.Scoped {
		return true
	}
	owner, err := author()
	if err != nil {
		h.fail(c, op, id, err)
		return false
	}
	if owner != userID {
		h.fail(c, op, id, services.ErrAccessDenied)
		return false
	}
	return true
}

func (h *ModuleHandler) moduleAuthor(c *gin.Context, id string) func() (string, error) {
	return func() (string, error) {
		m, err := h.Content.GetModule(c.Request.Context(), id)
		if err != nil {
			return "", err
		}
		return m.AuthorID, nil
	}
}

func (h *ModuleHandler) lessonAuthor(c *gin.Context, id string) func() (string, error) {
	return func() (string, error) { return h.Content.LessonAuthor(c.Request.Context(), id) }
}

func (h *ModuleHandler) stepAuthor(c *gin.Context, id string) func() (string, error) {
	return func() (string, error) { return h.Content.StepAuthor(c.Request.Context(), id) }
}

// ListModules returns modules, limited to the caller's when scoped.
func (h *ModuleHandler) ListModules(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID := ""
	if h.Scoped {
		authorID = userID
	}
	modules, err := h.Content.ListModules(c.Request.Context(), authorID)
	if err != nil {
		h.fail(c, "list_modules", authorID, err)
		return
	}
	utils.Success(c, "Modules retrieved successfully", modules)
}

// CreateModule stores a module authored by the caller.
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ModuleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !models.InCategories(models.ModuleCategories, req.Category) {
		utils.BadRequest(c, "Unknown category")
		return
	}

	m, err := h.Content.CreateModule(c.Request.Context(), userID, req.input())
	if err != nil {
		h.fail(c, "create_module", "", err)
		return
	}
	utils.Created(c, "Module created successfully", m)
}

// GetModule returns a module with its lessons.
func (h *ModuleHandler) GetModule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	m, err := h.Content.GetModule(c.Request.Context(), id)
	if err == nil && h.Scoped && m.AuthorID != userID {
		err = services.ErrAccessDenied
	}
	if err != nil {
		h.failRead(c, h.ListPath, "get_module", id, err)
		return
	}
	utils.Success(c, "Module retrieved successfully", m)
}

// UpdateModule replaces a module's fields.
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req ModuleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !models.InCategories(models.ModuleCategories, req.Category) {
		utils.BadRequest(c, "Unknown category")
		return
	}
	if !h.owns(c, userID, "update_module", id, h.moduleAuthor(c, id)) {
		return
	}

	m, err := h.Content.UpdateModule(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, "update_module", id, err)
		return
	}
	utils.Success(c, "Module updated successfully", m)
}

// DeleteModule removes a module and everything under it.
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.owns(c, userID, "delete_module", id, h.moduleAuthor(c, id)) {
		return
	}
	if err := h.Content.DeleteModule(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_module", id, err)
		return
	}
	h.Logger.Info("module deleted", "id", id, "by", userID)
	utils.Success(c, "Module deleted successfully", nil)
}

// CreateLesson appends a lesson to the module.
func (h *ModuleHandler) CreateLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	moduleID := c.Param("id")
	var req LessonRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.owns(c, userID, "create_lesson", moduleID, h.moduleAuthor(c, moduleID)) {
		return
	}

	l, err := h.Content.CreateLesson(c.Request.Context(), moduleID, services.LessonInput{Title: req.Title, Order: req.Order})
	if err != nil {
		h.fail(c, "create_lesson", moduleID, err)
		return
	}
	utils.Created(c, "Lesson created successfully", l)
}

// GetLesson returns a lesson with its steps.
func (h *ModuleHandler) GetLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if h.Scoped {
		owner, err := h.Content.LessonAuthor(c.Request.Context(), id)
		if err == nil && owner != userID {
			err = services.ErrAccessDenied
		}
		if err != nil {
			h.failRead(c, h.ListPath, "get_lesson", id, err)
			return
		}
	}
	l, err := h.Content.GetLesson(c.Request.Context(), id)
	if err != nil {
		h.failRead(c, h.ListPath, "get_lesson", id, err)
		return
	}
	utils.Success(c, "Lesson retrieved successfully", l)
}

// UpdateLesson replaces a lesson's title and order.
func (h *ModuleHandler) UpdateLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req LessonRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.owns(c, userID, "update_lesson", id, h.lessonAuthor(c, id)) {
		return
	}

	l, err := h.Content.UpdateLesson(c.Request.Context(), id, services.LessonInput{Title: req.Title, Order: req.Order})
	if err != nil {
		h.fail(c, "update_lesson", id, err)
		return
	}
	utils.Success(c, "Lesson updated successfully", l)
}

// DeleteLesson removes a lesson and its steps.
func (h *ModuleHandler) DeleteLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.owns(c, userID, "delete_lesson", id, h.lessonAuthor(c, id)) {
		return
	}
	if err := h.Content.DeleteLesson(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_lesson", id, err)
		return
	}
	utils.Success(c, "Lesson deleted successfully", nil)
}

// CreateStep appends a step to the lesson.
func (h *ModuleHandler) CreateStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lessonID := c.Param("id")
	var req StepRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.owns(c, userID, "create_step", lessonID, h.lessonAuthor(c, lessonID)) {
		return
	}

	st, err := h.Content.CreateStep(c.Request.Context(), lessonID, req.input())
	if err != nil {
		h.fail(c, "create_step", lessonID, err)
		return
	}
	utils.Created(c, "Step created successfully", st)
}

// GetStep returns one step.
func (h *ModuleHandler) GetStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if h.Scoped {
		owner, err := h.Content.StepAuthor(c.Request.Context(), id)
		if err == nil && owner != userID {
			err = services.ErrAccessDenied
		}
		if err != nil {
			h.failRead(c, h.ListPath, "get_step", id, err)
			return
		}
	}
	st, err := h.Content.GetStep(c.Request.Context(), id)
	if err != nil {
		h.failRead(c, h.ListPath, "get_step", id, err)
		return
	}
	utils.Success(c, "Step retrieved successfully", st)
}

// UpdateStep replaces a step's fields.
func (h *ModuleHandler) UpdateStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req StepRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.owns(c, userID, "update_step", id, h.stepAuthor(c, id)) {
		return
	}

	st, err := h.Content.UpdateStep(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, "update_step", id, err)
		return
	}
	utils.Success(c, "Step updated successfully", st)
}

// DeleteStep removes one step.
func (h *ModuleHandler) DeleteStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.owns(c, userID, "delete_step", id, h.stepAuthor(c, id)) {
		return
	}
	if err := h.Content.DeleteStep(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_step", id, err)
		return
	}
	utils.Success(c, "Step deleted successfully", nil)
}
