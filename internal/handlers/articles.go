package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

// ArticleHandler manages articles and their comments. A scoped handler only
// lists and edits the caller's own articles.
type ArticleHandler struct {
	base
	Content  *services.ContentService
	Scoped   bool
	ListPath string
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(content *services.ContentService, scoped bool, listPath string, logger *slog.Logger, m *metrics.Metrics) *ArticleHandler {
	return &ArticleHandler{base: newBase(logger, m), Content: content, Scoped: scoped, ListPath: listPath}
}

// ArticleRequest represents the request body for creating or updating an article.
type ArticleRequest struct {
	Title    string `json:"title" form:"title" binding:"required"`
	ImageURL string `json:"imageUrl" form:"imageUrl"`
	Category string `json:"category" form:"category"`
	ReadTime int    `json:"readTime" form:"readTime" binding:"gte=0"`
	Content  string `json:"content" form:"content" binding:"required"`
}

func (r ArticleRequest) input() services.ArticleInput {
	return services.ArticleInput{
		Title:    r.Title,
		ImageURL: r.ImageURL,
		Category: r.Category,
		ReadTime: r.ReadTime,
		Content:  r.Content,
	}
}

// load fetches the article and, when scoped, checks the caller wrote it.
func (h *ArticleHandler) load(c *gin.Context, userID, id string) (*models.Article, error) {
	a, err := h.Content.GetArticle(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if h.Scoped && a.AuthorID != userID {
		return nil, services.ErrAccessDenied
	}
	return a, nil
}

// ListArticles returns articles, limited to the caller's when scoped.
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID := ""
	if h.Scoped {
		authorID = userID
	}
	articles, err := h.Content.ListArticles(c.Request.Context(), authorID)
	if err != nil {
		h.fail(c, "list_articles", authorID, err)
		return
	}
	utils.Success(c, "Articles retrieved successfully", articles)
}

// CreateArticle stores an article written by the caller.
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ArticleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !models.InCategories(models.ArticleCategories, req.Category) {
		utils.BadRequest(c, "Unknown category")
		return
	}

	a, err := h.Content.CreateArticle(c.Request.Context(), userID, req.input())
	if err != nil {
		h.fail(c, "create_article", "", err)
		return
	}
	utils.Created(c, "Article created successfully", a)
}

// GetArticle returns an article with its comments.
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	a, err := h.load(c, userID, id)
	if err != nil {
		h.failRead(c, h.ListPath, "get_article", id, err)
		return
	}
	comments, err := h.Content.ListArticleComments(c.Request.Context(), id)
	if err != nil {
		h.failRead(c, h.ListPath, "list_article_comments", id, err)
		return
	}
	utils.Success(c, "Article retrieved successfully", gin.H{"article": a, "comments": comments})
}

// UpdateArticle replaces an article's fields.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var req ArticleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !models.InCategories(models.ArticleCategories, req.Category) {
		utils.BadRequest(c, "Unknown category")
		return
	}
	if _, err := h.load(c, userID, id); err != nil {
		h.fail(c, "update_article", id, err)
		return
	}

	a, err := h.Content.UpdateArticle(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, "update_article", id, err)
		return
	}
	utils.Success(c, "Article updated successfully", a)
}

// DeleteArticle removes an article and its comments.
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, err := h.load(c, userID, id); err != nil {
		h.fail(c, "delete_article", id, err)
		return
	}
	if err := h.Content.DeleteArticle(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_article", id, err)
		return
	}
	h.Logger.Info("article deleted", "id", id, "by", userID)
	utils.Success(c, "Article deleted successfully", nil)
}

// ListComments returns an article's comments.
func (h *ArticleHandler) ListComments(c *gin.Context) {
	id := c.Param("id")
	comments, err := h.Content.ListArticleComments(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "list_article_comments", id, err)
		return
	}
	utils.Success(c, "Comments retrieved successfully", comments)
}

// DeleteComment removes one article comment.
func (h *ArticleHandler) DeleteComment(c *gin.Context) {
	id := c.Param("id")
	if err := h.Content.DeleteArticleComment(c.Request.Context(), id); err != nil {
		h.fail(c, "delete_article_comment", id, err)
		return
	}
	utils.Success(c, "Comment deleted successfully", nil)
}
