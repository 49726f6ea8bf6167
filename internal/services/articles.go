package services

import (
	"context"

	"gorm.io/gorm"

	"therapy-admin-server/internal/models"
)

// ArticleInput holds the mutable article fields.
type ArticleInput struct {
	Title    string
	ImageURL string
	Category string
	ReadTime int
	Content  string
}

// ListArticles returns articles newest first. A non-empty authorID limits the
// list to that author's articles.
func (s *ContentService) ListArticles(ctx context.Context, authorID string) ([]models.Article, error) {
	q := s.DB.WithContext(ctx).Preload("Author").Order("created_at desc")
	if authorID != "" {
		q = q.Where("author_id = ?", authorID)
	}
	var articles []models.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].ResolveAuthor()
	}
	return articles, nil
}

// GetArticle loads one article.
func (s *ContentService) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	if err := s.DB.WithContext(ctx).Preload("Author").First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	a.ResolveAuthor()
	return &a, nil
}

// CreateArticle stores a new article by authorID.
func (s *ContentService) CreateArticle(ctx context.Context, authorID string, in ArticleInput) (*models.Article, error) {
	a := models.Article{
		Title:    in.Title,
		AuthorID: authorID,
		ImageURL: in.ImageURL,
		Category: in.Category,
		ReadTime: in.ReadTime,
		Content:  in.Content,
	}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateArticle replaces the article's mutable fields.
func (s *ContentService) UpdateArticle(ctx context.Context, id string, in ArticleInput) (*models.Article, error) {
	res := s.DB.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":     in.Title,
			"image_url": in.ImageURL,
			"category":  in.Category,
			"read_time": in.ReadTime,
			"content":   in.Content,
		})
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetArticle(ctx, id)
}

// DeleteArticle removes the article and its comments.
func (s *ContentService) DeleteArticle(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleComment{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Article{}))
	})
}

// ListArticleComments returns an article's comments newest first.
func (s *ContentService) ListArticleComments(ctx context.Context, articleID string) ([]models.ArticleComment, error) {
	var comments []models.ArticleComment
	err := s.DB.WithContext(ctx).Preload("Author").
		Where("article_id = ?", articleID).
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].ResolveAuthor()
	}
	return comments, nil
}

// DeleteArticleComment removes one article comment.
func (s *ContentService) DeleteArticleComment(ctx context.Context, id string) error {
	return affected(s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ArticleComment{}))
}
