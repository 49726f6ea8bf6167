package services

import (
	"context"

	"gorm.io/gorm"

	"therapy-admin-server/internal/models"
)

// ForumInput holds the mutable forum fields.
type ForumInput struct {
	Title       string
	Description string
	Icon        string
}

// ListForums returns forums oldest first.
func (s *ContentService) ListForums(ctx context.Context) ([]models.Forum, error) {
	var forums []models.Forum
	err := s.DB.WithContext(ctx).Order("created_at asc").Find(&forums).Error
	return forums, err
}

// GetForum loads one forum.
func (s *ContentService) GetForum(ctx context.Context, id string) (*models.Forum, error) {
	var f models.Forum
	if err := s.DB.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// CreateForum stores a new forum.
func (s *ContentService) CreateForum(ctx context.Context, in ForumInput) (*models.Forum, error) {
	f := models.Forum{Title: in.Title, Description: in.Description, Icon: in.Icon}
	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateForum replaces the forum's mutable fields.
func (s *ContentService) UpdateForum(ctx context.Context, id string, in ForumInput) (*models.Forum, error) {
	res := s.DB.WithContext(ctx).Model(&models.Forum{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": in.Title, "description": in.Description, "icon": in.Icon})
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetForum(ctx, id)
}

// DeleteForum removes the forum with its threads and their comments.
func (s *ContentService) DeleteForum(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var threadIDs []string
		if err := tx.Model(&models.Thread{}).Where("forum_id = ?", id).Pluck("id", &threadIDs).Error; err != nil {
			return err
		}
		if len(threadIDs) > 0 {
			if err := tx.Where("thread_id IN ?", threadIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", threadIDs).Delete(&models.Thread{}).Error; err != nil {
				return err
			}
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Forum{}))
	})
}

// ListThreads returns a forum's threads newest first with author names.
func (s *ContentService) ListThreads(ctx context.Context, forumID string) ([]models.Thread, error) {
	var threads []models.Thread
	err := s.DB.WithContext(ctx).Preload("Author").
		Where("forum_id = ?", forumID).
		Order("created_at desc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	for i := range threads {
		threads[i].ResolveAuthor()
	}
	return threads, nil
}

// GetThread loads a thread with its comments oldest first.
func (s *ContentService) GetThread(ctx context.Context, id string) (*models.Thread, []models.Comment, error) {
	db := s.DB.WithContext(ctx)
	var t models.Thread
	if err := db.Preload("Author").First(&t, "id = ?", id).Error; err != nil {
		return nil, nil, notFound(err)
	}
	t.ResolveAuthor()

	var comments []models.Comment
	if err := db.Preload("Author").Where("thread_id = ?", id).Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, nil, err
	}
	for i := range comments {
		comments[i].ResolveAuthor()
	}
	return &t, comments, nil
}

// CreateThread opens a thread in the forum.
func (s *ContentService) CreateThread(ctx context.Context, forumID, authorID, title, post string) (*models.Thread, error) {
	if _, err := s.GetForum(ctx, forumID); err != nil {
		return nil, err
	}
	t := models.Thread{Title: title, OriginalPost: post, AuthorID: authorID, ForumID: forumID}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteThread removes the thread and its comments.
func (s *ContentService) DeleteThread(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Thread{}))
	})
}

// AddComment replies to a thread.
func (s *ContentService) AddComment(ctx context.Context, threadID, authorID, content string) (*models.Comment, error) {
	if err := s.DB.WithContext(ctx).Select("id").First(&models.Thread{}, "id = ?", threadID).Error; err != nil {
		return nil, notFound(err)
	}
	c := models.Comment{Content: content, AuthorID: authorID, ThreadID: threadID}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComment removes one thread comment.
func (s *ContentService) DeleteComment(ctx context.Context, id string) error {
	return affected(s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{}))
}

// ListJournals returns every journal entry newest first.
func (s *ContentService) ListJournals(ctx context.Context) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := s.DB.WithContext(ctx).Preload("User").Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].ResolveUser()
	}
	return entries, nil
}

// DeleteJournal removes one journal entry.
func (s *ContentService) DeleteJournal(ctx context.Context, id string) error {
	return affected(s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.JournalEntry{}))
}
