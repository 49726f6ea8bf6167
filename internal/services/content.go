package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"therapy-admin-server/internal/models"
)

// OrderPolicy decides the order value of a newly created lesson or step.
type OrderPolicy string

const (
	// OrderByCount assigns len(siblings)+1. A deleted sibling can make the
	// next value collide with an existing one.
	OrderByCount OrderPolicy = "count"
	// OrderByMax assigns max(order)+1.
	OrderByMax OrderPolicy = "max"
)

// ContentService manages the module/lesson/step tree, articles, forums and journals.
type ContentService struct {
	DB     *gorm.DB
	Policy OrderPolicy
}

// NewContentService creates a new ContentService.
func NewContentService(db *gorm.DB, policy OrderPolicy) *ContentService {
	if policy == "" {
		policy = OrderByCount
	}
	return &ContentService{DB: db, Policy: policy}
}

// ModuleInput holds the mutable module fields.
type ModuleInput struct {
	Title    string
	Subtitle string
	ImageURL string
	Category string
}

// LessonInput holds the mutable lesson fields. A nil Order on create means
// the policy picks one.
type LessonInput struct {
	Title string
	Order *int
}

// StepInput holds the mutable step fields.
type StepInput struct {
	Order          *int
	Type           models.StepType
	Content        string
	PromptQuestion string
}

func (in StepInput) validate() error {
	switch in.Type {
	case models.StepTypeText, models.StepTypeVideo, models.StepTypePrompt, models.StepTypeReflection:
		return nil
	}
	return ErrInvalidInput
}

// prompt keeps the question only on prompt and reflection steps.
func (in StepInput) prompt() *string {
	q := strings.TrimSpace(in.PromptQuestion)
	if !in.Type.AsksQuestion() || q == "" {
		return nil
	}
	return &q
}

func (s *ContentService) nextOrder(tx *gorm.DB, model interface{}, parentColumn, parentID string) (int, error) {
	q := tx.Model(model).Where(parentColumn+" = ?", parentID)
	if s.Policy == OrderByMax {
		var highest int
		if err := q.Select("COALESCE(MAX(sort_order), 0)").Scan(&highest).Error; err != nil {
			return 0, err
		}
		return highest + 1, nil
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// ListModules returns modules newest first. A non-empty authorID limits the
// list to that author's modules.
func (s *ContentService) ListModules(ctx context.Context, authorID string) ([]models.Module, error) {
	q := s.DB.WithContext(ctx).Order("created_at desc")
	if authorID != "" {
		q = q.Where("author_id = ?", authorID)
	}
	var modules []models.Module
	err := q.Find(&modules).Error
	return modules, err
}

// GetModule loads a module with its lessons in order.
func (s *ContentService) GetModule(ctx context.Context, id string) (*models.Module, error) {
	var m models.Module
	err := s.DB.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// CreateModule stores a new module owned by authorID.
func (s *ContentService) CreateModule(ctx context.Context, authorID string, in ModuleInput) (*models.Module, error) {
	m := models.Module{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		ImageURL: in.ImageURL,
		Category: in.Category,
		AuthorID: authorID,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateModule replaces the module's mutable fields.
func (s *ContentService) UpdateModule(ctx context.Context, id string, in ModuleInput) (*models.Module, error) {
	res := s.DB.WithContext(ctx).Model(&models.Module{}).Where("id = ?", id).
		Select("title", "subtitle", "image_url", "category").
		Updates(models.Module{Title: in.Title, Subtitle: in.Subtitle, ImageURL: in.ImageURL, Category: in.Category})
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetModule(ctx, id)
}

// DeleteModule removes the module with all of its lessons and steps.
func (s *ContentService) DeleteModule(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lessonIDs []string
		if err := tx.Model(&models.Lesson{}).Where("module_id = ?", id).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if len(lessonIDs) > 0 {
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.LessonStep{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", lessonIDs).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Module{}))
	})
}

// ListLessons returns a module's lessons in order.
func (s *ContentService) ListLessons(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.DB.WithContext(ctx).Where("module_id = ?", moduleID).Order("sort_order asc").Find(&lessons).Error
	return lessons, err
}

// GetLesson loads a lesson with its steps in order.
func (s *ContentService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var l models.Lesson
	err := s.DB.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// CreateLesson appends a lesson to the module.
func (s *ContentService) CreateLesson(ctx context.Context, moduleID string, in LessonInput) (*models.Lesson, error) {
	var l models.Lesson
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Module{}, "id = ?", moduleID).Error; err != nil {
			return notFound(err)
		}
		l = models.Lesson{Title: in.Title, ModuleID: moduleID}
		if in.Order != nil {
			l.Order = *in.Order
		} else {
			order, err := s.nextOrder(tx, &models.Lesson{}, "module_id", moduleID)
			if err != nil {
				return err
			}
			l.Order = order
		}
		return tx.Create(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLesson replaces the lesson's title and, when given, its order.
func (s *ContentService) UpdateLesson(ctx context.Context, id string, in LessonInput) (*models.Lesson, error) {
	updates := map[string]interface{}{"title": in.Title}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	res := s.DB.WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", id).Updates(updates)
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetLesson(ctx, id)
}

// DeleteLesson removes the lesson and its steps.
func (s *ContentService) DeleteLesson(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", id).Delete(&models.LessonStep{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.Lesson{}))
	})
}

// GetStep loads one step.
func (s *ContentService) GetStep(ctx context.Context, id string) (*models.LessonStep, error) {
	var st models.LessonStep
	if err := s.DB.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// CreateStep appends a step to the lesson.
func (s *ContentService) CreateStep(ctx context.Context, lessonID string, in StepInput) (*models.LessonStep, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var st models.LessonStep
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Lesson{}, "id = ?", lessonID).Error; err != nil {
			return notFound(err)
		}
		st = models.LessonStep{
			Type:           in.Type,
			Content:        in.Content,
			PromptQuestion: in.prompt(),
			LessonID:       lessonID,
		}
		if in.Order != nil {
			st.Order = *in.Order
		} else {
			order, err := s.nextOrder(tx, &models.LessonStep{}, "lesson_id", lessonID)
			if err != nil {
				return err
			}
			st.Order = order
		}
		return tx.Create(&st).Error
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStep replaces the step's fields, including its type and order.
func (s *ContentService) UpdateStep(ctx context.Context, id string, in StepInput) (*models.LessonStep, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"type":            in.Type,
		"content":         in.Content,
		"prompt_question": in.prompt(),
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	res := s.DB.WithContext(ctx).Model(&models.LessonStep{}).Where("id = ?", id).Updates(updates)
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetStep(ctx, id)
}

// DeleteStep removes one step.
func (s *ContentService) DeleteStep(ctx context.Context, id string) error {
	return affected(s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.LessonStep{}))
}

// LessonAuthor returns the author of the module that owns the lesson.
func (s *ContentService) LessonAuthor(ctx context.Context, lessonID string) (string, error) {
	var authors []string
	err := s.DB.WithContext(ctx).Model(&models.Module{}).
		Joins("JOIN lessons ON lessons.module_id = modules.id").
		Where("lessons.id = ?", lessonID).
		Pluck("modules.author_id", &authors).Error
	if err != nil {
		return "", err
	}
	if len(authors) == 0 {
		return "", ErrNotFound
	}
	return authors[0], nil
}

// StepAuthor returns the author of the module that owns the step.
func (s *ContentService) StepAuthor(ctx context.Context, stepID string) (string, error) {
	st, err := s.GetStep(ctx, stepID)
	if err != nil {
		return "", err
	}
	return s.LessonAuthor(ctx, st.LessonID)
}
