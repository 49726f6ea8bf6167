package models

// Category values offered by the module and article editors.
const (
	CategoryMentalHealth    = "Mental Health"
	CategoryFaithSpirit     = "Faith & Spirit"
	CategoryRelationships   = "Relationships"
	CategoryMindfulness     = "Mindfulness"
	CategoryPersonalGrowth  = "Personal Growth"
	CategoryPersonalStories = "Personal Stories"
)

// ModuleCategories are offered by the module editor.
var ModuleCategories = []string{
	CategoryMentalHealth,
	CategoryFaithSpirit,
	CategoryRelationships,
	CategoryMindfulness,
	CategoryPersonalGrowth,
}

// ArticleCategories are offered by the article editor.
var ArticleCategories = []string{
	CategoryMentalHealth,
	CategoryFaithSpirit,
	CategoryRelationships,
	CategoryMindfulness,
	CategoryPersonalStories,
}

// InCategories reports whether category is empty or one of allowed.
func InCategories(allowed []string, category string) bool {
	if category == "" {
		return true
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// StepType represents the kind of content block in a lesson
type StepType string

const (
	StepTypeText       StepType = "text"
	StepTypeVideo      StepType = "video"
	StepTypePrompt     StepType = "prompt"
	StepTypeReflection StepType = "reflection"
)

// AsksQuestion reports whether steps of this type carry a prompt question.
func (t StepType) AsksQuestion() bool {
	return t == StepTypePrompt || t == StepTypeReflection
}

// Module is a learning-content container
type Module struct {
	BaseModel
	Title    string `gorm:"size:255;not null" json:"title"`
	Subtitle string `gorm:"size:255" json:"subtitle"`
	ImageURL string `gorm:"size:512" json:"imageUrl"`
	Category string `gorm:"size:64" json:"category"`
	AuthorID string `gorm:"size:36;index" json:"authorId"`

	// Relations
	Lessons []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

// Lesson belongs to a Module and owns ordered steps
type Lesson struct {
	BaseModel
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"column:sort_order;index" json:"order"`
	ModuleID string `gorm:"size:36;index;not null" json:"moduleId"`

	// Relations
	Steps []LessonStep `gorm:"foreignKey:LessonID" json:"steps,omitempty"`
}

// LessonStep is a single content block inside a Lesson
type LessonStep struct {
	BaseModel
	Order          int      `gorm:"column:sort_order;index" json:"order"`
	Type           StepType `gorm:"size:20;not null" json:"type"`
	Content        string   `gorm:"type:text" json:"content"`
	PromptQuestion *string  `gorm:"type:text" json:"promptQuestion"`
	LessonID       string   `gorm:"size:36;index;not null" json:"lessonId"`
}

// Article is a long-form piece of rich text content
type Article struct {
	BaseModel
	Title    string `gorm:"size:255;not null" json:"title"`
	AuthorID string `gorm:"size:36;index" json:"authorId"`
	ImageURL string `gorm:"size:512" json:"imageUrl"`
	Category string `gorm:"size:64" json:"category"`
	ReadTime int    `json:"readTime"`
	Content  string `gorm:"type:text" json:"content"`

	Author     *Profile `gorm:"foreignKey:AuthorID" json:"-"`
	AuthorName string   `gorm:"-" json:"authorName"`
}

// ArticleComment is a reader comment on an Article
type ArticleComment struct {
	BaseModel
	Content   string `gorm:"type:text;not null" json:"content"`
	AuthorID  string `gorm:"size:36;index" json:"authorId"`
	ArticleID string `gorm:"size:36;index;not null" json:"articleId"`

	Author     *Profile `gorm:"foreignKey:AuthorID" json:"-"`
	AuthorName string   `gorm:"-" json:"authorName"`
}

// Forum is a community discussion category
type Forum struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:64" json:"icon"`
}

// Thread is a discussion started inside a Forum
type Thread struct {
	BaseModel
	Title        string `gorm:"size:255;not null" json:"title"`
	OriginalPost string `gorm:"type:text" json:"originalPost"`
	AuthorID     string `gorm:"size:36;index" json:"authorId"`
	ForumID      string `gorm:"size:36;index;not null" json:"forumId"`

	Author     *Profile `gorm:"foreignKey:AuthorID" json:"-"`
	AuthorName string   `gorm:"-" json:"authorName"`
}

// Comment is a reply inside a Thread
type Comment struct {
	BaseModel
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID string `gorm:"size:36;index" json:"authorId"`
	ThreadID string `gorm:"size:36;index;not null" json:"threadId"`

	Author     *Profile `gorm:"foreignKey:AuthorID" json:"-"`
	AuthorName string   `gorm:"-" json:"authorName"`
}

// JournalEntry is a user's private journal record, moderated by staff admins
type JournalEntry struct {
	BaseModel
	UserID  string `gorm:"size:36;index" json:"userId"`
	Title   string `gorm:"size:255" json:"title"`
	Content string `gorm:"type:text" json:"content"`
	Mood    string `gorm:"size:32" json:"mood"`

	User     *Profile `gorm:"foreignKey:UserID" json:"-"`
	UserName string   `gorm:"-" json:"userName"`
}

// ResolveAuthor fills AuthorName from the preloaded author.
func (a *Article) ResolveAuthor() {
	a.AuthorName = DisplayName(a.Author, DeletedUserName)
}

// ResolveAuthor fills AuthorName from the preloaded author.
func (c *ArticleComment) ResolveAuthor() {
	c.AuthorName = DisplayName(c.Author, AnonymousName)
}

// ResolveAuthor fills AuthorName from the preloaded author.
func (t *Thread) ResolveAuthor() {
	t.AuthorName = DisplayName(t.Author, DeletedUserName)
}

// ResolveAuthor fills AuthorName from the preloaded author.
func (c *Comment) ResolveAuthor() {
	c.AuthorName = DisplayName(c.Author, AnonymousName)
}

// ResolveUser fills UserName from the preloaded user.
func (j *JournalEntry) ResolveUser() {
	j.UserName = DisplayName(j.User, DeletedUserName)
}
