package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// All returns every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Session{},
		&Profile{},
		&Module{},
		&Lesson{},
		&LessonStep{},
		&Article{},
		&ArticleComment{},
		&Forum{},
		&Thread{},
		&Comment{},
		&JournalEntry{},
		&Appointment{},
		&LiveSession{},
		&Notification{},
	}
}

// GormConfig is shared by every dialector. References to deleted profiles are
// allowed to dangle, so no foreign key constraints are created.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// InitDB initializes database connection
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "mysql", "":
		dialector = mysql.Open(config.DSN)
	case "postgres":
		dialector = postgres.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, GormConfig())
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(All()...); err != nil {
		return nil, err
	}

	return db, nil
}
