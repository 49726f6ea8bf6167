package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrSlotTaken          = errors.New("Time slot already taken.")
	ErrInvalidTransition  = errors.New("appointment is not in a state that allows this action")
	ErrAccessDenied       = errors.New("Access Denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotificationFailed = errors.New("patient notification failed")
)

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// affected turns a zero-row write into ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
