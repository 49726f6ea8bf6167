package services

import (
	"context"
	"strings"
	"time"

	"therapy-admin-server/internal/models"
)

// LiveSessionInput holds the mutable live session fields.
type LiveSessionInput struct {
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	MeetingLink string
}

func (in LiveSessionInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || !in.EndTime.After(in.StartTime) {
		return ErrInvalidInput
	}
	return nil
}

// ListLiveSessions returns the host's sessions by start time.
func (s *BookingService) ListLiveSessions(ctx context.Context, hostID string) ([]models.LiveSession, error) {
	var sessions []models.LiveSession
	err := s.DB.WithContext(ctx).Preload("Host").
		Where("host_id = ?", hostID).
		Order("start_time asc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].ResolveHost()
	}
	return sessions, nil
}

// GetLiveSession loads a session hosted by hostID.
func (s *BookingService) GetLiveSession(ctx context.Context, id, hostID string) (*models.LiveSession, error) {
	var ls models.LiveSession
	if err := s.DB.WithContext(ctx).Preload("Host").First(&ls, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if ls.HostID != hostID {
		return nil, ErrAccessDenied
	}
	ls.ResolveHost()
	return &ls, nil
}

// CreateLiveSession schedules an active session hosted by hostID.
func (s *BookingService) CreateLiveSession(ctx context.Context, hostID string, in LiveSessionInput) (*models.LiveSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ls := models.LiveSession{
		HostID:      hostID,
		Title:       strings.TrimSpace(in.Title),
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		MeetingLink: in.MeetingLink,
		IsActive:    true,
	}
	if err := s.DB.WithContext(ctx).Create(&ls).Error; err != nil {
		return nil, err
	}
	return &ls, nil
}

// UpdateLiveSession replaces the session's fields. active toggles visibility.
func (s *BookingService) UpdateLiveSession(ctx context.Context, id, hostID string, in LiveSessionInput, active bool) (*models.LiveSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetLiveSession(ctx, id, hostID); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Model(&models.LiveSession{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":        strings.TrimSpace(in.Title),
			"start_time":   in.StartTime.UTC(),
			"end_time":     in.EndTime.UTC(),
			"meeting_link": in.MeetingLink,
			"is_active":    active,
		}).Error
	if err != nil {
		return nil, err
	}
	return s.GetLiveSession(ctx, id, hostID)
}

// DeleteLiveSession removes a session hosted by hostID.
func (s *BookingService) DeleteLiveSession(ctx context.Context, id, hostID string) error {
	if _, err := s.GetLiveSession(ctx, id, hostID); err != nil {
		return err
	}
	return affected(s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.LiveSession{}))
}
