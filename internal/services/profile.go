package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"therapy-admin-server/internal/models"
)

// ProfileService reads profiles and applies self-service edits.
type ProfileService struct {
	DB *gorm.DB
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// ProfileInput holds the fields a user may edit on their own profile.
type ProfileInput struct {
	FullName    string
	PhoneNumber string
	Address     string
	About       string
	Specialty   string
}

// GetProfile loads one profile.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpdateOwn saves the caller's edits. Specialty is only stored for the
// therapist role, so role and specialty cannot disagree.
func (s *ProfileService) UpdateOwn(ctx context.Context, id string, in ProfileInput) (*models.Profile, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"full_name":    strings.TrimSpace(in.FullName),
		"phone_number": in.PhoneNumber,
		"address":      in.Address,
		"about":        in.About,
	}
	specialty := strings.TrimSpace(in.Specialty)
	switch {
	case p.Role != models.RoleTherapist:
		updates["specialty"] = nil
	case specialty != "":
		updates["specialty"] = specialty
	case !p.HasSpecialty():
		updates["specialty"] = models.DefaultSpecialty
	}

	if err := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// SetAvatar stores the public URL of an uploaded avatar.
func (s *ProfileService) SetAvatar(ctx context.Context, id, url string) error {
	return affected(s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("avatar_url", url))
}
