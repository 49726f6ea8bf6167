package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
)

// ApprovalService runs the profile approval and role workflow.
type ApprovalService struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(db *gorm.DB, m *metrics.Metrics) *ApprovalService {
	return &ApprovalService{DB: db, Metrics: m}
}

// Stats are the counters on the super-admin dashboard.
type Stats struct {
	Users        int64 `json:"users"`
	Therapists   int64 `json:"therapists"`
	Pending      int64 `json:"pending"`
	Appointments int64 `json:"appointments"`
}

// UserDetail is everything shown on a single profile's admin page.
type UserDetail struct {
	Profile      models.Profile       `json:"profile"`
	Appointments []models.Appointment `json:"appointments"`
	Modules      []models.Module      `json:"modules,omitempty"`
	Articles     []models.Article     `json:"articles,omitempty"`
}

// RoleEdits holds uncommitted role selections keyed by profile id. It lives
// for one request and is never stored.
type RoleEdits map[string]models.Role

// ParseRoleEdits reads role_<profileID>=<role> form values.
func ParseRoleEdits(values map[string][]string) RoleEdits {
	edits := RoleEdits{}
	for key, vals := range values {
		id, ok := strings.CutPrefix(key, "role_")
		if !ok || id == "" || len(vals) == 0 {
			continue
		}
		edits[id] = models.Role(vals[len(vals)-1])
	}
	return edits
}

// Resolve picks the role to commit: the pending edit, else the current role,
// else therapist.
func (e RoleEdits) Resolve(p *models.Profile) models.Role {
	if r, ok := e[p.ID]; ok && r != "" {
		return r
	}
	if p.Role != "" {
		return p.Role
	}
	return models.RoleTherapist
}

// ListPending returns profiles awaiting approval, oldest first.
func (s *ApprovalService) ListPending(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.ProfileStatusPending).
		Order("created_at asc").
		Find(&profiles).Error
	return profiles, err
}

// ListProfiles returns every profile, newest first.
func (s *ApprovalService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.DB.WithContext(ctx).Order("created_at desc").Find(&profiles).Error
	return profiles, err
}

// GetProfile loads one profile.
func (s *ApprovalService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Stats counts users, therapists, pending approvals and appointments.
func (s *ApprovalService) Stats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	var st Stats

	if err := db.Model(&models.Profile{}).
		Where("(specialty IS NULL OR specialty = '') AND role NOT IN ?",
			[]models.Role{models.RoleTherapist, models.RoleStaffAdmin}).
		Count(&st.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Profile{}).
		Where("role = ? OR (specialty IS NOT NULL AND specialty <> '')", models.RoleTherapist).
		Count(&st.Therapists).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Profile{}).
		Where("status = ?", models.ProfileStatusPending).
		Count(&st.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Appointment{}).Count(&st.Appointments).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// ApproveAndAssign activates the profile and sets its role in one update.
// Therapists keep their specialty or get the default one; every other role
// has it cleared.
func (s *ApprovalService) ApproveAndAssign(ctx context.Context, id string, role models.Role) (*models.Profile, error) {
	return s.assign(ctx, id, role, true, "approve")
}

// ChangeRole commits a role edit without touching the status.
func (s *ApprovalService) ChangeRole(ctx context.Context, id string, role models.Role) (*models.Profile, error) {
	return s.assign(ctx, id, role, false, "change_role")
}

// ChangeRoles commits every edit in one transaction. One bad id or role
// rolls back the whole batch.
func (s *ApprovalService) ChangeRoles(ctx context.Context, edits RoleEdits) ([]*models.Profile, error) {
	ids := make([]string, 0, len(edits))
	for id := range edits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*models.Profile, 0, len(ids))
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			p, err := assignTx(tx, id, edits[id], false)
			if err != nil {
				return fmt.Errorf("profile %s: %w", id, err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range out {
		s.Metrics.Transition("approval", "change_role")
	}
	return out, nil
}

func (s *ApprovalService) assign(ctx context.Context, id string, role models.Role, activate bool, transition string) (*models.Profile, error) {
	var out *models.Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := assignTx(tx, id, role, activate)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Transition("approval", transition)
	return out, nil
}

func assignTx(tx *gorm.DB, id string, role models.Role, activate bool) (*models.Profile, error) {
	var p models.Profile
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}

	if role == "" {
		role = p.Role
	}
	if role == "" {
		role = models.RoleTherapist
	}
	if !role.Valid() {
		return nil, ErrInvalidInput
	}

	updates := map[string]interface{}{"role": role}
	if activate {
		updates["status"] = models.ProfileStatusActive
	}
	if role == models.RoleTherapist {
		if !p.HasSpecialty() {
			updates["specialty"] = models.DefaultSpecialty
		}
	} else {
		updates["specialty"] = nil
	}

	if err := tx.Model(&p).Updates(updates).Error; err != nil {
		return nil, err
	}
	var updated models.Profile
	if err := tx.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// Suspend bans the profile.
func (s *ApprovalService) Suspend(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.ProfileStatusBanned, "suspend")
}

// Restore reactivates a banned profile.
func (s *ApprovalService) Restore(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.ProfileStatusActive, "restore")
}

// ToggleStatus flips between active and banned.
func (s *ApprovalService) ToggleStatus(ctx context.Context, id string) (models.ProfileStatus, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return "", err
	}
	if p.EffectiveStatus() == models.ProfileStatusBanned {
		return models.ProfileStatusActive, s.Restore(ctx, id)
	}
	return models.ProfileStatusBanned, s.Suspend(ctx, id)
}

func (s *ApprovalService) setStatus(ctx context.Context, id string, status models.ProfileStatus, transition string) error {
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("status", status)
	if err := affected(res); err != nil {
		return err
	}
	s.Metrics.Transition("approval", transition)
	return nil
}

// Delete removes the profile row. Rows that referenced it are left in place.
func (s *ApprovalService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{})
	if err := affected(res); err != nil {
		return err
	}
	s.Metrics.Transition("approval", "delete")
	return nil
}

// UserDetail loads a profile with its appointments and, for therapists, the
// content they authored.
func (s *ApprovalService) UserDetail(ctx context.Context, id string) (*UserDetail, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	detail := &UserDetail{Profile: *p}

	if err := db.Preload("User").Preload("Therapist").
		Where("user_id = ? OR therapist_id = ?", id, id).
		Order("scheduled_at desc").
		Find(&detail.Appointments).Error; err != nil {
		return nil, err
	}
	for i := range detail.Appointments {
		detail.Appointments[i].ResolveParticipants()
	}

	if p.IsTherapist() {
		if err := db.Where("author_id = ?", id).Order("created_at desc").Find(&detail.Modules).Error; err != nil {
			return nil, err
		}
		if err := db.Where("author_id = ?", id).Order("created_at desc").Find(&detail.Articles).Error; err != nil {
			return nil, err
		}
	}
	return detail, nil
}
