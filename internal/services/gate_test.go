package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-admin-server/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAreaForPath(t *testing.T) {
	tests := []struct {
		path string
		want Area
	}{
		{"/", AreaPublic},
		{"/admin/login", AreaPublic},
		{"/admin/signup", AreaPublic},
		{"/admin", AreaStaffAdmin},
		{"/admin/modules/abc", AreaStaffAdmin},
		{"/administrator", AreaPublic},
		{"/therapist-admin", AreaTherapist},
		{"/therapist-admin/calendar", AreaTherapist},
		{"/supa/users/1", AreaSuperAdmin},
		{"/supabase", AreaPublic},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, AreaForPath(tt.path))
		})
	}
}

func TestDecide(t *testing.T) {
	therapist := &models.Profile{Role: models.RoleTherapist, Status: models.ProfileStatusActive}
	legacyTherapist := &models.Profile{Role: models.RoleUser, Specialty: strPtr("Psychologist")}
	bannedTherapist := &models.Profile{Role: models.RoleTherapist, Status: models.ProfileStatusBanned}
	owner := &models.Profile{Role: models.RoleSuperAdmin}
	legacyOwner := &models.Profile{Role: models.RoleUser, IsSuperAdmin: true}
	staff := &models.Profile{Role: models.RoleStaffAdmin}

	tests := []struct {
		name       string
		area       Area
		hasSession bool
		profile    *models.Profile
		want       Decision
	}{
		{"public always allowed", AreaPublic, false, nil, Decision{Allow: true}},
		{"admin without session", AreaStaffAdmin, false, nil, Decision{Redirect: LoginPath}},
		{"admin with any session", AreaStaffAdmin, true, nil, Decision{Allow: true}},
		{"therapist without session", AreaTherapist, false, nil, Decision{Redirect: LoginPath}},
		{"therapist role", AreaTherapist, true, therapist, Decision{Allow: true}},
		{"specialty alone is not enough", AreaTherapist, true, legacyTherapist,
			Decision{Redirect: LoginPath, Notice: NoticeTherapistOnly, SignOut: true}},
		{"banned therapist", AreaTherapist, true, bannedTherapist,
			Decision{Redirect: LoginPath, Notice: NoticeTherapistOnly, SignOut: true}},
		{"staff in therapist area", AreaTherapist, true, staff,
			Decision{Redirect: LoginPath, Notice: NoticeTherapistOnly, SignOut: true}},
		{"missing profile in therapist area", AreaTherapist, true, nil,
			Decision{Redirect: LoginPath, Notice: NoticeTherapistOnly, SignOut: true}},
		{"supa without session", AreaSuperAdmin, false, nil, Decision{Redirect: LoginPath}},
		{"supa owner role", AreaSuperAdmin, true, owner, Decision{Allow: true}},
		{"supa legacy flag", AreaSuperAdmin, true, legacyOwner, Decision{Allow: true}},
		{"supa staff", AreaSuperAdmin, true, staff, Decision{Redirect: RootPath, Notice: NoticeUnauthorized}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.area, tt.hasSession, tt.profile))
		})
	}
}

func TestDecisionOutcome(t *testing.T) {
	assert.Equal(t, "allow", Decision{Allow: true}.Outcome())
	assert.Equal(t, "login", Decision{Redirect: LoginPath}.Outcome())
	assert.Equal(t, "deny", Decision{Redirect: RootPath, Notice: NoticeUnauthorized}.Outcome())
	assert.Equal(t, "signout", Decision{Redirect: LoginPath, Notice: NoticeTherapistOnly, SignOut: true}.Outcome())
}

func TestLandingPath(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.Profile
		want    string
		wantErr bool
	}{
		{"owner", &models.Profile{Role: models.RoleSuperAdmin, Status: models.ProfileStatusActive}, "/supa", false},
		{"legacy owner", &models.Profile{IsSuperAdmin: true}, "/supa", false},
		{"therapist", &models.Profile{Role: models.RoleTherapist, Status: models.ProfileStatusActive}, "/therapist-admin", false},
		{"specialty", &models.Profile{Role: models.RoleUser, Specialty: strPtr("Counselor")}, "/therapist-admin", false},
		{"staff", &models.Profile{Role: models.RoleStaffAdmin, Status: models.ProfileStatusActive}, "/admin/modules", false},
		{"plain user", &models.Profile{Role: models.RoleUser}, "", true},
		{"pending therapist", &models.Profile{Role: models.RoleTherapist, Status: models.ProfileStatusPending}, "", true},
		{"banned staff", &models.Profile{Role: models.RoleStaffAdmin, Status: models.ProfileStatusBanned}, "", true},
		{"no profile", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LandingPath(tt.profile)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrAccessDenied)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
