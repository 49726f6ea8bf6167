package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func TestAvailabilityIsDefaultOpen(t *testing.T) {
	var empty Availability
	for _, day := range Weekdays {
		assert.True(t, empty.IsDayAvailable(day), day)
	}

	closed := Availability{"tuesday": false, "friday": true}
	for _, day := range Weekdays {
		assert.Equal(t, day != "tuesday", closed.IsDayAvailable(day), day)
	}
	assert.False(t, closed.IsDayAvailable("Tuesday"))
}

func TestProfileAvailabilityMapNeverNil(t *testing.T) {
	p := Profile{}
	assert.NotNil(t, p.AvailabilityMap())

	p.Availability = datatypes.NewJSONType(Availability{"monday": false})
	assert.False(t, p.AvailabilityMap().IsDayAvailable("monday"))
}

func TestIsTherapistDualSignal(t *testing.T) {
	assert.True(t, (&Profile{Role: RoleTherapist}).IsTherapist())
	assert.True(t, (&Profile{Role: RoleUser, Specialty: strPtr("Psychologist")}).IsTherapist())
	assert.False(t, (&Profile{Role: RoleUser, Specialty: strPtr("  ")}).IsTherapist())
	assert.False(t, (&Profile{Role: RoleStaffAdmin}).IsTherapist())
}

func TestIsPlatformOwner(t *testing.T) {
	assert.True(t, (&Profile{IsSuperAdmin: true, Role: RoleUser}).IsPlatformOwner())
	assert.True(t, (&Profile{Role: RoleSuperAdmin}).IsPlatformOwner())
	assert.False(t, (&Profile{Role: RoleStaffAdmin}).IsPlatformOwner())
}

func TestEffectiveStatusDefaultsToActive(t *testing.T) {
	assert.Equal(t, ProfileStatusActive, (&Profile{}).EffectiveStatus())
	assert.Equal(t, ProfileStatusBanned, (&Profile{Status: ProfileStatusBanned}).EffectiveStatus())
}

func TestDisplayNamePlaceholders(t *testing.T) {
	assert.Equal(t, DeletedUserName, DisplayName(nil, DeletedUserName))
	assert.Equal(t, AnonymousName, DisplayName(&Profile{}, AnonymousName))

	p := &Profile{FullName: "Ada"}
	p.ID = "p-1"
	assert.Equal(t, "Ada", DisplayName(p, DeletedUserName))

	a := Appointment{Therapist: p}
	a.ResolveParticipants()
	assert.Equal(t, DeletedUserName, a.UserName)
	assert.Equal(t, "Ada", a.TherapistName)
}

func TestInCategories(t *testing.T) {
	assert.True(t, InCategories(ModuleCategories, ""))
	assert.True(t, InCategories(ModuleCategories, CategoryFaithSpirit))
	assert.False(t, InCategories(ModuleCategories, CategoryPersonalStories))
	assert.True(t, InCategories(ArticleCategories, CategoryPersonalStories))
	assert.False(t, InCategories(ArticleCategories, "Cooking"))
}
