package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Role enum
type Role string

const (
	RoleUser       Role = "user"
	RoleTherapist  Role = "THERAPIST"
	RoleStaffAdmin Role = "SEC_SUPER_8841"
	RoleSuperAdmin Role = "DEV_OWNER_7752"
)

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTherapist, RoleStaffAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ProfileStatus represents the lifecycle state of a profile
type ProfileStatus string

const (
	ProfileStatusPending ProfileStatus = "pending"
	ProfileStatusActive  ProfileStatus = "active"
	ProfileStatusBanned  ProfileStatus = "banned"
)

// DefaultSpecialty is assigned to therapists approved without a specialty.
const DefaultSpecialty = "General Therapist"

// Placeholders rendered when a joined profile no longer exists.
const (
	DeletedUserName      = "Deleted User"
	DeletedTherapistName = "Deleted Therapist"
	AnonymousName        = "Anonymous"
)

// Weekdays lists the availability keys in calendar order.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Availability maps a lowercase weekday name to whether bookings are accepted.
type Availability map[string]bool

// Account is the identity provider's user record.
type Account struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}

// SetPassword hashes a password and sets it on the account
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the account's hashed password
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

// Session is an issued sign-in session. Its ID is the token's jti.
type Session struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

// Profile is the platform's user record, keyed by the account id.
type Profile struct {
	BaseModel
	FullName     string                           `gorm:"size:255" json:"fullName"`
	Email        string                           `gorm:"size:255;index" json:"email"`
	PhoneNumber  string                           `gorm:"size:50" json:"phoneNumber,omitempty"`
	Address      string                           `gorm:"size:255" json:"address,omitempty"`
	About        string                           `gorm:"type:text" json:"about,omitempty"`
	AvatarURL    string                           `gorm:"size:512" json:"avatarUrl,omitempty"`
	Role         Role                             `gorm:"size:32;index" json:"role"`
	IsSuperAdmin bool                             `json:"isSuperAdmin"`
	Specialty    *string                          `gorm:"size:255" json:"specialty"`
	Status       ProfileStatus                    `gorm:"size:20;index" json:"status"`
	Availability datatypes.JSONType[Availability] `json:"availability"`
}

// HasSpecialty reports whether a non-empty specialty is set.
func (p *Profile) HasSpecialty() bool {
	return p.Specialty != nil && strings.TrimSpace(*p.Specialty) != ""
}

// IsTherapist applies the legacy dual signal: the therapist role or any specialty.
func (p *Profile) IsTherapist() bool {
	return p.Role == RoleTherapist || p.HasSpecialty()
}

// IsPlatformOwner reports super-admin authority.
func (p *Profile) IsPlatformOwner() bool {
	return p.IsSuperAdmin || p.Role == RoleSuperAdmin
}

// EffectiveStatus treats a missing status as active.
func (p *Profile) EffectiveStatus() ProfileStatus {
	if p.Status == "" {
		return ProfileStatusActive
	}
	return p.Status
}

// AvailabilityMap returns the stored availability, never nil.
func (p *Profile) AvailabilityMap() Availability {
	m := p.Availability.Data()
	if m == nil {
		return Availability{}
	}
	return m
}

// IsDayAvailable is default-open: only an explicit false closes a weekday.
func (a Availability) IsDayAvailable(weekday string) bool {
	open, ok := a[strings.ToLower(weekday)]
	return !ok || open
}

// IsWeekday reports whether name is a valid availability key.
func IsWeekday(name string) bool {
	for _, d := range Weekdays {
		if d == name {
			return true
		}
	}
	return false
}

// DisplayName returns the profile's name or the placeholder when the profile is gone.
func DisplayName(p *Profile, placeholder string) string {
	if p == nil || p.ID == "" {
		return placeholder
	}
	if p.FullName == "" {
		return placeholder
	}
	return p.FullName
}
