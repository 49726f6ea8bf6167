package services

import (
	"strings"

	"therapy-admin-server/internal/models"
)

// Area is a gated section of the application.
type Area string

const (
	AreaPublic     Area = "public"
	AreaStaffAdmin Area = "admin"
	AreaTherapist  Area = "therapist"
	AreaSuperAdmin Area = "supa"
)

// Paths the gate redirects to.
const (
	LoginPath  = "/admin/login"
	SignUpPath = "/admin/signup"
	RootPath   = "/"
)

// Notices attached to gate redirects.
const (
	NoticeTherapistOnly = "Access Denied. This area is for Therapists only."
	NoticeUnauthorized  = "Unauthorized"
	NoticeAccessDenied  = "Access Denied"
)

// AreaForPath maps a request path onto its gated area.
func AreaForPath(path string) Area {
	switch {
	case path == LoginPath || path == SignUpPath ||
		strings.HasPrefix(path, LoginPath+"/") || strings.HasPrefix(path, SignUpPath+"/"):
		return AreaPublic
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return AreaStaffAdmin
	case path == "/therapist-admin" || strings.HasPrefix(path, "/therapist-admin/"):
		return AreaTherapist
	case path == "/supa" || strings.HasPrefix(path, "/supa/"):
		return AreaSuperAdmin
	}
	return AreaPublic
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Allow    bool
	Redirect string
	Notice   string
	SignOut  bool
}

// Outcome labels the decision for metrics.
func (d Decision) Outcome() string {
	switch {
	case d.Allow:
		return "allow"
	case d.SignOut:
		return "signout"
	case d.Notice != "":
		return "deny"
	}
	return "login"
}

// NeedsProfile reports whether the area's rule reads the caller's profile.
func (a Area) NeedsProfile() bool {
	return a == AreaTherapist || a == AreaSuperAdmin
}

// Decide applies the per-area rule. profile may be nil when the caller's
// profile row is missing.
func Decide(area Area, hasSession bool, profile *models.Profile) Decision {
	if area == AreaPublic {
		return Decision{Allow: true}
	}
	if !hasSession {
		return Decision{Redirect: LoginPath}
	}

	switch area {
	case AreaStaffAdmin:
		// role checks for this area live in the individual pages
		return Decision{Allow: true}
	case AreaTherapist:
		if profile == nil || profile.Role != models.RoleTherapist ||
			profile.EffectiveStatus() != models.ProfileStatusActive {
			return Decision{Redirect: LoginPath, Notice: NoticeTherapistOnly, SignOut: true}
		}
		return Decision{Allow: true}
	case AreaSuperAdmin:
		if profile == nil || !profile.IsPlatformOwner() {
			return Decision{Redirect: RootPath, Notice: NoticeUnauthorized}
		}
		return Decision{Allow: true}
	}
	return Decision{Redirect: LoginPath}
}

// LandingPath picks the dashboard a freshly signed-in profile is sent to.
// Profiles with no dashboard, or not yet active, get ErrAccessDenied.
func LandingPath(p *models.Profile) (string, error) {
	if p == nil || p.EffectiveStatus() != models.ProfileStatusActive {
		return "", ErrAccessDenied
	}
	switch {
	case p.IsPlatformOwner():
		return "/supa", nil
	case p.IsTherapist():
		return "/therapist-admin", nil
	case p.Role == models.RoleStaffAdmin:
		return "/admin/modules", nil
	}
	return "", ErrAccessDenied
}
