package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/auth"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

// SessionCookie carries the access token issued at sign-in.
const SessionCookie = "session"

const (
	ctxUserID  = "userID"
	ctxToken   = "sessionToken"
	ctxProfile = "profile"
)

// SessionProvider is the part of the identity provider the gate needs.
type SessionProvider interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

// ProfileLookup loads the caller's profile.
type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// Gate enforces the per-area access rules.
type Gate struct {
	Sessions     SessionProvider
	Profiles     ProfileLookup
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	SecureCookie bool
}

// NewGate creates a Gate. A nil logger falls back to slog.Default.
func NewGate(sessions SessionProvider, profiles ProfileLookup, m *metrics.Metrics, logger *slog.Logger, secureCookie bool) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{Sessions: sessions, Profiles: profiles, Metrics: m, Logger: logger, SecureCookie: secureCookie}
}

// Require creates a middleware that applies area's rule to every request.
func (g *Gate) Require(area services.Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := SessionToken(c)

		session, err := g.Sessions.GetSession(ctx, token)
		if err != nil && !errors.Is(err, auth.ErrNoSession) {
			g.Logger.Error("session lookup failed", "area", area, "error", err)
		}
		hasSession := err == nil

		var profile *models.Profile
		if hasSession && area.NeedsProfile() {
			profile, err = g.Profiles.GetProfile(ctx, session.UserID)
			if err != nil && !errors.Is(err, services.ErrNotFound) {
				g.Logger.Error("profile lookup failed", "area", area, "user_id", session.UserID, "error", err)
				g.Metrics.StoreError("gate_profile")
				utils.InternalServerError(c, "Could not verify access")
				c.Abort()
				return
			}
		}

		decision := services.Decide(area, hasSession, profile)
		g.Metrics.Gate(string(area), decision.Outcome())

		if decision.SignOut {
			if err := g.Sessions.SignOut(ctx, token); err != nil {
				g.Logger.Error("forced sign-out failed", "area", area, "error", err)
			}
			ClearSessionCookie(c, g.SecureCookie)
		}
		if !decision.Allow {
			g.Logger.Info("gate denied request", "area", area, "path", c.Request.URL.Path, "outcome", decision.Outcome())
			utils.RedirectWithNotice(c, decision.Redirect, decision.Notice)
			c.Abort()
			return
		}

		if hasSession {
			c.Set(ctxUserID, session.UserID)
			c.Set(ctxToken, token)
		}
		if profile != nil {
			c.Set(ctxProfile, profile)
		}
		c.Next()
	}
}

// Guard applies the rule of whichever area the request path falls in.
// Public paths pass straight through.
func (g *Gate) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		area := services.AreaForPath(c.Request.URL.Path)
		if area == services.AreaPublic {
			c.Next()
			return
		}
		g.Require(area)(c)
	}
}

// RequireRole creates a middleware for role-based authorization inside an
// area. Platform owners always pass. It should be used *after* Gate.Require.
func (g *Gate) RequireRole(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := GetProfileFromContext(c)
		if !ok {
			userID, exists := GetUserIDFromContext(c)
			if !exists {
				utils.Unauthorized(c, "Authentication required")
				c.Abort()
				return
			}
			p, err := g.Profiles.GetProfile(c.Request.Context(), userID)
			if err != nil {
				if !errors.Is(err, services.ErrNotFound) {
					g.Logger.Error("profile lookup failed", "user_id", userID, "error", err)
				}
				utils.Forbidden(c, services.NoticeAccessDenied)
				c.Abort()
				return
			}
			profile = p
			c.Set(ctxProfile, profile)
		}

		isAllowed := profile.IsPlatformOwner()
		for _, allowedRole := range allowedRoles {
			if profile.Role == allowedRole {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionToken reads the access token from the session cookie, falling back
// to a bearer Authorization header.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SetSessionCookie stores the access token in an HTTP-only cookie.
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

// GetUserIDFromContext returns the signed-in user's id.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// GetProfileFromContext returns the profile loaded by the gate, if any.
func GetProfileFromContext(c *gin.Context) (*models.Profile, bool) {
	v, exists := c.Get(ctxProfile)
	if !exists {
		return nil, false
	}
	p, ok := v.(*models.Profile)
	return p, ok && p != nil
}

// GetSessionTokenFromContext returns the token the gate accepted.
func GetSessionTokenFromContext(c *gin.Context) string {
	return c.GetString(ctxToken)
}
