package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"therapy-admin-server/internal/auth"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/middleware"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	"therapy-admin-server/internal/utils"
)

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	base
	Provider     *auth.Provider
	Profiles     *services.ProfileService
	SecureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(provider *auth.Provider, profiles *services.ProfileService, secureCookie bool, logger *slog.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{base: newBase(logger, m), Provider: provider, Profiles: profiles, SecureCookie: secureCookie}
}

// SignUpRequest represents the request body for account registration.
type SignUpRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
	FullName  string `json:"fullName" form:"fullName" binding:"required"`
	Role      string `json:"role" form:"role" binding:"omitempty,oneof=ADMIN THERAPIST"`
	Specialty string `json:"specialty" form:"specialty"`
}

// SignUp registers an account whose profile waits for approval.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !utils.BindAndValidate(c, &req) {
		return // Error response handled by BindAndValidate
	}

	account, err := h.Provider.SignUp(c.Request.Context(), req.Email, req.Password, auth.SignUpMetadata{
		FullName:  req.FullName,
		Role:      req.Role,
		Specialty: req.Specialty,
	})
	if err != nil {
		h.fail(c, "signup", req.Email, err)
		return
	}

	h.Logger.Info("account registered", "user_id", account.ID)
	utils.Created(c, "Account created. An administrator must approve it before you can sign in.", gin.H{
		"id":     account.ID,
		"email":  account.Email,
		"status": models.ProfileStatusPending,
	})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Redirect    string          `json:"redirect"`
	Profile     *models.Profile `json:"profile"`
}

// Login signs the user in and picks their landing area. Accounts without an
// area, or not yet active, are signed straight back out.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()

	session, err := h.Provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.Unauthorized(c, err.Error())
			return
		}
		h.fail(c, "signin", req.Email, err)
		return
	}

	profile, err := h.Profiles.GetProfile(ctx, session.UserID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		h.fail(c, "signin_profile", session.UserID, err)
		return
	}

	redirect, err := services.LandingPath(profile)
	if err != nil {
		if err := h.Provider.SignOut(ctx, session.AccessToken); err != nil {
			h.Logger.Error("sign-out after denied login failed", "user_id", session.UserID, "error", err)
		}
		h.Logger.Info("login denied", "user_id", session.UserID)
		utils.Forbidden(c, services.NoticeAccessDenied)
		return
	}

	middleware.SetSessionCookie(c, session.AccessToken, session.ExpiresAt, h.SecureCookie)
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		Redirect:    redirect,
		Profile:     profile,
	})
}

// Logout revokes the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Provider.SignOut(c.Request.Context(), middleware.GetSessionTokenFromContext(c)); err != nil {
		h.Logger.Error("sign-out failed", "error", err)
	}
	middleware.ClearSessionCookie(c, h.SecureCookie)
	utils.RedirectWithNotice(c, services.LoginPath, "")
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.Profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "get_profile", userID, err)
		return
	}
	utils.Success(c, "Profile retrieved successfully", profile)
}
