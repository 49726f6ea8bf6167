// Package auth is the identity and session provider. It owns accounts and
// sessions; the rest of the server only sees Session values and tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrNoSession          = errors.New("no active session")
)

// RequestedRoleAdmin is the sign-up choice that maps to the staff-admin role.
const RequestedRoleAdmin = "ADMIN"

// SignUpMetadata carries the profile fields captured at sign-up.
type SignUpMetadata struct {
	FullName  string
	Role      string
	Specialty string
}

// Session is an authenticated session handed to callers.
type Session struct {
	ID          string
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
}

// Provider issues and validates sessions backed by the relational store.
type Provider struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
	now    func() time.Time
}

// NewProvider creates a new Provider.
func NewProvider(db *gorm.DB, secret string, ttl time.Duration) *Provider {
	return &Provider{DB: db, Secret: secret, TTL: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// SignUp creates the account and its pending profile in one transaction.
func (p *Provider) SignUp(ctx context.Context, email, password string, meta SignUpMetadata) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account := models.Account{Email: email}
	if err := account.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := models.RoleTherapist
	var specialty *string
	if meta.Role == RequestedRoleAdmin {
		role = models.RoleStaffAdmin
	} else if s := strings.TrimSpace(meta.Specialty); s != "" {
		specialty = &s
	}

	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&account).Error; err != nil {
			if models.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}
		profile := models.Profile{
			FullName:  meta.FullName,
			Email:     email,
			Role:      role,
			Specialty: specialty,
			Status:    models.ProfileStatusPending,
		}
		profile.ID = account.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SignIn checks the credentials and opens a new session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var account models.Account
	if err := p.DB.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	row := models.Session{
		UserID:    account.ID,
		ExpiresAt: p.now().Add(p.TTL),
	}
	row.ID = uuid.New().String()
	if err := p.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := utils.GenerateSessionToken(row.ID, account.ID, row.ExpiresAt, p.Secret)
	if err != nil {
		return nil, err
	}
	return &Session{ID: row.ID, UserID: account.ID, AccessToken: token, ExpiresAt: row.ExpiresAt}, nil
}

// GetSession resolves a token to a live session.
func (p *Provider) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := utils.ValidateToken(token, p.Secret)
	if err != nil {
		return nil, ErrNoSession
	}

	var row models.Session
	err = p.DB.WithContext(ctx).
		Where("id = ? AND user_id = ? AND revoked = ? AND expires_at > ?", claims.ID, claims.UserID, false, p.now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return &Session{ID: row.ID, UserID: row.UserID, AccessToken: token, ExpiresAt: row.ExpiresAt}, nil
}

// GetUser returns the account behind a token.
func (p *Provider) GetUser(ctx context.Context, token string) (*models.Account, error) {
	session, err := p.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	var account models.Account
	if err := p.DB.WithContext(ctx).First(&account, "id = ?", session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return &account, nil
}

// SignOut revokes the session behind token. Unknown or invalid tokens are ignored.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := utils.ValidateToken(token, p.Secret)
	if err != nil {
		return nil
	}
	return p.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked = ?", claims.ID, false).
		Update("revoked", true).Error
}
