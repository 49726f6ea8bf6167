package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"therapy-admin-server/internal/auth"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/services"
	dbtest "therapy-admin-server/internal/testutil"
)

type gateFixture struct {
	db       *gorm.DB
	provider *auth.Provider
	metrics  *metrics.Metrics
	router   *gin.Engine
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.NewDB(t)
	provider := auth.NewProvider(db, "test-secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	gate := NewGate(provider, services.NewProfileService(db), m, nil, false)

	ok := func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		c.String(http.StatusOK, id)
	}
	r := gin.New()
	admin := r.Group("/admin", gate.Require(services.AreaStaffAdmin))
	admin.GET("/modules", gate.RequireRole(models.RoleStaffAdmin), ok)
	admin.GET("/profile", ok)
	r.GET("/therapist-admin", gate.Require(services.AreaTherapist), ok)
	r.GET("/supa", gate.Require(services.AreaSuperAdmin), ok)

	return &gateFixture{db: db, provider: provider, metrics: m, router: r}
}

func (f *gateFixture) signIn(t *testing.T, email string, role models.Role, status models.ProfileStatus) *auth.Session {
	t.Helper()
	ctx := context.Background()
	account, err := f.provider.SignUp(ctx, email, "secret123", auth.SignUpMetadata{FullName: email})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Profile{}).Where("id = ?", account.ID).
		Updates(map[string]interface{}{"role": role, "status": status}).Error)
	session, err := f.provider.SignIn(ctx, email, "secret123")
	require.NoError(t, err)
	return session
}

func (f *gateFixture) get(path string, session *auth.Session) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.AccessToken})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	f := newGateFixture(t)

	for _, path := range []string{"/admin/profile", "/therapist-admin", "/supa"} {
		w := f.get(path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"), path)
	}
}

func TestStaffAreaOnlyNeedsSession(t *testing.T) {
	f := newGateFixture(t)
	session := f.signIn(t, "therapist@example.com", models.RoleTherapist, models.ProfileStatusActive)

	w := f.get("/admin/profile", session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.UserID, w.Body.String())

	w = f.get("/admin/modules", session)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllowsStaffAndOwner(t *testing.T) {
	f := newGateFixture(t)
	staff := f.signIn(t, "staff@example.com", models.RoleStaffAdmin, models.ProfileStatusActive)
	owner := f.signIn(t, "owner@example.com", models.RoleSuperAdmin, models.ProfileStatusActive)

	assert.Equal(t, http.StatusOK, f.get("/admin/modules", staff).Code)
	assert.Equal(t, http.StatusOK, f.get("/admin/modules", owner).Code)
}

func TestTherapistGateForcesSignOut(t *testing.T) {
	f := newGateFixture(t)
	session := f.signIn(t, "staff@example.com", models.RoleStaffAdmin, models.ProfileStatusActive)

	w := f.get("/therapist-admin", session)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login?error=Access+Denied.+This+area+is+for+Therapists+only.", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookie+"=;")

	_, err := f.provider.GetSession(context.Background(), session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GateDecisions.WithLabelValues("therapist", "signout")))
}

func TestTherapistGateAllowsActiveTherapist(t *testing.T) {
	f := newGateFixture(t)
	session := f.signIn(t, "therapist@example.com", models.RoleTherapist, models.ProfileStatusActive)

	w := f.get("/therapist-admin", session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GateDecisions.WithLabelValues("therapist", "allow")))
}

func TestTherapistGateRejectsPendingTherapist(t *testing.T) {
	f := newGateFixture(t)
	session := f.signIn(t, "new@example.com", models.RoleTherapist, models.ProfileStatusPending)

	w := f.get("/therapist-admin", session)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSuperAdminGate(t *testing.T) {
	f := newGateFixture(t)
	therapist := f.signIn(t, "therapist@example.com", models.RoleTherapist, models.ProfileStatusActive)
	owner := f.signIn(t, "owner@example.com", models.RoleSuperAdmin, models.ProfileStatusActive)

	w := f.get("/supa", therapist)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?error=Unauthorized", w.Header().Get("Location"))
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	assert.Equal(t, http.StatusOK, f.get("/supa", owner).Code)
}

func TestSessionTokenFromBearerHeader(t *testing.T) {
	f := newGateFixture(t)
	session := f.signIn(t, "therapist@example.com", models.RoleTherapist, models.ProfileStatusActive)

	req := httptest.NewRequest(http.MethodGet, "/therapist-admin", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardPicksAreaFromPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.NewDB(t)
	provider := auth.NewProvider(db, "test-secret", time.Hour)
	gate := NewGate(provider, services.NewProfileService(db), nil, nil, false)

	r := gin.New()
	r.Use(gate.Guard())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/admin/login", ok)
	r.GET("/health", ok)
	r.GET("/supa/users", ok)

	for path, want := range map[string]int{
		"/admin/login": http.StatusOK,
		"/health":      http.StatusOK,
		"/supa/users":  http.StatusSeeOther,
	} {
		method := http.MethodGet
		if path == "/admin/login" {
			method = http.MethodPost
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
