package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"therapy-admin-server/internal/auth"
	"therapy-admin-server/internal/config"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	dbtest "therapy-admin-server/internal/testutil"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type server struct {
	db     *gorm.DB
	store  *memoryStore
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.NewDB(t)
	store := &memoryStore{objects: map[string][]byte{}}
	registry := prometheus.NewRegistry()

	router := gin.New()
	SetupRoutes(router, Dependencies{
		DB: db,
		Config: &config.Config{
			Environment:          "test",
			JWTSecret:            "test-secret",
			JWTExpirationMinutes: 60,
			OrderPolicy:          "count",
		},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:    store,
		Metrics:  metrics.New(registry),
		Gatherer: registry,
	})
	return &server{db: db, store: store, router: router}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *server) login(t *testing.T, email string) (token, redirect string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
		Redirect    string `json:"redirect"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	return resp.AccessToken, resp.Redirect
}

// seed registers an account and forces its profile into the given shape.
func (s *server) seed(t *testing.T, email string, updates map[string]interface{}) string {
	t.Helper()
	provider := auth.NewProvider(s.db, "test-secret", 0)
	account, err := provider.SignUp(context.Background(), email, "secret123", auth.SignUpMetadata{FullName: email})
	require.NoError(t, err)
	require.NoError(t, s.db.Model(&models.Profile{}).Where("id = ?", account.ID).Updates(updates).Error)
	return account.ID
}

func TestSignUpApprovalAndTherapistAccess(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/admin/signup", "", gin.H{
		"email":     "ana@example.com",
		"password":  "secret123",
		"fullName":  "Ana",
		"role":      "THERAPIST",
		"specialty": "Psychologist",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	// Pending accounts cannot sign in.
	w = s.do(t, http.MethodPost, "/admin/login", "", gin.H{"email": "ana@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access Denied", decode(t, w, nil).Error)

	s.seed(t, "owner@example.com", map[string]interface{}{"is_super_admin": true, "status": models.ProfileStatusActive})
	ownerToken, redirect := s.login(t, "owner@example.com")
	assert.Equal(t, "/supa", redirect)

	w = s.do(t, http.MethodGet, "/supa/approvals", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.Profile
	decode(t, w, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)

	w = s.do(t, http.MethodPost, "/supa/approvals/"+created.ID, ownerToken, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p models.Profile
	require.NoError(t, s.db.First(&p, "id = ?", created.ID).Error)
	assert.Equal(t, models.ProfileStatusActive, p.Status)
	assert.Equal(t, models.RoleTherapist, p.Role)
	require.NotNil(t, p.Specialty)
	assert.Equal(t, "Psychologist", *p.Specialty)

	token, redirect := s.login(t, "ana@example.com")
	assert.Equal(t, "/therapist-admin", redirect)

	w = s.do(t, http.MethodGet, "/therapist-admin", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Therapists hold a valid session but are not staff.
	w = s.do(t, http.MethodGet, "/admin/modules", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/supa", token, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?error=Unauthorized", w.Header().Get("Location"))
}

func TestStaffModuleCascadeOverHTTP(t *testing.T) {
	s := newServer(t)
	s.seed(t, "staff@example.com", map[string]interface{}{"role": models.RoleStaffAdmin, "status": models.ProfileStatusActive})
	token, redirect := s.login(t, "staff@example.com")
	assert.Equal(t, "/admin/modules", redirect)

	w := s.do(t, http.MethodPost, "/admin/modules", token, gin.H{"title": "Grief", "category": models.CategoryMentalHealth})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var module models.Module
	decode(t, w, &module)

	w = s.do(t, http.MethodPost, "/admin/modules/"+module.ID+"/lessons", token, gin.H{"title": "Day one"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lesson models.Lesson
	decode(t, w, &lesson)
	assert.Equal(t, 1, lesson.Order)

	w = s.do(t, http.MethodPost, "/admin/lessons/"+lesson.ID+"/steps", token, gin.H{
		"type":           "text",
		"content":        "Breathe.",
		"promptQuestion": "dropped",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var step models.LessonStep
	decode(t, w, &step)
	assert.Nil(t, step.PromptQuestion)

	w = s.do(t, http.MethodPost, "/admin/modules", token, gin.H{"title": "Bad", "category": "Cooking"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/admin/modules/"+module.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var lessons, steps int64
	require.NoError(t, s.db.Model(&models.Lesson{}).Count(&lessons).Error)
	require.NoError(t, s.db.Model(&models.LessonStep{}).Count(&steps).Error)
	assert.Zero(t, lessons)
	assert.Zero(t, steps)

	w = s.do(t, http.MethodGet, "/admin/lessons/"+lesson.ID, token, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/admin/modules?error="))

	w = s.do(t, http.MethodDelete, "/admin/modules/"+module.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTherapistCannotTouchOthersModules(t *testing.T) {
	s := newServer(t)
	s.seed(t, "a@example.com", map[string]interface{}{"role": models.RoleTherapist, "status": models.ProfileStatusActive})
	s.seed(t, "b@example.com", map[string]interface{}{"role": models.RoleTherapist, "status": models.ProfileStatusActive})
	tokenA, _ := s.login(t, "a@example.com")
	tokenB, _ := s.login(t, "b@example.com")

	w := s.do(t, http.MethodPost, "/therapist-admin/modules", tokenA, gin.H{"title": "Mine"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var module models.Module
	decode(t, w, &module)

	w = s.do(t, http.MethodDelete, "/therapist-admin/modules/"+module.ID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/therapist-admin/modules", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Module
	decode(t, w, &listed)
	assert.Empty(t, listed)
}

func multipartImage(t *testing.T, name, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (s *server) upload(t *testing.T, path, token, name, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartImage(t, name, contentType)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUploads(t *testing.T) {
	s := newServer(t)
	id := s.seed(t, "t@example.com", map[string]interface{}{"role": models.RoleTherapist, "status": models.ProfileStatusActive})
	token, _ := s.login(t, "t@example.com")

	w := s.upload(t, "/therapist-admin/uploads/modules", token, "cover.PNG", "image/png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		URL string `json:"url"`
	}
	decode(t, w, &out)
	assert.True(t, strings.HasPrefix(out.URL, "https://cdn.test/modules/"+id+"/"), out.URL)
	assert.True(t, strings.HasSuffix(out.URL, ".png"), out.URL)
	assert.Len(t, s.store.objects, 1)

	w = s.upload(t, "/therapist-admin/uploads/modules", token, "notes.txt", "text/plain")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(t, "/therapist-admin/uploads/lessons", token, "cover.png", "image/png")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.upload(t, "/therapist-admin/profile/avatar", token, "me.jpg", "image/jpeg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p models.Profile
	require.NoError(t, s.db.First(&p, "id = ?", id).Error)
	assert.True(t, strings.HasPrefix(p.AvatarURL, "https://cdn.test/"+id+"/"), p.AvatarURL)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/therapist-admin", "", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `therapy_admin_gate_decisions_total{area="therapist",outcome="login"} 1`)
}
