package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulsecapture_backend/internal/auth/repository"
	"pulsecapture_backend/internal/auth/token"
	"pulsecapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testJWTConfig struct {
	secret string
	ttl    time.Duration
}

func (c testJWTConfig) GetJWTSecret() string     { return c.secret }
func (c testJWTConfig) GetJWTTTL() time.Duration { return c.ttl }

type stubResolver struct {
	users map[uuid.UUID]repository.User
}

func (r *stubResolver) ResolveUser(_ context.Context, id uuid.UUID) (repository.User, error) {
	user, ok := r.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func newMiddlewareRouter(t *testing.T, cfg testJWTConfig, resolver *stubResolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	protected := engine.Group("/api")
	protected.Use(Middleware(cfg, resolver, logger.New("test")))
	protected.GET("/ping", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	protected.GET("/admin-only", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func doRequest(engine *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error
}

func TestMiddlewareMissingToken(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret", ttl: time.Hour}
	engine := newMiddlewareRouter(t, cfg, &stubResolver{})

	rec := doRequest(engine, "/api/ping", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Access token required" {
		t.Errorf("error = %q", msg)
	}

	rec = doRequest(engine, "/api/ping", "Basic abc123")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret", ttl: time.Hour}
	engine := newMiddlewareRouter(t, cfg, &stubResolver{})

	rec := doRequest(engine, "/api/ping", "Bearer not.a.token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid token" {
		t.Errorf("error = %q", msg)
	}

	// token signed with a different secret
	other, err := token.Issue(testJWTConfig{secret: "other-secret", ttl: time.Hour}, uuid.New())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = doRequest(engine, "/api/ping", "Bearer "+other)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong secret: status = %d, want 403", rec.Code)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret", ttl: time.Hour}
	engine := newMiddlewareRouter(t, cfg, &stubResolver{})

	claims := jwt.MapClaims{
		"userId": uuid.NewString(),
		"iat":    time.Now().Add(-2 * time.Hour).Unix(),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := doRequest(engine, "/api/ping", "Bearer "+expired)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Token expired" {
		t.Errorf("error = %q, want Token expired", msg)
	}
}

func TestMiddlewareUserResolution(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret", ttl: time.Hour}

	active := repository.User{ID: uuid.New(), Email: "admin@acme.test", Role: "admin", IsActive: true}
	inactive := repository.User{ID: uuid.New(), Email: "gone@acme.test", Role: "admin", IsActive: false}
	resolver := &stubResolver{users: map[uuid.UUID]repository.User{
		active.ID:   active,
		inactive.ID: inactive,
	}}
	engine := newMiddlewareRouter(t, cfg, resolver)

	// token for a deleted user
	deleted, err := token.Issue(cfg, uuid.New())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec := doRequest(engine, "/api/ping", "Bearer "+deleted)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "User not found" {
		t.Errorf("error = %q", msg)
	}

	// token for a deactivated user
	inactiveToken, err := token.Issue(cfg, inactive.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = doRequest(engine, "/api/ping", "Bearer "+inactiveToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("inactive user: status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "User account is inactive" {
		t.Errorf("error = %q", msg)
	}

	// valid token resolves the user
	activeToken, err := token.Issue(cfg, active.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = doRequest(engine, "/api/ping", "Bearer "+activeToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("active user: status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret", ttl: time.Hour}

	viewer := repository.User{ID: uuid.New(), Email: "viewer@acme.test", Role: "viewer", IsActive: true}
	admin := repository.User{ID: uuid.New(), Email: "admin@acme.test", Role: "admin", IsActive: true}
	resolver := &stubResolver{users: map[uuid.UUID]repository.User{
		viewer.ID: viewer,
		admin.ID:  admin,
	}}
	engine := newMiddlewareRouter(t, cfg, resolver)

	viewerToken, _ := token.Issue(cfg, viewer.ID)
	rec := doRequest(engine, "/api/admin-only", "Bearer "+viewerToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer: status = %d, want 403", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Admin access required" {
		t.Errorf("error = %q", msg)
	}

	adminToken, _ := token.Issue(cfg, admin.ID)
	rec = doRequest(engine, "/api/admin-only", "Bearer "+adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
}
