package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/service"
)

func signToken(t *testing.T, secret string, claims jwtClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(sessionID string, role domain.Role, ttl time.Duration) jwtClaims {
	return jwtClaims{
		UserID:    "gym-1",
		Role:      role,
		GymID:     "gym-1",
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	live := &domain.Session{ID: "live", UserID: "gym-1", GymID: "gym-1", Role: domain.RoleGymAdmin}
	auth := &MockAuthService{}
	auth.On("CurrentSession", mock.Anything, "live").Return(live, nil)
	auth.On("CurrentSession", mock.Anything, "gone").Return(nil, service.ErrSessionExpired)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", claimsFor("live", domain.RoleGymAdmin, time.Hour)), http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, testSecret, claimsFor("live", domain.RoleGymAdmin, -time.Minute)), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, testSecret, claimsFor("live", "trainer", time.Hour)), http.StatusUnauthorized},
		{"revoked session", "Bearer " + signToken(t, testSecret, claimsFor("gone", domain.RoleGymAdmin, time.Hour)), http.StatusUnauthorized},
		{"role differs from session", "Bearer " + signToken(t, testSecret, claimsFor("live", domain.RolePlatformAdmin, time.Hour)), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, claimsFor("live", domain.RoleGymAdmin, time.Hour)), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			AuthMiddleware(auth)(c)

			if tt.wantStatus == http.StatusOK {
				assert.False(t, c.IsAborted())
				assert.Equal(t, "gym-1", c.GetString(ContextGymIDKey))
				session, err := getSessionFromContext(c)
				require.NoError(t, err)
				assert.Equal(t, "live", session.ID)
				return
			}
			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		role     domain.Role
		allowed  []domain.Role
		wantCode int
		wantHome string
	}{
		{"allowed", domain.RoleGymAdmin, []domain.Role{domain.RoleGymAdmin}, http.StatusOK, ""},
		{"client in admin section", domain.RoleClient, []domain.Role{domain.RolePlatformAdmin}, http.StatusForbidden, "/client/dashboard"},
		{"gym admin in client section", domain.RoleGymAdmin, []domain.Role{domain.RoleClient}, http.StatusForbidden, "/dashboard"},
		{"admin in gym section", domain.RolePlatformAdmin, []domain.Role{domain.RoleGymAdmin}, http.StatusForbidden, "/admin/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) {
				c.Set(ContextUserRoleKey, tt.role)
				c.Next()
			}, RoleMiddleware(tt.allowed...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantHome != "" {
				assert.Equal(t, tt.wantHome, decode[map[string]string](t, w)["home"])
			}
		})
	}
}

func TestRoleMiddleware_MissingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RoleMiddleware(domain.RoleClient)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(0.001, 2, time.Minute)
	router := gin.New()
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "buckets are per IP")

	assert.Equal(t, 2, limiter.Cleanup())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(zapNop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestMetricsAndLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(zapNop()), MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?x=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
