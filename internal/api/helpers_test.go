package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/notify"
	"f2fit/gym-manager/internal/repository/kvrepo"
	"f2fit/gym-manager/internal/repository/memory"
	"f2fit/gym-manager/internal/service"
)

const (
	adminEmail    = "admin@f2fit.sn"
	adminPassword = "admin123"
	testSecret    = "api-test-secret"
)

type testServer struct {
	router   *gin.Engine
	services Services
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	clock := domain.SystemClock{}
	repos := kvrepo.New(memory.NewStore(), clock)

	hash, err := service.HashPassword(adminPassword)
	require.NoError(t, err)

	notifier := notify.NewLogNotifier(log)
	s := Services{}
	s.Tariffs = service.NewTariffService(repos.Tariffs, clock)
	s.Gyms = service.NewGymService(repos, s.Tariffs, nil, clock, log)
	s.Auth = service.NewAuthService(repos, s.Gyms, service.AdminCredentials{Email: adminEmail, PasswordHash: hash}, testSecret, time.Hour, clock, log)
	s.Plans = service.NewPlanService(repos.Plans)
	s.Subscriptions = service.NewSubscriptionService(repos.Subscriptions, repos.Members, repos.Plans, clock, log)
	s.Members = service.NewMemberService(repos, s.Subscriptions, notifier, "passer1234", clock, log)
	s.Coaches = service.NewCoachService(repos.Coaches, repos.Messages)
	s.Classes = service.NewClassService(repos.Classes, repos.Coaches, clock, log)
	s.Equipment = service.NewEquipmentService(repos.Equipment)
	s.Messages = service.NewMessageService(repos.Messages, repos.Members, repos.Coaches)
	s.Reports = service.NewReportService(repos, s.Tariffs, clock)
	s.Exports = service.NewExportService(service.ExportSources{
		Members:       s.Members,
		Coaches:       s.Coaches,
		Classes:       s.Classes,
		Equipment:     s.Equipment,
		Subscriptions: s.Subscriptions,
		Plans:         s.Plans,
		Gyms:          s.Gyms,
		Reports:       s.Reports,
	}, nil, clock, log)

	return &testServer{
		router:   NewRouter(s, RouterOptions{AuthLimiter: limiter}, log),
		services: s,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Token
}

// registerGym signs up a gym and returns its admin token.
func (ts *testServer) registerGym(t *testing.T, name, email string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"gymName":   name,
		"adminName": "Admin " + name,
		"email":     email,
		"password":  "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return ts.login(t, email, "secret123")
}

func zapNop() *zap.Logger { return zap.NewNop() }

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// MockAuthService stubs the session lookups of AuthMiddleware.
type MockAuthService struct {
	mock.Mock
	service.AuthService
}

func (m *MockAuthService) GetJWTSecret() string { return testSecret }

func (m *MockAuthService) CurrentSession(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
