package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f2fit/gym-manager/internal/domain"
)

type idBody struct {
	ID string `json:"id"`
}

func TestHealthAndNoRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode[map[string]string](t, w)["message"])

	w = ts.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/", decode[map[string]string](t, w)["home"])

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestLoginMeLogout(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, adminEmail, adminPassword)

	w := ts.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode[struct {
		User domain.Session `json:"user"`
		Home string         `json:"home"`
	}](t, w)
	assert.Equal(t, domain.RolePlatformAdmin, me.User.Role)
	assert.Equal(t, "/admin/dashboard", me.Home)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a logged out token is dead")
}

func TestLogin_Rejections(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoleSections(t *testing.T) {
	ts := newTestServer(t, nil)
	gymToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")
	adminToken := ts.login(t, adminEmail, adminPassword)

	w := ts.do(t, http.MethodGet, "/api/v1/admin/gyms", gymToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/dashboard", decode[map[string]string](t, w)["home"])

	w = ts.do(t, http.MethodGet, "/api/v1/gym/members", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/admin/dashboard", decode[map[string]string](t, w)["home"])

	w = ts.do(t, http.MethodGet, "/api/v1/admin/gyms", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	gyms := decode[[]map[string]any](t, w)
	require.Len(t, gyms, 1)
	assert.Equal(t, "Iron Dakar", gyms[0]["gymName"])
	assert.NotContains(t, gyms[0], "passwordHash")

	w = ts.do(t, http.MethodGet, "/api/v1/gym/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGymMemberFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	gymToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")

	w := ts.do(t, http.MethodGet, "/api/v1/gym/plans", gymToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	plans := decode[[]idBody](t, w)
	require.Len(t, plans, 3)

	w = ts.do(t, http.MethodPost, "/api/v1/gym/members", gymToken, gin.H{
		"name":   "Awa Ndiaye",
		"email":  "awa@mail.sn",
		"planId": plans[0].ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	member := decode[idBody](t, w)

	w = ts.do(t, http.MethodPost, "/api/v1/gym/members", gymToken, gin.H{"name": "Awa Bis", "email": "AWA@mail.sn"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/gym/members/"+member.ID+"/renew", gymToken, gin.H{"planId": plans[0].ID})
	assert.Equal(t, http.StatusConflict, w.Code, "the first subscription is still running")

	w = ts.do(t, http.MethodGet, "/api/v1/gym/subscriptions?memberId="+member.ID, gymToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idBody](t, w), 1)

	clientToken := ts.login(t, "awa@mail.sn", "passer1234")

	w = ts.do(t, http.MethodGet, "/api/v1/gym/members", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/client/dashboard", decode[map[string]string](t, w)["home"])

	w = ts.do(t, http.MethodGet, "/api/v1/client/subscriptions", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idBody](t, w), 1)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/change-password", clientToken, gin.H{
		"newPassword":     "nouveau123",
		"confirmPassword": "nouveau123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/client/dashboard", decode[map[string]string](t, w)["home"])
	ts.login(t, "awa@mail.sn", "nouveau123")

	w = ts.do(t, http.MethodDelete, "/api/v1/gym/members/"+member.ID, gymToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/gym/members/"+member.ID, gymToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookClass_Full(t *testing.T) {
	ts := newTestServer(t, nil)
	gymToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")

	day := domain.DateOf(time.Now().AddDate(0, 0, 3))
	w := ts.do(t, http.MethodPost, "/api/v1/gym/classes", gymToken, gin.H{
		"name":            "Boxe",
		"type":            "individual",
		"date":            day.String(),
		"time":            "18:00",
		"maxParticipants": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	class := decode[idBody](t, w)

	w = ts.do(t, http.MethodPost, "/api/v1/gym/classes/"+class.ID+"/book", gymToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["participants"])

	w = ts.do(t, http.MethodPost, "/api/v1/gym/classes/"+class.ID+"/book", gymToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/gym/classes/upcoming", gymToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idBody](t, w), 1)

	w = ts.do(t, http.MethodPost, "/api/v1/gym/classes", gymToken, gin.H{
		"name":            "Yoga",
		"type":            "group",
		"date":            day.String(),
		"time":            "25:00",
		"maxParticipants": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantIsolation(t *testing.T) {
	ts := newTestServer(t, nil)
	ironToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")
	fitToken := ts.registerGym(t, "Fit Thies", "fit@gym.sn")

	w := ts.do(t, http.MethodPost, "/api/v1/gym/coaches", ironToken, gin.H{"name": "Moussa"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	coach := decode[idBody](t, w)

	w = ts.do(t, http.MethodGet, "/api/v1/gym/coaches/"+coach.ID, fitToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/gym/coaches", fitToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]idBody](t, w))
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t, nil)
	gymToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")

	w := ts.do(t, http.MethodPost, "/api/v1/gym/members", gymToken, gin.H{"name": "Awa Ndiaye", "email": "awa@mail.sn"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/gym/exports", gymToken, gin.H{"entity": "members", "format": "csv"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="members_export_`)

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(w.Body.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, records[1], "Awa Ndiaye")

	w = ts.do(t, http.MethodPost, "/api/v1/gym/exports", gymToken, gin.H{"entity": "members", "format": "docx"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/gym/exports", gymToken, gin.H{"entity": "members", "format": "csv", "store": true})
	assert.Equal(t, http.StatusConflict, w.Code, "no object storage is configured")
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t, NewRateLimiter(0.001, 2, time.Minute))
	body := gin.H{"email": adminEmail, "password": "wrong"}

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)

	w := ts.do(t, http.MethodGet, "/api/v1/tariffs/public", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "public tariffs are not throttled")
}

func TestSessionsEndWithAccount(t *testing.T) {
	ts := newTestServer(t, nil)
	adminToken := ts.login(t, adminEmail, adminPassword)
	ironToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")
	fitToken := ts.registerGym(t, "Fit Thies", "fit@gym.sn")

	w := ts.do(t, http.MethodGet, "/api/v1/admin/gyms?search=iron", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	iron := decode[[]idBody](t, w)
	require.Len(t, iron, 1)
	w = ts.do(t, http.MethodGet, "/api/v1/admin/gyms?search=fit", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fit := decode[[]idBody](t, w)
	require.Len(t, fit, 1)

	for _, email := range []string{"awa@mail.sn", "fatou@mail.sn"} {
		w = ts.do(t, http.MethodPost, "/api/v1/gym/members", fitToken, gin.H{"name": "Membre", "email": email})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = ts.do(t, http.MethodGet, "/api/v1/gym/members?search=awa", fitToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	awa := decode[[]idBody](t, w)
	require.Len(t, awa, 1)
	w = ts.do(t, http.MethodGet, "/api/v1/gym/members?search=fatou", fitToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fatou := decode[[]idBody](t, w)
	require.Len(t, fatou, 1)

	awaToken := ts.login(t, "awa@mail.sn", "passer1234")
	fatouToken := ts.login(t, "fatou@mail.sn", "passer1234")
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/v1/client/subscriptions", awaToken, nil).Code)

	w = ts.do(t, http.MethodPut, "/api/v1/gym/members/"+awa[0].ID, fitToken, gin.H{"name": "Awa", "email": "awa@mail.sn", "status": "suspended"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/client/subscriptions", awaToken, nil).Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/gym/members/"+fatou[0].ID, fitToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/client/subscriptions", fatouToken, nil).Code)

	w = ts.do(t, http.MethodPatch, "/api/v1/admin/gyms/"+iron[0].ID+"/status", adminToken, gin.H{"status": "disabled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/gym/members", ironToken, nil).Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/admin/gyms/"+fit[0].ID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/gym/members", fitToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/me", fitToken, nil).Code)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/v1/admin/gyms", adminToken, nil).Code)
}

func TestReportRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	adminToken := ts.login(t, adminEmail, adminPassword)
	gymToken := ts.registerGym(t, "Iron Dakar", "iron@gym.sn")

	w := ts.do(t, http.MethodGet, "/api/v1/admin/reports?period=all", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[struct {
		Period  string `json:"period"`
		NewGyms int    `json:"newGyms"`
		Growth  []struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		} `json:"growth"`
	}](t, w)
	assert.Equal(t, "all", report.Period)
	assert.Equal(t, 1, report.NewGyms)
	require.NotEmpty(t, report.Growth)
	assert.Equal(t, 1, report.Growth[len(report.Growth)-1].Value)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/reports", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "month", decode[map[string]any](t, w)["period"])

	w = ts.do(t, http.MethodGet, "/api/v1/admin/reports?period=decade", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/admin/exports/report", adminToken, gin.H{"format": "csv", "period": "year"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="rapport-global_export_`)
	assert.Contains(t, w.Body.String(), "Nouvelles Salles (year),1")

	w = ts.do(t, http.MethodGet, "/api/v1/gym/reports/revenue?timeframe=yearly", gymToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	chart := decode[struct {
		Timeframe string `json:"timeframe"`
		Points    []struct {
			Name  string `json:"name"`
			Value int64  `json:"value"`
		} `json:"points"`
	}](t, w)
	assert.Equal(t, "yearly", chart.Timeframe)
	require.Len(t, chart.Points, 3)
	assert.Equal(t, strconv.Itoa(time.Now().Year()), chart.Points[2].Name)

	w = ts.do(t, http.MethodGet, "/api/v1/gym/reports/revenue?timeframe=daily", gymToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/gym/reports/revenue", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
