package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"realtycrm/internal/authz"
	"realtycrm/internal/config"
	"realtycrm/internal/filter"
	"realtycrm/internal/handlers"
	"realtycrm/internal/logger"
	"realtycrm/internal/models"
	"realtycrm/internal/pdf"
	"realtycrm/internal/services"
	"realtycrm/internal/store"
	"realtycrm/internal/uistate"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func fixedNow() time.Time { return time.Date(2026, 3, 15, 14, 30, 0, 0, ist) }

type fakeStore struct {
	snap      store.Snapshot
	refreshed int
}

func (f *fakeStore) Snapshot() store.Snapshot { return f.snap }

func (f *fakeStore) Refresh(ctx context.Context) error {
	f.refreshed++
	return nil
}

func (f *fakeStore) RefreshCollection(ctx context.Context, c store.Collection) error {
	f.refreshed++
	return nil
}

type fakeEmail struct{ to []string }

func (f *fakeEmail) SendDigest(to []string, subject, html string, attachments ...services.Attachment) error {
	f.to = to
	return nil
}

type testServer struct {
	router *gin.Engine
	auth   *services.AuthService
	store  *fakeStore
	email  *fakeEmail
	wizard *services.InstallService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := fixedNow()
	log := logger.NewTestLogger(t)

	st := &fakeStore{snap: store.Snapshot{
		Leads: []models.Lead{
			{ID: 1, Name: "Asha Rao", ProjectID: 1, Status: models.LeadStatusNew, Priority: models.PriorityHigh, CreatedAt: now.Add(-time.Hour)},
			{ID: 2, Name: "Vikram Shah", ProjectID: 2, Status: models.LeadStatusContacted, Priority: models.PriorityLow, CreatedAt: now.AddDate(0, 0, -3)},
			{ID: 3, Name: "Meera Iyer", ProjectID: 1, Status: models.LeadStatusQualified, Priority: models.PriorityMedium, CreatedAt: now.AddDate(0, 0, -20)},
		},
		Opportunities: []models.Opportunity{{ID: 10, LeadID: 1, ProjectID: 1, Stage: models.StageScheduled, Value: 100, Probability: 10}},
		SiteVisits:    []models.SiteVisit{{ID: 20, ProjectID: 2, VisitDate: now, Status: models.VisitScheduled}},
		Projects:      []models.Project{{ID: 1, Name: "Skyline Towers"}, {ID: 2, Name: "Lake View"}},
		Loading:       map[store.Collection]bool{},
	}}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := services.NewAuthService([]config.UserConfig{
		{ID: 1, Email: "admin@example.com", PasswordHash: string(hash), Role: authz.RoleAdmin},
		{ID: 2, Email: "agent@example.com", PasswordHash: string(hash), Role: authz.RoleAgent},
	}, "test-secret", time.Hour, log)

	engine := filter.NewEngine(filter.WithClock(fixedNow), filter.WithLogger(log))
	dashboard := services.NewDashboardService(st, engine, fixedNow, log)
	email := &fakeEmail{}
	reports := services.NewReportService(dashboard, pdf.NewReportGenerator(t.TempDir(), ""), email,
		services.ReportOptions{DigestTo: []string{"sales@example.com"}, Now: fixedNow}, log)

	wizard := services.NewInstallService(filepath.Join(t.TempDir(), "config.yaml"), &config.Config{}, log,
		services.WithPinger(func(ctx context.Context, dsn string) error { return nil }))

	r := gin.New()
	SetupRoutes(r, Handlers{
		Auth:      handlers.NewAuthHandler(auth, log),
		Dashboard: handlers.NewDashboardHandler(dashboard, ist),
		Reports:   handlers.NewReportHandler(reports, ist),
		Install:   handlers.NewInstallHandler(wizard),
		UI:        handlers.NewUIHandler(uistate.NewManager()),
		Health:    handlers.NewHealthHandler(wizard.Installed, engine.Policy().Name),
	}, auth, wizard.Installed)

	return &testServer{router: r, auth: auth, store: st, email: email, wizard: wizard}
}

func (s *testServer) token(t *testing.T, id int, role string) string {
	tok, err := s.auth.Issue(services.Principal{UserID: id, Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
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

type listResponse struct {
	Items []struct {
		ID        int `json:"id"`
		ProjectID int `json:"project_id"`
	} `json:"items"`
	Count int `json:"count"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listResponse {
	t.Helper()
	var out listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","installed":false,"filter_policy":"reference"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/dashboard", "", nil).Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/login", "", map[string]string{"email": "agent@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/me", resp.AccessToken, nil).Code)

	w = s.do(http.MethodPost, "/login", "", map[string]string{"email": "agent@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadsFiltering(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2, authz.RoleAgent)

	w := s.do(http.MethodGet, "/leads", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeList(t, w).Count, "default is today")

	w = s.do(http.MethodGet, "/leads?date=week", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeList(t, w).Count)

	w = s.do(http.MethodGet, "/leads?date=week&project_id=2", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, 2, list.Items[0].ProjectID)

	w = s.do(http.MethodGet, "/leads?date=month&q=meera", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeList(t, w).Count)
}

func TestQueryValidation(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2, authz.RoleAgent)

	for _, path := range []string{
		"/leads?date=fortnight",
		"/leads?date=custom&start=2026-03-10&end=2026-03-01",
		"/leads?date=custom&start=yesterday&end=2026-03-01",
		"/dashboard?project_id=abc",
		"/opportunities?project_id=0",
	} {
		w := s.do(http.MethodGet, path, tok, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), `"error"`, path)
	}
}

func TestOtherCollections(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2, authz.RoleAgent)

	w := s.do(http.MethodGet, "/opportunities?project_id=1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeList(t, w).Count)

	w = s.do(http.MethodGet, "/site-visits?project_id=1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeList(t, w).Count)

	w = s.do(http.MethodGet, "/projects", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeList(t, w).Count)

	w = s.do(http.MethodGet, "/dashboard?date=week", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view services.DashboardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Summary.TotalLeads)
	assert.Equal(t, "Lake View", view.ProjectNames[2])
}

func TestAdminOnlyEndpoints(t *testing.T) {
	s := newTestServer(t)
	agent := s.token(t, 2, authz.RoleAgent)
	admin := s.token(t, 1, authz.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/refresh", agent, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/refresh", admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/refresh?collection=leads", admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/refresh?collection=tasks", admin, nil).Code)
	assert.Equal(t, 2, s.store.refreshed)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/reports/digest", agent, nil).Code)
	w := s.do(http.MethodPost, "/reports/digest?date=week", admin, map[string][]string{"to": {"boss@example.com"}})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"boss@example.com"}, s.email.to)

	w = s.do(http.MethodPost, "/reports/digest", admin, map[string][]string{"to": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDigestWithoutMailer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)
	dashboard := services.NewDashboardService(&fakeStore{snap: store.Snapshot{Loading: map[store.Collection]bool{}}},
		filter.NewEngine(filter.WithClock(fixedNow), filter.WithLogger(log)), fixedNow, log)
	reports := services.NewReportService(dashboard, pdf.NewReportGenerator(t.TempDir(), ""), nil,
		services.ReportOptions{Now: fixedNow}, log)

	r := gin.New()
	r.POST("/reports/digest", handlers.NewReportHandler(reports, ist).SendDigest)

	body, err := json.Marshal(map[string][]string{"to": {"boss@example.com"}})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/reports/digest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Email is not configured"}`, w.Body.String())
}

func TestLeadsPDF(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/reports/leads.pdf?date=week", s.token(t, 2, authz.RoleAgent), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestUIPanels(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2, authz.RoleAgent)

	w := s.do(http.MethodPost, "/ui/panels/filters/toggle", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"panel":"filters","open":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/ui/panels", tok, nil)
	var panels map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &panels))
	assert.True(t, panels[uistate.PanelFilters])

	other := s.token(t, 1, authz.RoleAdmin)
	w = s.do(http.MethodGet, "/ui/panels", other, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &panels))
	assert.False(t, panels[uistate.PanelFilters])

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/ui/panels/filters/close", tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/ui/panels/nope/open", tok, nil).Code)
}

func TestUIPanelStateAndCloseAll(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2, authz.RoleAgent)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/ui/panels/filters/open", tok, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/ui/panels/settings/open", tok, nil).Code)

	w := s.do(http.MethodGet, "/ui/panels/filters", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"panel":"filters","open":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/ui/panels/lead_form", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"panel":"lead_form","open":false}`, w.Body.String())

	w = s.do(http.MethodGet, "/ui/panels/nope", tok, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	var notFound struct {
		Panels []string `json:"panels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notFound))
	assert.Equal(t, uistate.NewManager().Panels(), notFound.Panels)

	w = s.do(http.MethodPost, "/ui/panels/close-all", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var panels map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &panels))
	assert.Len(t, panels, len(uistate.DefaultPanels))
	for name, open := range panels {
		assert.False(t, open, name)
	}

	w = s.do(http.MethodGet, "/ui/panels/settings", tok, nil)
	assert.JSONEq(t, `{"panel":"settings","open":false}`, w.Body.String())
}

func TestInstallWizard(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/install", "", nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/install/steps/app", "", map[string]string{"name": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/install/steps/9", "", map[string]string{}).Code)

	db := map[string]interface{}{"host": "localhost", "port": 5432, "name": "crm", "user": "crm"}
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/test-connection", "", db).Code)

	w := s.do(http.MethodPost, "/install/steps/database", "", map[string]interface{}{"host": "localhost"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"fields"`)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/steps/database", "", db).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/steps/2", "", map[string]string{
		"name": "Skyline Realty", "timezone": "Asia/Kolkata",
	}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/back", "", nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/steps/app", "", map[string]string{
		"name": "Skyline Realty", "timezone": "Asia/Kolkata",
	}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/steps/admin", "", map[string]string{
		"name": "Owner", "email": "owner@example.com", "password": "longenough", "confirm_password": "longenough",
	}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/install/steps/confirm", "", nil).Code)

	assert.True(t, s.wizard.Installed())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/install", "", nil).Code)
}
