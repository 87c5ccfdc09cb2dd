package reporting_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/modules/reporting"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/domain"
	"github.com/AlagappanMk24/Gymunity/modules/reporting/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type harness struct {
	srv    *httptest.Server
	tokens *auth.TokenService
}

func newHarness(t *testing.T, source domain.Source) *harness {
	t.Helper()
	tokens := auth.NewTokenService(auth.Config{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Lifetime:   time.Hour,
	})
	mod, err := reporting.New(reporting.Config{
		Source: source,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(tokens.Verifier(), tokens.Authenticate)
	mod.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, tokens: tokens}
}

func (h *harness) get(t *testing.T, path string, role types.Role) *http.Response {
	t.Helper()
	tok, _, err := h.tokens.Issue(auth.Claims{UserID: types.NewUserID(), Role: role})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodGet, h.srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func sampleSource() *persistence.StaticSource {
	now := time.Now().UTC()
	return &persistence.StaticSource{
		Users:         map[types.Role]int{types.RoleClient: 40, types.RoleTrainer: 6},
		Active:        18,
		Reviews:       2,
		Verifications: 1,
		Payments: []persistence.Payment{
			{Currency: "EGP", AmountCents: 2999, PlatformCents: 300, PaidAt: now},
			{Currency: "EGP", AmountCents: 2999, PlatformCents: 300, PaidAt: now.AddDate(0, -2, 0)},
		},
		Trainers: []domain.TopTrainer{
			{TrainerID: types.NewID[types.TrainerKind](), Handle: "quiet", ActiveSubscribers: 2},
			{TrainerID: types.NewID[types.TrainerKind](), Handle: "busy", FullName: "Busy Coach", ActiveSubscribers: 11},
		},
	}
}

func TestOverview(t *testing.T) {
	h := newHarness(t, sampleSource())

	resp := h.get(t, "/admin/dashboard", types.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var o domain.Overview
	decode(t, resp, &o)

	assert.Equal(t, 46, o.TotalUsers)
	assert.Equal(t, 0, o.UsersByRole[types.RoleAdmin])
	assert.Equal(t, 18, o.ActiveSubscriptions)
	assert.Equal(t, 2, o.PendingReviews)
	assert.Equal(t, 1, o.PendingTrainerVerifications)
	require.Len(t, o.RevenueTotal, 1)
	assert.Equal(t, int64(5998), o.RevenueTotal[0].AmountCents)
	require.Len(t, o.RevenueThisMonth, 1)
	assert.Equal(t, int64(2999), o.RevenueThisMonth[0].AmountCents)
}

func TestDashboardIsAdminOnly(t *testing.T) {
	h := newHarness(t, sampleSource())

	assert.Equal(t, http.StatusForbidden, h.get(t, "/admin/dashboard", types.RoleTrainer).StatusCode)
	resp, err := http.Get(h.srv.URL + "/admin/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRevenueChart(t *testing.T) {
	h := newHarness(t, sampleSource())

	resp := h.get(t, "/admin/dashboard/revenue-chart?days=7", types.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chart domain.RevenueChart
	decode(t, resp, &chart)

	assert.Equal(t, "EGP", chart.Currency)
	require.Len(t, chart.Points, 7)
	last := chart.Points[6]
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), last.Date)
	assert.Equal(t, int64(2999), last.AmountCents)
	assert.Equal(t, int64(2999), chart.TotalCents)

	assert.Equal(t, http.StatusBadRequest, h.get(t, "/admin/dashboard/revenue-chart?days=many", types.RoleAdmin).StatusCode)
}

func TestTopTrainers(t *testing.T) {
	h := newHarness(t, sampleSource())

	resp := h.get(t, "/admin/dashboard/top-trainers?limit=1", types.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []domain.TopTrainer
	decode(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "busy", rows[0].Handle)
}

func TestStatisticsExport(t *testing.T) {
	h := newHarness(t, sampleSource())

	resp := h.get(t, "/admin/dashboard/statistics/export", types.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(body) > 4 && string(body[:4]) == "%PDF")

	resp = h.get(t, "/admin/dashboard/statistics/export?format=csv", types.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Top trainers,1. Busy Coach,11 active subscribers")

	assert.Equal(t, http.StatusBadRequest, h.get(t, "/admin/dashboard/statistics/export?format=doc", types.RoleAdmin).StatusCode)
}

func TestSourceFailureIsInternalError(t *testing.T) {
	h := newHarness(t, &persistence.StaticSource{Err: errors.New("connection reset")})

	assert.Equal(t, http.StatusInternalServerError, h.get(t, "/admin/dashboard", types.RoleAdmin).StatusCode)
}
