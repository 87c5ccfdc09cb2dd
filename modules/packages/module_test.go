package packages_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/auth"
	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus/eventbustest"
	"github.com/AlagappanMk24/Gymunity/modules/packages"
	"github.com/AlagappanMk24/Gymunity/modules/packages/application/commands"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type trainerDirectory map[types.UserID]types.TrainerID

func (d trainerDirectory) Trainer(_ context.Context, id types.TrainerID) (api.TrainerSummary, error) {
	for user, tid := range d {
		if tid == id {
			return api.TrainerSummary{ID: tid, UserID: user}, nil
		}
	}
	return api.TrainerSummary{}, api.ErrNotFound
}

func (d trainerDirectory) TrainerByUser(_ context.Context, userID types.UserID) (api.TrainerSummary, error) {
	id, ok := d[userID]
	if !ok {
		return api.TrainerSummary{}, api.ErrNotFound
	}
	return api.TrainerSummary{ID: id, UserID: userID}, nil
}

// programCatalog records which trainer owns which program.
type programCatalog map[types.ProgramID]types.TrainerID

func (c programCatalog) ProgramsOwnedBy(_ context.Context, trainerID types.TrainerID, ids []types.ProgramID) (bool, error) {
	for _, id := range ids {
		if owner, ok := c[id]; !ok || owner != trainerID {
			return false, nil
		}
	}
	return true, nil
}

func (c programCatalog) DayExists(context.Context, types.ProgramDayID) (bool, error) {
	return false, nil
}

type harness struct {
	srv      *httptest.Server
	tokens   *auth.TokenService
	uow      *eventbus.UnitOfWork
	trainers trainerDirectory
	programs programCatalog
	mod      packages.Module
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens := auth.NewTokenService(auth.Config{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Lifetime:   time.Hour,
	})
	uow, registry, _ := eventbustest.New()
	h := &harness{tokens: tokens, uow: uow, trainers: trainerDirectory{}, programs: programCatalog{}}
	mod, err := packages.New(packages.Config{
		Store:      packages.StoreMemory,
		UnitOfWork: uow,
		Subscriber: registry,
		Trainers:   h.trainers,
		Programs:   h.programs,
	})
	require.NoError(t, err)
	h.mod = mod

	r := chi.NewRouter()
	r.Use(tokens.Verifier(), tokens.Authenticate)
	mod.RegisterRoutes(r)
	h.srv = httptest.NewServer(r)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) trainer(t *testing.T) (types.TrainerID, string) {
	t.Helper()
	userID := types.NewUserID()
	id := types.NewID[types.TrainerKind]()
	h.trainers[userID] = id
	tok, _, err := h.tokens.Issue(auth.Claims{UserID: userID, Role: types.RoleTrainer})
	require.NoError(t, err)
	return id, tok
}

func (h *harness) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestPackageLifecycle(t *testing.T) {
	h := newHarness(t)
	trainerID, tok := h.trainer(t)
	_, otherTok := h.trainer(t)
	program := types.NewID[types.ProgramKind]()
	h.programs[program] = trainerID
	foreign := types.NewID[types.ProgramKind]()
	h.programs[foreign] = types.NewID[types.TrainerKind]()

	resp, _ := h.do(t, http.MethodPost, "/api/trainer/packages", tok,
		`{"name":"Elite","priceMonthlyCents":5000,"programIds":["`+foreign.String()+`"]}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/trainer/packages", tok, `{"name":"Elite","priceMonthlyCents":5000,"features":[1]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := h.do(t, http.MethodPost, "/api/trainer/packages", tok,
		`{"name":"Elite","priceMonthlyCents":5000,"priceYearlyCents":50000,"features":{"priorityMessaging":true,"formChecksPerWeek":4},"programIds":["`+program.String()+`"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, []any{"priorityMessaging", "formChecksPerWeek: 4"}, body["highlights"])

	resp, _ = h.do(t, http.MethodPut, "/api/trainer/packages/"+id, otherTok, `{"name":"Stolen"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = h.do(t, http.MethodPut, "/api/trainer/packages/"+id, tok, `{"priceMonthlyCents":6000,"clearYearlyPrice":true,"programIds":[]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Elite", body["name"])
	assert.Equal(t, float64(6000), body["priceMonthlyCents"])
	assert.Nil(t, body["priceYearlyCents"])
	assert.Empty(t, body["programIds"])

	_, body = h.do(t, http.MethodGet, "/api/packages?trainerId="+trainerID.String(), "", "")
	assert.Equal(t, float64(1), body["total"])

	resp, body = h.do(t, http.MethodPost, "/api/trainer/packages/"+id+"/toggle-active", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["isActive"])

	// Packages off sale disappear from the storefront but not from the owner.
	resp, _ = h.do(t, http.MethodGet, "/api/packages/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, "/api/packages/"+id, tok, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	summary, err := h.mod.Catalog().Package(context.Background(), types.MustParseID[types.PackageKind](id))
	require.NoError(t, err)
	assert.False(t, summary.IsActive)
	assert.Equal(t, trainerID, summary.TrainerID)

	resp, _ = h.do(t, http.MethodDelete, "/api/trainer/packages/"+id, tok, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err = h.mod.Catalog().Package(context.Background(), types.MustParseID[types.PackageKind](id))
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestSuspendedTrainerPackagesGoOffSale(t *testing.T) {
	h := newHarness(t)
	trainerID, tok := h.trainer(t)
	for _, name := range []string{"Basic", "Premium"} {
		resp, _ := h.do(t, http.MethodPost, "/api/trainer/packages", tok, `{"name":"`+name+`","priceMonthlyCents":1000}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	err := h.uow.Execute(context.Background(), "test.Suspend", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Publish(ctx, contracts.TrainerSuspendedEvent{
			BaseEvent: events.NewBaseEvent(contracts.TrainerSuspendedEventType, trainerID.String()),
			TrainerID: trainerID,
		})
	})
	require.NoError(t, err)

	_, body := h.do(t, http.MethodGet, "/api/packages", "", "")
	assert.Equal(t, float64(0), body["total"])
	_, body = h.do(t, http.MethodGet, "/api/trainer/packages", tok, "")
	assert.Equal(t, float64(2), body["total"])
}

func TestEnsurePackageIsIdempotent(t *testing.T) {
	h := newHarness(t)
	userID := types.NewUserID()
	h.trainers[userID] = types.NewID[types.TrainerKind]()
	in := commands.PackageInput{Name: "Starter Pack", PriceMonthlyCents: 2999, Currency: "EGP", PromoCode: "STARTER6"}

	first, created, err := h.mod.EnsurePackage(context.Background(), userID, in)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := h.mod.EnsurePackage(context.Background(), userID, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)
}
