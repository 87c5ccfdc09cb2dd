package clients_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
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
	"github.com/AlagappanMk24/Gymunity/modules/clients"
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

type programCatalog map[types.ProgramDayID]bool

func (c programCatalog) ProgramsOwnedBy(context.Context, types.TrainerID, []types.ProgramID) (bool, error) {
	return false, nil
}

func (c programCatalog) DayExists(_ context.Context, id types.ProgramDayID) (bool, error) {
	return c[id], nil
}

type trainerDirectory map[types.UserID]api.TrainerSummary

func (d trainerDirectory) Trainer(_ context.Context, id types.TrainerID) (api.TrainerSummary, error) {
	for _, t := range d {
		if t.ID == id {
			return t, nil
		}
	}
	return api.TrainerSummary{}, api.ErrNotFound
}

func (d trainerDirectory) TrainerByUser(_ context.Context, userID types.UserID) (api.TrainerSummary, error) {
	t, ok := d[userID]
	if !ok {
		return api.TrainerSummary{}, api.ErrNotFound
	}
	return t, nil
}

type ledger map[types.UserID]types.TrainerID

func (l ledger) ActiveSubscription(_ context.Context, clientID types.UserID, trainerID types.TrainerID) (types.PackageID, bool, error) {
	if l[clientID] == trainerID {
		return types.NewID[types.PackageKind](), true, nil
	}
	return types.PackageID{}, false, nil
}

type harness struct {
	srv      *httptest.Server
	tokens   *auth.TokenService
	uow      *eventbus.UnitOfWork
	days     programCatalog
	trainers trainerDirectory
	ledger   ledger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService(auth.Config{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Lifetime:   time.Hour,
	})
	uow, registry, _ := eventbustest.New()
	h := &harness{
		tokens:   tokens,
		uow:      uow,
		days:     programCatalog{},
		trainers: trainerDirectory{},
		ledger:   ledger{},
	}
	mod, err := clients.New(clients.Config{
		Store:      clients.StoreMemory,
		UnitOfWork: uow,
		Subscriber: registry,
		Programs:   h.days,
		Trainers:   h.trainers,
		Ledger:     h.ledger,
		Logger:     logger,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(tokens.Verifier(), tokens.Authenticate)
	mod.RegisterRoutes(r)
	h.srv = httptest.NewServer(r)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) token(t *testing.T, userID types.UserID, role types.Role) string {
	t.Helper()
	tok, _, err := h.tokens.Issue(auth.Claims{UserID: userID, Role: role})
	require.NoError(t, err)
	return tok
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

func TestProfileUpsert(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, types.NewUserID(), types.RoleClient)

	resp, _ := h.do(t, http.MethodGet, "/api/client/profile", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/api/client/profile", tok, `{"heightCm":30}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := h.do(t, http.MethodPut, "/api/client/profile", tok,
		`{"heightCm":175,"startingWeightKg":88,"gender":"Female","goal":"WeightLoss"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Beginner", body["experienceLevel"])
	assert.Equal(t, "WeightLoss", body["goal"])

	resp, body = h.do(t, http.MethodPut, "/api/client/profile", tok,
		`{"heightCm":175,"startingWeightKg":88,"experienceLevel":"Intermediate"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Intermediate", body["experienceLevel"])
	assert.Nil(t, body["goal"])

	trainerTok := h.token(t, types.NewUserID(), types.RoleTrainer)
	resp, _ = h.do(t, http.MethodGet, "/api/client/profile", trainerTok, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTrainingHistoryAndProgress(t *testing.T) {
	h := newHarness(t)
	clientID := types.NewUserID()
	tok := h.token(t, clientID, types.RoleClient)
	day := types.NewID[types.ProgramDayKind]()
	h.days[day] = true

	resp, _ := h.do(t, http.MethodPut, "/api/client/profile", tok, `{"startingWeightKg":90}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/client/body-stats", tok, `{"measurementsJson":"[1]"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/client/body-stats", tok,
		`{"weightKg":88.5,"loggedAt":"`+time.Now().Add(-48*time.Hour).UTC().Format(time.RFC3339)+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/client/body-stats", tok, `{"weightKg":87.2,"bodyFatPercent":21}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/client/body-stats", tok, `{"measurementsJson":"{\"waistCm\":84}"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := h.do(t, http.MethodGet, "/api/client/profile", tok, "")
	assert.Equal(t, 87.2, body["latestBodyStat"].(map[string]any)["weightKg"])
	_, body = h.do(t, http.MethodGet, "/api/client/body-stats", tok, "")
	assert.Equal(t, float64(3), body["total"])

	resp, _ = h.do(t, http.MethodPost, "/api/client/workout-logs", tok,
		`{"programDayId":"`+types.NewID[types.ProgramDayKind]().String()+`","durationMinutes":30}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/client/workout-logs", tok,
		`{"programDayId":"`+day.String()+`","durationMinutes":700}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, "/api/client/workout-logs", tok,
		`{"programDayId":"`+day.String()+`","durationMinutes":60,"exercisesLoggedJson":"[{\"exerciseId\":\"squat\",\"sets\":[{\"reps\":5,\"weightKg\":100}]}]"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	firstID := body["id"].(string)
	resp, _ = h.do(t, http.MethodPost, "/api/client/workout-logs", tok,
		`{"programDayId":"`+day.String()+`","durationMinutes":45,"completedAt":"`+time.Now().Add(-40*24*time.Hour).UTC().Format(time.RFC3339)+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body = h.do(t, http.MethodGet, "/api/client/workout-logs", tok, "")
	require.Equal(t, float64(2), body["total"])
	newest := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, firstID, newest["id"])
	assert.Equal(t, float64(500), newest["volumeKg"])

	_, body = h.do(t, http.MethodGet, "/api/client/progress", tok, "")
	assert.Equal(t, 87.2, body["latestWeightKg"])
	assert.Equal(t, -2.8, body["weightChangeKg"])
	assert.Equal(t, float64(2), body["workoutsTotal"])
	assert.Equal(t, float64(1), body["workoutsLast30Days"])
	assert.Equal(t, float64(105), body["totalMinutes"])

	otherTok := h.token(t, types.NewUserID(), types.RoleClient)
	resp, _ = h.do(t, http.MethodDelete, "/api/client/workout-logs/"+firstID, otherTok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = h.do(t, http.MethodDelete, "/api/client/workout-logs/"+firstID, tok, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTrainerSeesSubscriberProgress(t *testing.T) {
	h := newHarness(t)
	clientID, trainerUser := types.NewUserID(), types.NewUserID()
	trainerID := types.NewID[types.TrainerKind]()
	h.trainers[trainerUser] = api.TrainerSummary{ID: trainerID, UserID: trainerUser}
	trainerTok := h.token(t, trainerUser, types.RoleTrainer)
	path := "/api/trainer/clients/" + clientID.String() + "/progress"

	resp, _ := h.do(t, http.MethodGet, path, trainerTok, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	h.ledger[clientID] = trainerID
	resp, body := h.do(t, http.MethodGet, path, trainerTok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, clientID.String(), body["userId"])
	assert.Equal(t, float64(0), body["workoutsTotal"])

	adminTok := h.token(t, types.NewUserID(), types.RoleAdmin)
	resp, _ = h.do(t, http.MethodGet, "/api/trainer/clients/"+types.NewUserID().String()+"/progress", adminTok, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, path, h.token(t, clientID, types.RoleClient), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeletedUserHistoryIsRemoved(t *testing.T) {
	h := newHarness(t)
	clientID := types.NewUserID()
	tok := h.token(t, clientID, types.RoleClient)
	resp, _ := h.do(t, http.MethodPut, "/api/client/profile", tok, `{"heightCm":170}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/client/body-stats", tok, `{"weightKg":70}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	err := h.uow.Execute(context.Background(), "test.DeleteUser", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Publish(ctx, contracts.UserDeletedEvent{
			BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, clientID.String()),
			UserID:    clientID,
		})
	})
	require.NoError(t, err)

	resp, _ = h.do(t, http.MethodGet, "/api/client/profile", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_, body := h.do(t, http.MethodGet, "/api/client/body-stats", tok, "")
	assert.Equal(t, float64(0), body["total"])
}
