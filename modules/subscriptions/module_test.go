package subscriptions_test

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
	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/application/commands"
	httphandler "github.com/AlagappanMk24/Gymunity/modules/subscriptions/infrastructure/http"
)

const webhookSecret = "whsec_test"

type packageCatalog map[types.PackageID]api.PackageSummary

func (c packageCatalog) Package(_ context.Context, id types.PackageID) (api.PackageSummary, error) {
	p, ok := c[id]
	if !ok {
		return api.PackageSummary{}, api.ErrNotFound
	}
	return p, nil
}

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

type harness struct {
	srv      *httptest.Server
	tokens   *auth.TokenService
	uow      *eventbus.UnitOfWork
	recorder *eventbustest.Recorder
	packages packageCatalog
	trainers trainerDirectory
	mod      subscriptions.Module
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens := auth.NewTokenService(auth.Config{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Lifetime:   time.Hour,
	})
	uow, registry, rec := eventbustest.New()
	h := &harness{tokens: tokens, uow: uow, recorder: rec, packages: packageCatalog{}, trainers: trainerDirectory{}}
	mod, err := subscriptions.New(subscriptions.Config{
		Store:         subscriptions.StoreMemory,
		UnitOfWork:    uow,
		Subscriber:    registry,
		Packages:      h.packages,
		Trainers:      h.trainers,
		WebhookSecret: webhookSecret,
		CheckoutURL:   "https://pay.example.com/checkout",
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

func (h *harness) token(t *testing.T, userID types.UserID, role types.Role) string {
	t.Helper()
	tok, _, err := h.tokens.Issue(auth.Claims{UserID: userID, Role: role})
	require.NoError(t, err)
	return tok
}

// pkg registers a package of a new trainer and returns it with the
// trainer's token.
func (h *harness) pkg(t *testing.T, active bool, yearly *int64) (api.PackageSummary, string) {
	t.Helper()
	trainerUser := types.NewUserID()
	trainerID := types.NewID[types.TrainerKind]()
	h.trainers[trainerUser] = trainerID
	p := api.PackageSummary{
		ID:            types.NewID[types.PackageKind](),
		TrainerID:     trainerID,
		TrainerUserID: trainerUser,
		Name:          "Starter Pack",
		PriceMonthly:  types.MustNewMoney(2999, "EGP"),
		IsActive:      active,
	}
	if yearly != nil {
		y := types.MustNewMoney(*yearly, "EGP")
		p.PriceYearly = &y
	}
	h.packages[p.ID] = p
	return p, h.token(t, trainerUser, types.RoleTrainer)
}

func (h *harness) do(t *testing.T, method, path, token, body string, header ...string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (h *harness) webhook(t *testing.T, payload string) *http.Response {
	t.Helper()
	resp, _ := h.do(t, http.MethodPost, "/api/payments/webhook", "", payload,
		httphandler.SignatureHeader, "sha256="+commands.Sign(webhookSecret, []byte(payload)))
	return resp
}

// subscribeAndPay opens a subscription for clientTok and completes its
// first payment through the webhook.
func (h *harness) subscribeAndPay(t *testing.T, packageID types.PackageID, clientTok string) (subID, paymentID string) {
	t.Helper()
	resp, body := h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+packageID.String()+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subID = body["id"].(string)

	resp, checkout := h.do(t, http.MethodPost, "/api/subscriptions/"+subID+"/pay", clientTok, `{"method":"stripe"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ref := checkout["reference"].(string)

	require.Equal(t, http.StatusOK, h.webhook(t, `{"reference":"`+ref+`","status":"succeeded","transactionId":"txn_1"}`).StatusCode)
	return subID, checkout["paymentId"].(string)
}

func TestSubscribeAndPay(t *testing.T) {
	h := newHarness(t)
	pkg, trainerTok := h.pkg(t, true, nil)
	clientID := types.NewUserID()
	clientTok := h.token(t, clientID, types.RoleClient)

	resp, body := h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+pkg.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Unpaid", body["status"])
	assert.Equal(t, float64(1500), body["platformFeeBps"])
	subID := body["id"].(string)

	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+pkg.ID.String()+`"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions", trainerTok, `{"packageId":"`+pkg.ID.String()+`"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions/"+subID+"/pay", clientTok, `{"method":"cash"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	otherTok := h.token(t, types.NewUserID(), types.RoleClient)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions/"+subID+"/pay", otherTok, `{"method":"stripe"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, checkout := h.do(t, http.MethodPost, "/api/subscriptions/"+subID+"/pay", clientTok, `{"method":"Paymob"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ref := checkout["reference"].(string)
	assert.True(t, strings.HasPrefix(ref, "paymob_"))
	assert.Equal(t, float64(2999), checkout["amountCents"])
	assert.Contains(t, checkout["checkoutUrl"], "reference="+ref)

	payload := `{"reference":"` + ref + `","status":"succeeded","transactionId":"txn_42"}`
	resp, _ = h.do(t, http.MethodPost, "/api/payments/webhook", "", payload, httphandler.SignatureHeader, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	h.recorder.Reset()
	require.Equal(t, http.StatusOK, h.webhook(t, payload).StatusCode)
	assert.ElementsMatch(t, []events.EventType{contracts.SubscriptionActivatedEventType, contracts.PaymentCompletedEventType}, h.recorder.Types())

	h.recorder.Reset()
	require.Equal(t, http.StatusOK, h.webhook(t, payload).StatusCode, "replays are accepted")
	assert.Empty(t, h.recorder.Types())

	_, body = h.do(t, http.MethodGet, "/api/subscriptions/"+subID, clientTok, "")
	assert.Equal(t, "Active", body["status"])
	assert.Equal(t, float64(2999), body["amountPaidCents"])
	_, body = h.do(t, http.MethodGet, "/api/subscriptions/"+subID, trainerTok, "")
	assert.Equal(t, "Active", body["status"], "the trainer sees subscriptions to their packages")
	resp, _ = h.do(t, http.MethodGet, "/api/subscriptions/"+subID, otherTok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = h.do(t, http.MethodGet, "/api/payments", clientTok, "")
	require.Equal(t, float64(1), body["total"])
	payment := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Completed", payment["status"])
	assert.Equal(t, float64(450), payment["platformFeeCents"])
	assert.Equal(t, float64(2549), payment["trainerPayoutCents"])

	_, body = h.do(t, http.MethodGet, "/api/trainer/subscribers?status=active", trainerTok, "")
	assert.Equal(t, float64(1), body["total"])

	pkgID, ok, err := h.mod.Ledger().ActiveSubscription(context.Background(), clientID, pkg.TrainerID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pkg.ID, pkgID)
}

func TestSubscribeRejectsUnavailablePackages(t *testing.T) {
	h := newHarness(t)
	inactive, _ := h.pkg(t, false, nil)
	monthlyOnly, _ := h.pkg(t, true, nil)
	clientTok := h.token(t, types.NewUserID(), types.RoleClient)

	resp, _ := h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+inactive.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+types.NewID[types.PackageKind]().String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+monthlyOnly.ID.String()+`","isAnnual":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	yearly := int64(29999)
	annual, _ := h.pkg(t, true, &yearly)
	resp, body := h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+annual.ID.String()+`","isAnnual":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(29999), body["priceCents"])
}

func TestFailedPaymentKeepsSubscriptionUnpaid(t *testing.T) {
	h := newHarness(t)
	pkg, _ := h.pkg(t, true, nil)
	clientTok := h.token(t, types.NewUserID(), types.RoleClient)
	_, body := h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+pkg.ID.String()+`"}`)
	subID := body["id"].(string)
	_, checkout := h.do(t, http.MethodPost, "/api/subscriptions/"+subID+"/pay", clientTok, `{"method":"paypal"}`)
	ref := checkout["reference"].(string)

	assert.Equal(t, http.StatusBadRequest, h.webhook(t, `{"reference":"`+ref+`","status":"pending"}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, h.webhook(t, `{"reference":"paypal_unknown","status":"failed"}`).StatusCode)

	h.recorder.Reset()
	require.Equal(t, http.StatusOK, h.webhook(t, `{"reference":"`+ref+`","status":"failed","failureReason":"card declined"}`).StatusCode)
	assert.Equal(t, []events.EventType{contracts.PaymentFailedEventType}, h.recorder.Types())
	assert.Equal(t, http.StatusConflict, h.webhook(t, `{"reference":"`+ref+`","status":"succeeded"}`).StatusCode)

	_, body = h.do(t, http.MethodGet, "/api/subscriptions/"+subID, clientTok, "")
	assert.Equal(t, "Unpaid", body["status"])
}

func TestCancelAndRefund(t *testing.T) {
	h := newHarness(t)
	pkg, _ := h.pkg(t, true, nil)
	clientTok := h.token(t, types.NewUserID(), types.RoleClient)
	adminTok := h.token(t, types.NewUserID(), types.RoleAdmin)

	subID, paymentID := h.subscribeAndPay(t, pkg.ID, clientTok)

	resp, _ := h.do(t, http.MethodPost, "/admin/subscriptions/"+subID+"/cancel", adminTok, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "administrators must give a reason")

	h.recorder.Reset()
	resp, _ = h.do(t, http.MethodPost, "/admin/payments/"+paymentID+"/refund", adminTok, `{"reason":"duplicate charge"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []events.EventType{contracts.PaymentRefundedEventType, contracts.SubscriptionCanceledEventType}, h.recorder.Types())
	resp, _ = h.do(t, http.MethodPost, "/admin/payments/"+paymentID+"/refund", adminTok, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, body := h.do(t, http.MethodGet, "/admin/subscriptions/"+subID, adminTok, "")
	assert.Equal(t, "Canceled", body["status"])
	assert.Equal(t, "duplicate charge", body["cancelReason"])

	// A client can cancel an unpaid subscription and subscribe again.
	_, body = h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+pkg.ID.String()+`"}`)
	again := body["id"].(string)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions/"+again+"/cancel", h.token(t, types.NewUserID(), types.RoleClient), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions/"+again+"/cancel", clientTok, `{"reason":"too expensive"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/subscriptions/"+again+"/cancel", clientTok, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, stats := h.do(t, http.MethodGet, "/admin/subscriptions/stats", adminTok, "")
	assert.Equal(t, float64(2), stats["canceled"])
	_, stats = h.do(t, http.MethodGet, "/admin/payments/stats", adminTok, "")
	assert.Equal(t, float64(1), stats["refunded"])
}

func TestAdminReportsAndExport(t *testing.T) {
	h := newHarness(t)
	pkg, _ := h.pkg(t, true, nil)
	adminTok := h.token(t, types.NewUserID(), types.RoleAdmin)
	h.subscribeAndPay(t, pkg.ID, h.token(t, types.NewUserID(), types.RoleClient))
	h.subscribeAndPay(t, pkg.ID, h.token(t, types.NewUserID(), types.RoleClient))

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/admin/payments/revenue", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var revenue []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&revenue))
	resp.Body.Close()
	require.Len(t, revenue, 1)
	assert.Equal(t, "EGP", revenue[0]["currency"])
	assert.Equal(t, float64(5998), revenue[0]["grossCents"])
	assert.Equal(t, float64(900), revenue[0]["platformFeeCents"])

	_, body := h.do(t, http.MethodGet, "/admin/payments?status=completed&minAmount=1000", adminTok, "")
	assert.Equal(t, float64(2), body["total"])
	_, body = h.do(t, http.MethodGet, "/admin/subscriptions?status=active&trainerId="+pkg.TrainerID.String(), adminTok, "")
	assert.Equal(t, float64(2), body["total"])
	_, body = h.do(t, http.MethodGet, "/admin/subscriptions/expiring?days=40", adminTok, "")
	assert.Equal(t, float64(2), body["total"])
	_, body = h.do(t, http.MethodGet, "/admin/subscriptions/expiring?days=3", adminTok, "")
	assert.Equal(t, float64(0), body["total"])

	req, err = http.NewRequest(http.MethodGet, h.srv.URL+"/admin/payments/export?format=csv", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "payments_")

	resp, _ = h.do(t, http.MethodGet, "/admin/payments", h.token(t, types.NewUserID(), types.RoleClient), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestExpirySweep(t *testing.T) {
	h := newHarness(t)
	pkg, _ := h.pkg(t, true, nil)
	clientID := types.NewUserID()
	h.subscribeAndPay(t, pkg.ID, h.token(t, clientID, types.RoleClient))

	n, err := h.mod.Sweeper().Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	h.recorder.Reset()
	n, err = h.mod.Sweeper().Sweep(context.Background(), time.Now().AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Equal(t, []events.EventType{contracts.SubscriptionCanceledEventType}, h.recorder.Types())
	expired := h.recorder.Events()[0].(contracts.SubscriptionCanceledEvent)
	assert.True(t, expired.Expired)
	assert.True(t, expired.WasActive)

	_, ok, err := h.mod.Ledger().ActiveSubscription(context.Background(), clientID, pkg.TrainerID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletedClientSubscriptionsAreCanceled(t *testing.T) {
	h := newHarness(t)
	pkg, _ := h.pkg(t, true, nil)
	other, _ := h.pkg(t, true, nil)
	clientID := types.NewUserID()
	clientTok := h.token(t, clientID, types.RoleClient)
	h.subscribeAndPay(t, pkg.ID, clientTok)
	resp, _ := h.do(t, http.MethodPost, "/api/subscriptions", clientTok, `{"packageId":"`+other.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	h.recorder.Reset()
	err := h.uow.Execute(context.Background(), "test.DeleteUser", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Publish(ctx, contracts.UserDeletedEvent{
			BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, clientID.String()),
			UserID:    clientID,
		})
	})
	require.NoError(t, err)

	_, body := h.do(t, http.MethodGet, "/api/subscriptions?status=canceled", clientTok, "")
	assert.Equal(t, float64(2), body["total"])
	canceled := 0
	for _, typ := range h.recorder.Types() {
		if typ == contracts.SubscriptionCanceledEventType {
			canceled++
		}
	}
	assert.Equal(t, 2, canceled)
}
