package realtime_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AlagappanMk24/Gymunity/modules/messaging/infrastructure/realtime"
	sharedauth "github.com/AlagappanMk24/Gymunity/modules/shared/auth"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func serve(t *testing.T, hub *realtime.Hub, userID types.UserID) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("anonymous") == "" {
			r = r.WithContext(sharedauth.WithPrincipal(r.Context(), sharedauth.Principal{UserID: userID, Role: types.RoleClient}))
		}
		hub.ServeWS(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	return conn
}

func TestPushReachesEveryConnectionOfUser(t *testing.T) {
	hub := realtime.NewHub(nil, nil)
	userID := types.NewUserID()
	srv := serve(t, hub, userID)

	first, second := dial(t, srv), dial(t, srv)
	defer first.Close()
	defer second.Close()
	require.Eventually(t, func() bool { return hub.Connections(userID) == 2 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, hub.Push(types.NewUserID(), "message", "ignored"))
	assert.Equal(t, 2, hub.Push(userID, "message", map[string]string{"content": "hi"}))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var env struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, "message", env.Type)
		assert.Equal(t, "hi", env.Payload["content"])
	}

	hub.Close()
	assert.Equal(t, 0, hub.Connections(userID))
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := realtime.NewHub(nil, nil)
	defer hub.Close()
	userID := types.NewUserID()
	srv := serve(t, hub, userID)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSRequiresPrincipal(t *testing.T) {
	hub := realtime.NewHub(nil, nil)
	defer hub.Close()
	srv := serve(t, hub, types.NewUserID())

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?anonymous=1", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSChecksOrigin(t *testing.T) {
	hub := realtime.NewHub(nil, []string{"https://app.gymunity.com"})
	defer hub.Close()
	userID := types.NewUserID()
	srv := serve(t, hub, userID)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "allowed", origin: "https://app.gymunity.com", ok: true},
		{name: "allowed case-insensitive", origin: "https://APP.gymunity.com", ok: true},
		{name: "same host", origin: srv.URL, ok: true},
		{name: "foreign", origin: "https://evil.example", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {tt.origin}})
			if !tt.ok {
				require.ErrorIs(t, err, websocket.ErrBadHandshake)
				defer resp.Body.Close()
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			resp.Body.Close()
			conn.Close()
		})
	}
	require.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSAllowsAnyOriginWithWildcard(t *testing.T) {
	hub := realtime.NewHub(nil, []string{"*"})
	defer hub.Close()
	srv := serve(t, hub, types.NewUserID())

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), http.Header{"Origin": {"https://elsewhere.example"}})
	require.NoError(t, err)
	resp.Body.Close()
	conn.Close()
}
