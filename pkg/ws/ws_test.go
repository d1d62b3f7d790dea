package ws_test

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

	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/ws"
)

func TestEmitReachesOnlyRoomMembers(t *testing.T) {
	hub := ws.NewHub()
	owner := hub.Subscribe(ws.UserRoom(1))
	other := hub.Subscribe(ws.UserRoom(2))
	staff := hub.Subscribe(ws.UserRoom(3), ws.StaffRoom)
	defer hub.Close()

	n, err := hub.Emit(ws.UserRoom(1), "order:created", map[string]any{"id": 10})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = hub.Emit(ws.StaffRoom, "order:created", map[string]any{"id": 10})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msg := <-owner.C()
	assert.Equal(t, "order:created", msg.Event)
	assert.JSONEq(t, `{"id":10}`, string(msg.Data))

	assert.Len(t, other.C(), 0)
	assert.Len(t, staff.C(), 1)
}

func TestCloseLeavesRooms(t *testing.T) {
	hub := ws.NewHub()
	s := hub.Subscribe(ws.UserRoom(5), ws.StaffRoom)
	assert.Equal(t, 1, hub.RoomSize(ws.StaffRoom))

	s.Close()
	s.Close()

	assert.Equal(t, 0, hub.RoomSize(ws.StaffRoom))
	assert.Equal(t, 0, hub.Count())
	_, open := <-s.C()
	assert.False(t, open)

	n, err := hub.Emit(ws.StaffRoom, "order:created", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRooms(t *testing.T) {
	assert.Equal(t, []string{"user:4"}, ws.Rooms(&auth.Claims{ID: 4, Role: auth.RoleParishioner}))
	assert.Equal(t, []string{"user:1", "staff"}, ws.Rooms(&auth.Claims{ID: 1, Role: auth.RoleAdmin}))
	assert.Equal(t, []string{"user:2", "staff"}, ws.Rooms(&auth.Claims{ID: 2, Role: auth.RolePersonal}))
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *websocket.Conn) ws.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f ws.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHandlerGreetsAndRelays(t *testing.T) {
	signer := auth.NewSigner("ws-secret", time.Hour)
	hub := ws.NewHub()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler(signer, []string{"*"}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	token, err := signer.Sign(9, "staff@parish.org", auth.RolePersonal)
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	ready := readFrame(t, conn)
	assert.Equal(t, ws.ReadyEvent, ready.Event)
	assert.JSONEq(t, `{"userId":9,"role":"personal"}`, string(ready.Data))

	require.Eventually(t, func() bool { return hub.RoomSize(ws.StaffRoom) == 1 }, time.Second, 10*time.Millisecond)

	_, err = hub.Emit(ws.StaffRoom, "order:statusUpdated", map[string]any{"id": 3, "userId": 4, "status": "ready"})
	require.NoError(t, err)

	f := readFrame(t, conn)
	assert.Equal(t, "order:statusUpdated", f.Event)
	assert.JSONEq(t, `{"id":3,"userId":4,"status":"ready"}`, string(f.Data))
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	hub := ws.NewHub()
	srv := httptest.NewServer(hub.Handler(auth.NewSigner("ws-secret", time.Hour), []string{"*"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, hub.Count())
}
