package feed

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/view"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := New(zerolog.Nop())
	srv := httptest.NewServer(hub.Handler("/feed"))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	typ, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, typ)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitFor(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 5*time.Second, 5*time.Millisecond)
}

func TestPublishReachesSpectators(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, hub, 2)

	hub.Publish(view.GameStateSnapshot{HandID: "h1", Phase: "preflop", Pot: 3})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		assert.Equal(t, TypeSnapshot, msg.Type)
		require.NotNil(t, msg.Snapshot)
		assert.Equal(t, "h1", msg.Snapshot.HandID)
		assert.Equal(t, 3, msg.Snapshot.Pot)
	}

	hub.EndHand("showdown")
	msg := read(t, a)
	assert.Equal(t, TypeHandEnd, msg.Type)
	assert.Equal(t, "showdown", msg.Reason)
	assert.Nil(t, msg.Snapshot)
}

func TestLateJoinerGetsLatest(t *testing.T) {
	hub, srv := startHub(t)
	hub.Publish(view.GameStateSnapshot{HandID: "old"})
	hub.Publish(view.GameStateSnapshot{HandID: "new"})

	conn := dial(t, srv)
	msg := read(t, conn)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, "new", msg.Snapshot.HandID)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitFor(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	waitFor(t, hub, 0)
}

func TestCloseDisconnects(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitFor(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Count())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	hub.Publish(view.GameStateSnapshot{HandID: "ignored"})
	hub.Close()
}

func TestHealth(t *testing.T) {
	_, srv := startHub(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}
