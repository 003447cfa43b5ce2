package inspector

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

	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/runtime"
)

func dialFeed(t *testing.T, s *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.handleFeed))
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func waitClients(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", s.Clients(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishReachesClient(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil)
	conn, done := dialFeed(t, s)
	defer done()
	waitClients(t, s, 1)

	snap := runtime.DebugSnapshot{
		EntityID: 1001,
		Symbol:   "PC_WALKER",
		Position: model.Vec3{X: 12, Z: 34},
		Mode:     "WALK",
	}
	s.Publish(snap)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got runtime.DebugSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, snap.EntityID, got.EntityID)
	assert.Equal(t, "PC_WALKER", got.Symbol)
	assert.Equal(t, "WALK", got.Mode)
}

func TestCommandDispatch(t *testing.T) {
	got := make(chan Command, 1)
	s := NewServer("127.0.0.1:0", func(cmd Command) { got <- cmd })
	conn, done := dialFeed(t, s)
	defer done()

	require.NoError(t, conn.WriteJSON(Command{Op: "teleport", EntityID: 1001, Waypoint: "WP_MARKET"}))

	select {
	case cmd := <-got:
		assert.Equal(t, "teleport", cmd.Op)
		assert.Equal(t, uint32(1001), cmd.EntityID)
		assert.Equal(t, "WP_MARKET", cmd.Waypoint)
	case <-time.After(2 * time.Second):
		t.Fatal("command not dispatched")
	}
}

func TestDisconnectDropsClient(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil)
	conn, done := dialFeed(t, s)
	defer done()
	waitClients(t, s, 1)

	conn.Close()
	waitClients(t, s, 0)
}
