package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, matchID string) *Client {
	return &Client{
		hub:     hub,
		matchID: matchID,
		send:    make(chan []byte, 256),
	}
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "match-1")

	hub.registerClient(client)

	require.Contains(t, hub.matches, "match-1")
	assert.True(t, hub.matches["match-1"][client])
	assert.Len(t, hub.matches["match-1"], 1)
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client1 := newTestClient(hub, "match-1")
	client2 := newTestClient(hub, "match-1")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.unregisterClient(client1)

	assert.Len(t, hub.matches["match-1"], 1)
	assert.True(t, hub.matches["match-1"][client2])

	_, open := <-client1.send
	assert.False(t, open, "send channel is closed on unregister")

	hub.unregisterClient(client2)
	assert.NotContains(t, hub.matches, "match-1", "empty matches are cleaned up")

	// unregistering twice is a no-op
	hub.unregisterClient(client2)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil)
	watcher := newTestClient(hub, "match-1")
	other := newTestClient(hub, "match-2")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{MatchID: "match-1", Event: EventMove, Data: map[string]int{"position": 4}})

	select {
	case data := <-watcher.send:
		var message struct {
			MatchID string         `json:"match_id"`
			Event   string         `json:"event"`
			Data    map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &message))
		assert.Equal(t, "match-1", message.MatchID)
		assert.Equal(t, EventMove, message.Event)
		assert.Equal(t, 4, message.Data["position"])
	default:
		t.Fatal("watcher received nothing")
	}

	assert.Empty(t, other.send, "other matches are not notified")
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, matchID: "match-1", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{MatchID: "match-1", Event: EventMove})

	assert.NotContains(t, hub.matches, "match-1")
}

func TestHubStop(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	assert.True(t, hub.Broadcast("match-1", EventMove, nil))
	cancel()
	<-stopped

	assert.False(t, hub.Broadcast("match-1", EventMove, nil))
	assert.Equal(t, 0, hub.ClientCount("match-1"))
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := runHub(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("match"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?match=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 1 },
		time.Second, 10*time.Millisecond)

	t.Run("receives broadcasts for its match", func(t *testing.T) {
		require.True(t, hub.Broadcast("ws-test", EventFinished, map[string]string{"result": "win"}))

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		assert.Equal(t, "ws-test", message.MatchID)
		assert.Equal(t, EventFinished, message.Event)
		assert.Equal(t, map[string]interface{}{"result": "win"}, message.Data)
	})

	t.Run("unregisters on close", func(t *testing.T) {
		conn.Close()
		assert.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 0 },
			time.Second, 10*time.Millisecond)
	})
}
