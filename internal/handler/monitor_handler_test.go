package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// dialTestSocket spins up a WebSocket server whose connection is handed to
// serve, and returns the client side of the pair.
func dialTestSocket(t *testing.T, serve func(*websocket.Conn)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serve(conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestForwardEventsDeliversPayloadsAndStopsOnChannelClose(t *testing.T) {
	events := make(chan *redis.Message, 1)
	events <- &redis.Message{Payload: `{"event":"attempt_started"}`}

	finished := make(chan struct{})
	client := dialTestSocket(t, func(conn *websocket.Conn) {
		forwardEvents(context.Background(), conn, events, zerolog.Nop())
		conn.Close()
		close(finished)
	})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(payload) != `{"event":"attempt_started"}` {
		t.Errorf("payload = %q", payload)
	}

	close(events)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forward loop kept running after the subscription channel closed")
	}
}

func TestForwardEventsStopsWhenPeerDisconnects(t *testing.T) {
	events := make(chan *redis.Message)

	finished := make(chan struct{})
	client := dialTestSocket(t, func(conn *websocket.Conn) {
		forwardEvents(context.Background(), conn, events, zerolog.Nop())
		close(finished)
	})

	client.Close()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forward loop did not notice the peer going away")
	}
}
