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

	"github.com/wricardo/wordsearch-translate/game/puzzle"
	"github.com/wricardo/wordsearch-translate/game/service"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in session %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func testView(sessionID string) *service.PuzzleView {
	return &service.PuzzleView{
		SessionID:      sessionID,
		SourceWord:     "animals",
		Dimensions:     puzzle.GridDimensions{Columns: 3, Rows: 3},
		UnmatchedCount: 1,
		MatchedCells:   []puzzle.Point{{Column: 0, Row: 0}, {Column: 0, Row: 1}, {Column: 0, Row: 2}},
		Path:           []puzzle.Point{},
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}

	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}

	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}

	if !hub.upgrader.CheckOrigin(httptest.NewRequest(http.MethodGet, "/ws", nil)) {
		t.Error("Default origin check should accept requests")
	}
}

func TestWithCheckOrigin(t *testing.T) {
	hub := NewHub(WithCheckOrigin(func(r *http.Request) bool {
		return r.Header.Get("Origin") == "https://example.com"
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	if hub.upgrader.CheckOrigin(req) {
		t.Error("Origin check should reject foreign origin")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}

	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// A second unregister must not close the channel twice
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}

	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := startHub(t)
	sessionID := "broadcast-test"

	client := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	other := &Client{hub: hub, sessionID: "other", send: make(chan []byte, 256)}
	hub.register <- client
	hub.register <- other

	events := []service.GameEvent{{Type: service.EventWordFound, Word: "CAT", Message: "Found CAT"}}
	hub.BroadcastToSession(sessionID, testView(sessionID), events)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}

		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}

		if message.Event != EventPuzzleUpdate {
			t.Errorf("Expected event %q, got %s", EventPuzzleUpdate, message.Event)
		}

		if message.Puzzle == nil || len(message.Puzzle.MatchedCells) != 3 {
			t.Error("Puzzle view not correctly transmitted")
		}

		if len(message.Events) != 1 || message.Events[0].Word != "CAT" {
			t.Errorf("Events not correctly transmitted: %+v", message.Events)
		}

	case <-time.After(time.Second):
		t.Error("No message received within timeout")
	}

	select {
	case data := <-other.send:
		t.Errorf("Client in another session received %s", data)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := startHub(t)

	client := &Client{hub: hub, sessionID: "event-test", send: make(chan []byte, 256)}
	hub.register <- client

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(time.Second):
		t.Error("No broadcast message received within timeout")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)

	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.register <- client

	hub.BroadcastEvent("slow", "tick", nil)
	waitForClients(t, hub, "slow", 0)
}

func TestHubRunStops(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{hub: hub, sessionID: "stop", send: make(chan []byte, 1)}
	hub.register <- client

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed on shutdown")
	}

	// Broadcasting after shutdown must not block once the buffer is full
	finished := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+1; i++ {
			hub.BroadcastEvent("stop", "late", i)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("BroadcastEvent blocked after shutdown")
	}
}

func TestWebSocketUpgradeAndReceive(t *testing.T) {
	hub := startHub(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, "ws-test", 1)

	hub.BroadcastToSession("ws-test", testView("ws-test"), nil)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, messageData, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(messageData, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if message.Puzzle == nil || message.Puzzle.SourceWord != "animals" {
		t.Errorf("Puzzle view not correctly received: %+v", message.Puzzle)
	}

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}
