package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"geoplay-service/internal/app"
	"geoplay-service/internal/geo"
	"geoplay-service/internal/infra/memory"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := app.DefaultSessionConfig()
	cfg.CorrectFeedbackDelay = 10 * time.Millisecond
	cfg.WrongFeedbackDelay = 10 * time.Millisecond

	pools := memory.NewPoolRepository(geo.NewCatalog(), time.Minute)
	board := app.NewLeaderboard(memory.NewKVStore(), zerolog.Nop())
	service := app.NewGameService(memory.NewSessionStore(), pools, board, cfg, zerolog.Nop())

	server := httptest.NewServer(NewRouter(service, zerolog.Nop()))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketGameFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "?sessionId=p1")

	var joined struct {
		SessionID string `json:"sessionId"`
		State     struct {
			Lives int `json:"lives"`
		} `json:"state"`
	}
	readPayload(t, readNext(conn, t, "joined"), &joined)
	if joined.SessionID != "p1" || joined.State.Lives != 3 {
		t.Fatalf("unexpected joined payload: %+v", joined)
	}

	send(t, conn, "setMode", map[string]any{"mode": "city"})
	send(t, conn, "start", nil)
	send(t, conn, "ready", map[string]any{"targets": []map[string]any{{"name": "Paris", "lat": 48.85, "lng": 2.35}}})
	send(t, conn, "click", map[string]any{"name": "Paris"})

	var sound struct {
		Kind string `json:"kind"`
	}
	readPayload(t, readUntil(conn, t, "sound"), &sound)
	if sound.Kind != "correct" {
		t.Fatalf("expected correct sound, got %q", sound.Kind)
	}

	var result struct {
		Score int    `json:"score"`
		Grade string `json:"grade"`
		Mode  string `json:"mode"`
	}
	readPayload(t, readUntil(conn, t, "gameOver"), &result)
	if result.Score != 15 || result.Grade != "A+" || result.Mode != "city" {
		t.Fatalf("unexpected result: %+v", result)
	}

	var entries []map[string]any
	readPayload(t, readUntil(conn, t, "leaderboard"), &entries)
	if len(entries) != 1 {
		t.Fatalf("expected one leaderboard entry, got %d", len(entries))
	}
}

func TestWebSocketLoadsBuiltInPool(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "")
	readNext(conn, t, "joined")

	send(t, conn, "start", nil)
	send(t, conn, "ready", map[string]any{"mode": "state", "region": "india"})

	for {
		var state struct {
			CurrentTarget *struct {
				Name string `json:"name"`
			} `json:"currentTarget"`
		}
		readPayload(t, readUntil(conn, t, "state"), &state)
		if state.CurrentTarget != nil {
			if state.CurrentTarget.Name == "" {
				t.Fatalf("expected a named target")
			}
			return
		}
	}
}

func TestWebSocketErrors(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "?sessionId=p2")
	readNext(conn, t, "joined")

	send(t, conn, "dance", nil)
	var e struct {
		Message string `json:"message"`
	}
	readPayload(t, readUntil(conn, t, "error"), &e)
	if e.Message != errUnsupported.Error() {
		t.Fatalf("unexpected error message %q", e.Message)
	}

	send(t, conn, "setDifficulty", map[string]any{"difficulty": "nightmare"})
	readUntil(conn, t, "error")

	send(t, conn, "hint", nil)
	readUntil(conn, t, "error")
}

func TestEnqueueStopsWhenWriterExits(t *testing.T) {
	send := make(chan outboundMessage[any], 1)
	writerDone := make(chan struct{})

	if !enqueue(send, writerDone, outboundMessage[any]{Type: "state"}) {
		t.Fatalf("expected first message to be buffered")
	}
	close(writerDone)

	done := make(chan bool, 1)
	go func() { done <- enqueue(send, writerDone, outboundMessage[any]{Type: "state"}) }()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected enqueue to fail on a full buffer after the writer stopped")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked after the writer stopped")
	}
}

func TestRegionsEndpoint(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/regions")
	if err != nil {
		t.Fatalf("get regions: %v", err)
	}
	defer resp.Body.Close()

	var regions []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&regions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(regions) != 2 || regions[0].ID != "usa" {
		t.Fatalf("unexpected regions: %+v", regions)
	}
}

func TestLeaderboardEndpointEmpty(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/leaderboard")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) json.RawMessage {
	t.Helper()
	var msg message
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Payload
}

// readUntil skips messages until one of the given type arrives.
func readUntil(conn *websocket.Conn, t *testing.T, expect string) json.RawMessage {
	t.Helper()
	for i := 0; i < 50; i++ {
		var msg message
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", expect, err)
		}
		if msg.Type == expect {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message within 50 reads", expect)
	return nil
}

func readPayload(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode payload %s: %v", raw, err)
	}
}
