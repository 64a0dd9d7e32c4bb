package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handsign/internal/app"
	"github.com/ayusman/handsign/internal/game"
	"github.com/ayusman/handsign/internal/store"
)

var _ app.Publisher = (*Hub)(nil)

func dialState(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/state"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode message %s: %v", data, err)
	}
	return msg
}

func TestHub_StateWebsocket(t *testing.T) {
	hub := NewHub(nil)
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	// A snapshot published before connecting is replayed on connect.
	hub.PublishState(game.Snapshot{Round: 1, Hand: true, Count: 2, Player: game.Scissors, Bot: game.Paper, Outcome: game.PlayerWins})

	conn := dialState(t, ts)

	msg := readMessage(t, conn)
	if msg.Type != MessageState || msg.State == nil {
		t.Fatalf("expected state message, got %+v", msg)
	}
	if msg.State.Player != game.Scissors || msg.State.Outcome != game.PlayerWins {
		t.Errorf("unexpected state %+v", msg.State)
	}

	hub.PublishRound(&store.Round{ID: "r1", Number: 1, Player: "scissors", Bot: "paper", Outcome: "player"})

	msg = readMessage(t, conn)
	if msg.Type != MessageRound || msg.Round == nil {
		t.Fatalf("expected round message, got %+v", msg)
	}
	if msg.Round.ID != "r1" {
		t.Errorf("round ID = %q, want r1", msg.Round.ID)
	}

	hub.PublishState(game.Snapshot{Round: 2, Bot: game.Rock, Outcome: game.Undetermined})

	msg = readMessage(t, conn)
	if msg.Type != MessageState || msg.State.Round != 2 {
		t.Errorf("expected round 2 state, got %+v", msg)
	}
}

func TestHub_ClientsUnsubscribe(t *testing.T) {
	hub := NewHub(nil)
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	hub.PublishState(game.Snapshot{Round: 1})
	conn := dialState(t, ts)
	readMessage(t, conn)

	if got := hub.Clients(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}

	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*2; i++ {
			hub.PublishState(game.Snapshot{Round: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing blocked on a full client buffer")
	}
	if len(ch) != clientBuffer {
		t.Errorf("expected a full buffer of %d, got %d", clientBuffer, len(ch))
	}
}

func TestStream_ServesLatestFrame(t *testing.T) {
	hub := NewHub(nil)
	hub.setFrame([]byte("first"))

	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("unexpected Content-Type %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	if got := readPart(t, r); got != "first" {
		t.Errorf("first part = %q, want first", got)
	}

	hub.setFrame([]byte("second"))
	if got := readPart(t, r); got != "second" {
		t.Errorf("second part = %q, want second", got)
	}
}

// readPart reads one multipart frame and returns its body.
func readPart(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	tp := textproto.NewReader(r)
	boundary, err := tp.ReadLine()
	if err != nil {
		t.Fatalf("read boundary: %v", err)
	}
	if boundary != "--frame" {
		t.Fatalf("boundary = %q, want --frame", boundary)
	}

	header, err := tp.ReadMIMEHeader()
	if err != nil {
		t.Fatalf("read part header: %v", err)
	}
	if header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("part Content-Type = %q", header.Get("Content-Type"))
	}

	n, err := strconv.Atoi(header.Get("Content-Length"))
	if err != nil {
		t.Fatalf("bad Content-Length: %v", err)
	}
	body := make([]byte, n+2)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("read part body: %v", err)
	}
	return string(body[:n])
}
