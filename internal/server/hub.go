package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/game"
	"github.com/ayusman/handsign/internal/store"
)

// Message types sent over the state websocket.
const (
	MessageState = "state"
	MessageRound = "round"
)

const (
	clientBuffer = 16
	writeTimeout = 3 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is one update pushed to websocket clients.
type Message struct {
	Type  string         `json:"type"`
	State *game.Snapshot `json:"state,omitempty"`
	Round *store.Round   `json:"round,omitempty"`
}

// Hub fans game updates out to websocket clients and keeps the latest
// annotated frame for the MJPEG stream. The frame loop publishes into it.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[chan []byte]struct{}
	last    []byte

	frameMu  sync.Mutex
	frame    []byte
	frameSeq uint64
	frameCh  chan struct{}
	watchers atomic.Int32
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[chan []byte]struct{}),
		frameCh: make(chan struct{}),
	}
}

// PublishState sends a session snapshot to every client. New clients
// receive the latest snapshot on connect.
func (h *Hub) PublishState(snap game.Snapshot) {
	h.broadcast(Message{Type: MessageState, State: &snap}, true)
}

// PublishRound sends a locked-in round to every client.
func (h *Hub) PublishRound(round *store.Round) {
	h.broadcast(Message{Type: MessageRound, Round: round}, false)
}

// PublishFrame encodes the frame as JPEG for stream viewers. Nothing is
// encoded while no one is watching.
func (h *Hub) PublishFrame(frame *gocv.Mat) {
	if h.watchers.Load() == 0 || frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		h.logger.Debug("frame encode failed", zap.Error(err))
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.setFrame(data)
}

func (h *Hub) setFrame(data []byte) {
	h.frameMu.Lock()
	h.frame = data
	h.frameSeq++
	close(h.frameCh)
	h.frameCh = make(chan struct{})
	h.frameMu.Unlock()
}

// nextFrame returns the latest frame newer than seq, or a channel that is
// closed when one arrives.
func (h *Hub) nextFrame(seq uint64) ([]byte, uint64, <-chan struct{}) {
	h.frameMu.Lock()
	defer h.frameMu.Unlock()
	if h.frameSeq > seq && h.frame != nil {
		return h.frame, h.frameSeq, nil
	}
	return nil, seq, h.frameCh
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg Message, keep bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if keep {
		h.last = data
	}
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			h.logger.Debug("slow websocket client, dropping message", zap.String("type", msg.Type))
		}
	}
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil {
		ch <- h.last
	}
	h.clients[ch] = struct{}{}
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

// ServeHTTP upgrades the request to a websocket and streams messages until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no update published after
	// the client connects is missed.
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	// The read loop only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case data := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
