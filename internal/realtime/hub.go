// Package realtime pushes account notices to connected browsers over
// websockets. Each authenticated user may hold several sessions (tabs,
// devices); a notice for a user fans out to all of them.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/api/metrics"
)

const (
	sendQueueSize = 32
	writeTimeout  = 5 * time.Second
	pingInterval  = 30 * time.Second
)

// Notice is one realtime message pushed to a connected user.
type Notice struct {
	Kind   string    `json:"kind"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

type session struct {
	send chan Notice
	done chan struct{}
}

// Hub tracks websocket sessions per user and fans notices out to them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*session]struct{}
	log      zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[*session]struct{}),
		log:      log,
	}
}

// NotifyUser queues a notice for every session the user currently holds.
// Sessions that cannot keep up have the notice dropped rather than blocking
// the caller; notices are advisory, the source of truth stays in the API.
func (h *Hub) NotifyUser(userID uuid.UUID, kind string, data any) {
	notice := Notice{Kind: kind, Data: data, SentAt: time.Now().UTC()}

	h.mu.RLock()
	targets := make([]*session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.send <- notice:
		case <-s.done:
		default:
			h.log.Debug().
				Str("user_id", userID.String()).
				Str("kind", kind).
				Msg("notice dropped, session backlogged")
		}
	}
}

// Connections reports how many sessions a user currently holds.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Serve runs one websocket session until the peer disconnects or ctx is
// cancelled. The connection must already be accepted and the user
// authenticated by the caller.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID uuid.UUID) {
	s := &session{
		send: make(chan Notice, sendQueueSize),
		done: make(chan struct{}),
	}
	h.register(userID, s)
	defer h.unregister(userID, s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var closeOnce sync.Once
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			close(s.done)
			_ = conn.Close(code, reason)
			cancel()
		})
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case notice := <-s.send:
				if err := writeNotice(ctx, conn, notice); err != nil {
					h.log.Debug().Err(err).
						Str("user_id", userID.String()).
						Msg("notice write failed")
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				pingCtx, pingCancel := context.WithTimeout(ctx, writeTimeout)
				err := conn.Ping(pingCtx)
				pingCancel()
				if err != nil {
					shutdown(websocket.StatusGoingAway, "heartbeat failed")
					return
				}
			}
		}
	}()

	// Clients only listen on this socket; reads exist to notice the peer
	// going away.
	conn.SetReadLimit(1024)
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	shutdown(websocket.StatusNormalClosure, "bye")
	<-writerDone
}

func (h *Hub) register(userID uuid.UUID, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
	metrics.WebsocketConnections.Inc()
}

func (h *Hub) unregister(userID uuid.UUID, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.sessions[userID]; ok {
		if _, ok := set[s]; ok {
			delete(set, s)
			metrics.WebsocketConnections.Dec()
		}
		if len(set) == 0 {
			delete(h.sessions, userID)
		}
	}
}

func writeNotice(parent context.Context, conn *websocket.Conn, notice Notice) error {
	ctx, cancel := context.WithTimeout(parent, writeTimeout)
	defer cancel()

	b, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}
