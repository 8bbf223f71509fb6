package wizard

import (
	"io"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/harborview/clinic-portal/pkg/logging"
)

// Snapshot is what subscribed views receive after every mutation.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Version   int64     `json:"version"`
	Selection Selection `json:"selection"`
}

// SnapshotStream pushes Selection snapshots to subscribed views over
// WebSocket, so every view sees the latest state before the next user event.
type SnapshotStream struct {
	logger *logging.Logger

	mu   sync.RWMutex
	subs map[string]map[*websocket.Conn]struct{} // sessionID -> connections
}

// NewSnapshotStream creates an empty snapshot stream.
func NewSnapshotStream(logger *logging.Logger) *SnapshotStream {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotStream{
		logger: logger,
		subs:   make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Publish fans the snapshot out to every subscriber of the session.
func (s *SnapshotStream) Publish(snap Snapshot) {
	if s == nil {
		return
	}
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.subs[snap.SessionID]))
	for conn := range s.subs[snap.SessionID] {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		if err := websocket.JSON.Send(conn, snap); err != nil {
			s.logger.Warn("wizard: snapshot send failed", "session_id", snap.SessionID, "error", err)
			s.unsubscribe(snap.SessionID, conn)
		}
	}
}

// HandleWebSocket upgrades to WebSocket and streams snapshots for the session
// named in the "session" query parameter until the client disconnects.
func (s *SnapshotStream) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		s.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (s *SnapshotStream) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		_ = websocket.JSON.Send(conn, map[string]string{"error": "missing session parameter"})
		return
	}

	s.mu.Lock()
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[*websocket.Conn]struct{})
	}
	s.subs[sessionID][conn] = struct{}{}
	s.mu.Unlock()
	defer s.unsubscribe(sessionID, conn)

	// Block until the client goes away; snapshots flow from Publish.
	for {
		var ignored map[string]any
		if err := websocket.JSON.Receive(conn, &ignored); err != nil {
			if err != io.EOF {
				s.logger.Debug("wizard: stream closed", "session_id", sessionID, "error", err)
			}
			return
		}
	}
}

func (s *SnapshotStream) unsubscribe(sessionID string, conn *websocket.Conn) {
	s.mu.Lock()
	if conns, ok := s.subs[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(s.subs, sessionID)
		}
	}
	s.mu.Unlock()
	_ = conn.Close()
}
