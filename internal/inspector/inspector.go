// Package inspector serves the live debug feed: a websocket endpoint that
// broadcasts the snapshots emitted by the simulation's debug stage, plus a
// small command surface (select debugged entity, teleport) for external
// tooling.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skarn/worldsim/internal/runtime"
)

const writeTimeout = 5 * time.Second

// Command is an inbound control message from an inspector client.
type Command struct {
	// Op is "debug" (select debugged entity), "teleport", or "clock".
	Op       string `json:"op"`
	EntityID uint32 `json:"entityId"`
	Waypoint string `json:"waypoint,omitempty"`
	Hour     int    `json:"hour,omitempty"`
	Minute   int    `json:"minute,omitempty"`
}

// CommandFunc consumes inbound commands. Invoked from connection
// goroutines; implementations must hand the command to the tick thread.
type CommandFunc func(Command)

// Server broadcasts debug snapshots to all connected inspector clients.
type Server struct {
	addr      string
	onCommand CommandFunc
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer creates an inspector server. onCommand may be nil.
func NewServer(addr string, onCommand CommandFunc) *Server {
	return &Server{
		addr:      addr,
		onCommand: onCommand,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Local tooling endpoint, not exposed beyond the host.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Run serves the feed until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)

	srv := &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("inspector feed listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("inspector upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	count := len(s.conns)
	s.mu.Unlock()

	slog.Info("inspector client connected", "remote", r.RemoteAddr, "clients", count)

	go s.readLoop(conn)
}

// readLoop consumes inbound commands and detects disconnects.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.drop(conn)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if s.onCommand == nil {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Warn("bad inspector command", "err", err)
			continue
		}
		s.onCommand(cmd)
	}
}

// Publish broadcasts one snapshot to every client. Slow or dead clients
// are dropped rather than stalling the feed.
func (s *Server) Publish(snap runtime.DebugSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("snapshot marshal failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(s.conns, conn)
			_ = conn.Close()
		}
	}
}

// Clients returns the number of connected inspector clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = make(map[*websocket.Conn]struct{})
}
