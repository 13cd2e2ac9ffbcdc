// Package server hosts shell roulette matches for remote players over
// WebSocket, filling empty seats with bots.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Server represents the WebSocket server
type Server struct {
	config      Config
	upgrader    websocket.Upgrader
	lobby       *Lobby
	logger      *log.Logger
	mu          sync.RWMutex
	connections map[*Connection]struct{}
}

// NewServer creates a new WebSocket server
func NewServer(config Config) (*Server, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		lobby:       NewLobby(config),
		logger:      config.Logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
	}, nil
}

// Lobby returns the server's lobby.
func (s *Server) Lobby() *Lobby {
	return s.lobby
}

// Handler returns the HTTP handler serving /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve runs the lobby and accepts connections on l until ctx is cancelled
// or the configured number of matches has been played.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", l.Addr())
		if err := httpServer.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := s.lobby.Run(ctx)
		s.logger.Info("Shutting down")
		s.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); err == nil {
			err = shutdownErr
		}
		return err
	})
	return g.Wait()
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Stop closes every open connection.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(ws, s.lobby, s.config.Clock, s.config.Logger)
	s.mu.Lock()
	s.connections[conn] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		s.mu.Unlock()
	}()

	s.logger.Debug("Client connected", "remote", r.RemoteAddr)
	conn.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	connections := len(s.connections)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"connections": connections,
		"waiting":     s.lobby.Waiting(),
		"players":     s.lobby.Players(),
	})
}
