package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/game/session"
	"github.com/zeusync/timepilot/internal/render"
)

const shutdownTimeout = 5 * time.Second

// Snapshotter is the game state a server exposes.
type Snapshotter interface {
	Snapshot() session.Snapshot
}

// Server is the spectator HTTP server.
type Server struct {
	cfg      config.StreamConfig
	hub      *Hub
	state    Snapshotter
	logger   log.Log
	upgrader websocket.Upgrader

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	served   chan struct{}

	running atomic.Bool
	closed  atomic.Bool
}

func New(cfg config.StreamConfig, state Snapshotter, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.Component("stream"))
	return &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.MaxClients, cfg.WriteTimeout, logger),
		state:  state,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler routes /ws, /state and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.String("addr", s.cfg.ListenAddr), log.Error(err))
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	served := make(chan struct{})

	s.mu.Lock()
	s.http, s.listener, s.served = srv, ln, served
	s.mu.Unlock()

	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Stream server failed", log.Error(err))
		}
	}()

	s.logger.Info("Stream server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down gracefully and disconnects spectators.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.mu.Lock()
	srv, served := s.http, s.served
	s.http, s.listener = nil, nil
	s.mu.Unlock()

	// hijacked websocket connections are not closed by Shutdown
	s.hub.Close()
	err := srv.Shutdown(ctx)
	<-served

	s.logger.Info("Stream server stopped", log.Error(err))
	return err
}

// Close stops the server if needed; it cannot be started again.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.running.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil && !errors.Is(err, ErrServerNotRunning) {
		return err
	}
	return nil
}

// Publish broadcasts one rendered pass along with the entity records of the
// current snapshot. commands is not retained after Publish returns.
func (s *Server) Publish(tick uint64, commands []render.Command) {
	frame := Frame{Tick: tick, Commands: commands}
	if s.state != nil {
		frame.Entities = s.state.Snapshot().Entities()
	}
	if err := s.hub.Broadcast(frame); err != nil {
		s.logger.Error("Broadcast failed", log.Tick(tick), log.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub.Full() {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		return
	}

	id, err := s.hub.Add(conn)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		_ = conn.Close()
		return
	}

	// spectators never send anything; reading detects the close
	go func() {
		defer s.hub.Remove(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.state == nil {
		http.Error(w, "no game attached", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.state.Snapshot()); err != nil {
		s.logger.Warn("Failed to write state", log.Error(err))
	}
}
