package engineio

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSlowClient    = errors.New("slow client")
)

// Config holds transport configuration
type Config struct {
	PingInterval time.Duration
	PingTimeout  time.Duration
	MaxPayload   int64 // bytes
	SendBuffer   int   // queued frames per session
	// AllowedOrigins restricts the Origin header of upgrade requests.
	// Empty allows any origin.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns default transport configuration
func DefaultConfig() *Config {
	return &Config{
		PingInterval: 25 * time.Second,
		PingTimeout:  20 * time.Second,
		MaxPayload:   1e6,
		SendBuffer:   256,
	}
}

func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	out := *c
	if out.PingInterval <= 0 {
		out.PingInterval = def.PingInterval
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = def.PingTimeout
	}
	if out.MaxPayload <= 0 {
		out.MaxPayload = def.MaxPayload
	}
	if out.SendBuffer <= 0 {
		out.SendBuffer = def.SendBuffer
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return &out
}

// Server upgrades HTTP requests to websocket sessions
type Server struct {
	config    *Config
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	sessions  sync.Map
	onConnect func(*Session)
}

// NewServer creates a new transport server
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.withDefaults()

	s := &Server{
		config: config,
		logger: config.Logger,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// ServeHTTP handles HTTP requests and upgrades to WebSocket
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("transport") != "websocket" {
		http.Error(w, "Only WebSocket transport is supported", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}
	conn.SetReadLimit(s.config.MaxPayload)

	sid := uuid.NewString()
	session := NewSession(sid, conn, s, r.URL.Query())

	handshake, err := EncodeHandshake(sid, s.config)
	if err != nil {
		conn.Close()
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, handshake); err != nil {
		s.logger.Debug("handshake write failed", slog.String("sid", sid), slog.Any("error", err))
		conn.Close()
		return
	}

	s.sessions.Store(sid, session)
	session.onTransportClose = func() { s.sessions.Delete(sid) }

	if s.onConnect != nil {
		s.onConnect(session)
	}

	session.Start()
}

// OnConnect sets the connection handler. It runs before the session starts
// reading, so handlers registered on the session see every message.
func (s *Server) OnConnect(fn func(*Session)) {
	s.onConnect = fn
}

// GetSession retrieves a session by ID
func (s *Server) GetSession(sid string) (*Session, bool) {
	val, ok := s.sessions.Load(sid)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Close closes all sessions
func (s *Server) Close() {
	s.sessions.Range(func(key, value any) bool {
		value.(*Session).Close("server shutdown")
		return true
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.config.AllowedOrigins, origin)
}
