package engineio

import (
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session is one websocket connection with its own write queue and heartbeat
type Session struct {
	id     string
	conn   *websocket.Conn
	config *Config
	logger *slog.Logger
	query  url.Values

	outgoing  chan *Packet
	closeOnce sync.Once
	closed    chan struct{}

	mu               sync.RWMutex
	pingTimer        *time.Timer
	pingTimeout      *time.Timer
	onMessage        func([]byte)
	onClose          func(string)
	onTransportClose func()
	lastActivity     time.Time
}

// NewSession creates a new session
func NewSession(id string, conn *websocket.Conn, server *Server, query url.Values) *Session {
	return &Session{
		id:           id,
		conn:         conn,
		config:       server.config,
		logger:       server.logger.With(slog.String("sid", id)),
		query:        query,
		outgoing:     make(chan *Packet, server.config.SendBuffer),
		closed:       make(chan struct{}),
		lastActivity: time.Now(),
	}
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// Query returns the query parameters of the upgrade request
func (s *Session) Query() url.Values {
	return s.query
}

// LastActivity returns when the peer last sent a frame
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Start starts the session loops
func (s *Session) Start() {
	go s.writeLoop()
	go s.readLoop()
	s.schedulePing()
}

// Send queues a message frame carrying data
func (s *Session) Send(data []byte) error {
	return s.sendPacket(&Packet{Type: PacketTypeMessage, Data: data})
}

func (s *Session) sendPacket(packet *Packet) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outgoing <- packet:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	default:
		return ErrSlowClient
	}
}

// Close closes the session. Only the first call has an effect.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		close(s.closed)

		s.mu.Lock()
		if s.pingTimer != nil {
			s.pingTimer.Stop()
		}
		if s.pingTimeout != nil {
			s.pingTimeout.Stop()
		}
		onClose := s.onClose
		onTransportClose := s.onTransportClose
		s.mu.Unlock()

		// WriteControl may run concurrently with writeLoop; WriteMessage may not.
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), time.Now().Add(time.Second))
		_ = s.conn.Close()

		s.logger.Debug("session closed", slog.String("reason", reason))

		if onTransportClose != nil {
			onTransportClose()
		}
		if onClose != nil {
			onClose(reason)
		}
	})
}

// OnMessage sets the message handler
func (s *Session) OnMessage(fn func([]byte)) {
	s.mu.Lock()
	s.onMessage = fn
	s.mu.Unlock()
}

// OnClose sets the close handler
func (s *Session) OnClose(fn func(string)) {
	s.mu.Lock()
	s.onClose = fn
	s.mu.Unlock()
}

func (s *Session) readLoop() {
	defer s.Close("read error")

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		s.updateActivity()

		packet, err := DecodePacket(data)
		if err != nil {
			s.logger.Debug("dropping bad frame", slog.Any("error", err))
			continue
		}

		s.handlePacket(packet)
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case packet := <-s.outgoing:
			if err := s.conn.WriteMessage(websocket.TextMessage, packet.Encode()); err != nil {
				s.Close("write error")
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *Session) handlePacket(packet *Packet) {
	switch packet.Type {
	case PacketTypePing:
		s.sendPacket(&Packet{Type: PacketTypePong})
	case PacketTypePong:
		s.handlePong()
	case PacketTypeMessage:
		s.handleMessage(packet.Data)
	case PacketTypeClose:
		s.Close("client closed")
	}
}

func (s *Session) handlePong() {
	s.mu.Lock()
	if s.pingTimeout != nil {
		s.pingTimeout.Stop()
	}
	s.mu.Unlock()
	s.schedulePing()
}

func (s *Session) handleMessage(data []byte) {
	s.mu.RLock()
	handler := s.onMessage
	s.mu.RUnlock()

	if handler != nil {
		handler(data)
	}
}

func (s *Session) schedulePing() {
	timer := time.AfterFunc(s.config.PingInterval, func() {
		if err := s.sendPacket(&Packet{Type: PacketTypePing}); err != nil {
			return
		}
		s.schedulePingTimeout()
	})

	s.mu.Lock()
	s.pingTimer = timer
	s.mu.Unlock()
}

func (s *Session) schedulePingTimeout() {
	timer := time.AfterFunc(s.config.PingTimeout, func() {
		s.Close("ping timeout")
	})

	s.mu.Lock()
	s.pingTimeout = timer
	s.mu.Unlock()
}

func (s *Session) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}
