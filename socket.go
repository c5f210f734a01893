package roomcast

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Event names under which plain messages and JSON objects from the peer are
// delivered to handlers registered with On.
const (
	EventMessage = "message"
	EventJSON    = "json"
)

// conn is the transport side of a socket; *engineio.Session satisfies it.
type conn interface {
	ID() string
	Send(data []byte) error
	Close(reason string)
	OnMessage(func([]byte))
	OnClose(func(string))
}

// Socket is a client connected to one namespace. It implements Client.
type Socket struct {
	id        string
	conn      conn
	namespace *Namespace
	logger    *slog.Logger
	limiter   *rate.Limiter // nil when unlimited

	handlers   map[string][]EventHandler
	handlersMu sync.RWMutex

	ackID atomic.Int64
	acks  sync.Map // int -> *pendingAck
	data  sync.Map

	onDisconnect []func(string)
	disconnectMu sync.RWMutex
}

// EventHandler handles incoming events. If the peer asked for an
// acknowledgment, the last argument is a func(...any) that sends it.
type EventHandler func(...any)

type pendingAck struct {
	callback *AckCallback
	timer    *time.Timer
}

var _ Client = (*Socket)(nil)

func newSocket(c conn, namespace *Namespace) *Socket {
	socket := &Socket{
		id:        c.ID(),
		conn:      c,
		namespace: namespace,
		logger:    namespace.logger.With(slog.String("socket", c.ID())),
		limiter:   namespace.server.newLimiter(),
		handlers:  make(map[string][]EventHandler),
	}

	c.OnMessage(socket.handleMessage)
	c.OnClose(socket.handleClose)

	return socket
}

// ID returns the socket ID
func (s *Socket) ID() string {
	return s.id
}

// Namespace returns the namespace the socket is connected to
func (s *Socket) Namespace() NamespaceView {
	return s.namespace
}

func (s *Socket) SendMessage(message string) {
	s.Send(NewMessagePacket(message))
}

func (s *Socket) SendMessageAck(message string, ack *AckCallback) {
	s.SendAck(NewMessagePacket(message), ack)
}

func (s *Socket) SendJSON(object any) {
	s.Send(NewJSONPacket(object))
}

func (s *Socket) SendJSONAck(object any, ack *AckCallback) {
	s.SendAck(NewJSONPacket(object), ack)
}

func (s *Socket) SendEvent(name string, args ...any) {
	s.Send(NewEventPacket(name, args...))
}

func (s *Socket) SendEventAck(name string, ack *AckCallback, args ...any) {
	s.SendAck(NewEventPacket(name, args...), ack)
}

// Send writes packet to the peer. Write failures are logged and dropped.
func (s *Socket) Send(packet *Packet) {
	s.write(packet.withNamespace(s.namespace.name))
}

// SendAck writes packet and calls ack when the peer acknowledges it.
// A nil ack degrades to Send.
func (s *Socket) SendAck(packet *Packet, ack *AckCallback) {
	if ack == nil {
		s.Send(packet)
		return
	}

	id := s.registerAck(ack)
	s.write(packet.withNamespace(s.namespace.name).withAck(id))
}

// On registers an event handler
func (s *Socket) On(event string, handler EventHandler) {
	s.handlersMu.Lock()
	s.handlers[event] = append(s.handlers[event], handler)
	s.handlersMu.Unlock()
}

// Off removes event handlers
func (s *Socket) Off(event string) {
	s.handlersMu.Lock()
	delete(s.handlers, event)
	s.handlersMu.Unlock()
}

// Join adds the socket to a room
func (s *Socket) Join(room string) {
	s.namespace.adapter.Add(s.id, room)
}

// Leave removes the socket from a room
func (s *Socket) Leave(room string) {
	s.namespace.adapter.Remove(s.id, room)
}

// Rooms returns all rooms the socket is in
func (s *Socket) Rooms() []string {
	return s.namespace.adapter.SocketRooms(s.id)
}

// Set stores arbitrary data on the socket
func (s *Socket) Set(key string, value any) {
	s.data.Store(key, value)
}

// Get retrieves data from the socket
func (s *Socket) Get(key string) (any, bool) {
	return s.data.Load(key)
}

// OnDisconnect registers a disconnect handler
func (s *Socket) OnDisconnect(handler func(string)) {
	s.disconnectMu.Lock()
	s.onDisconnect = append(s.onDisconnect, handler)
	s.disconnectMu.Unlock()
}

// Disconnect disconnects the socket
func (s *Socket) Disconnect() {
	s.conn.Close("server disconnect")
}

func (s *Socket) write(packet *Packet) {
	encoded, err := packet.Encode()
	if err != nil {
		s.logger.Warn("encode packet", slog.String("type", packet.Type.String()), slog.Any("error", err))
		return
	}

	if err := s.conn.Send([]byte(encoded)); err != nil {
		s.logger.Debug("send dropped", slog.String("type", packet.Type.String()), slog.Any("error", err))
	}
}

func (s *Socket) registerAck(ack *AckCallback) int {
	id := int(s.ackID.Add(1))
	pending := &pendingAck{callback: ack}

	if ack.Timeout > 0 {
		pending.timer = time.AfterFunc(ack.Timeout, func() {
			if _, ok := s.acks.LoadAndDelete(id); ok && ack.OnTimeout != nil {
				ack.OnTimeout()
			}
		})
	}

	s.acks.Store(id, pending)
	return id
}

func (s *Socket) handleMessage(data []byte) {
	packet, err := DecodePacket(string(data))
	if err != nil {
		s.logger.Debug("dropping bad packet", slog.Any("error", err))
		return
	}

	switch packet.Type {
	case PacketTypeMessage, PacketTypeJSON, PacketTypeEvent:
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Debug("inbound rate exceeded", slog.String("type", packet.Type.String()))
			return
		}
	}

	switch packet.Type {
	case PacketTypeMessage:
		s.dispatchEvent(EventMessage, []any{packet.Data}, packet)
	case PacketTypeJSON:
		s.dispatchEvent(EventJSON, []any{packet.Data}, packet)
	case PacketTypeEvent:
		s.dispatchEvent(packet.Name, packet.Args, packet)
	case PacketTypeAck:
		s.handleAck(packet)
	case PacketTypeDisconnect:
		s.Disconnect()
	}
}

func (s *Socket) dispatchEvent(event string, args []any, packet *Packet) {
	if event == "" {
		return
	}

	if packet.ID != nil && packet.AckData {
		ackID := *packet.ID
		args = append(args, func(ackData ...any) {
			s.write(&Packet{
				Type:      PacketTypeAck,
				Namespace: s.namespace.name,
				AckID:     &ackID,
				Args:      ackData,
			})
		})
	}

	s.handlersMu.RLock()
	handlers := s.handlers[event]
	s.handlersMu.RUnlock()

	for _, handler := range handlers {
		go handler(args...)
	}
}

func (s *Socket) handleAck(packet *Packet) {
	if packet.AckID == nil {
		return
	}

	val, ok := s.acks.LoadAndDelete(*packet.AckID)
	if !ok {
		return
	}

	pending := val.(*pendingAck)
	if pending.timer != nil {
		pending.timer.Stop()
	}
	if pending.callback.OnSuccess != nil {
		go pending.callback.OnSuccess(packet.Args...)
	}
}

func (s *Socket) handleClose(reason string) {
	s.namespace.removeSocket(s.id)

	s.disconnectMu.RLock()
	handlers := s.onDisconnect
	s.disconnectMu.RUnlock()

	for _, handler := range handlers {
		go handler(reason)
	}
}
