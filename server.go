package roomcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ramory-l/roomcast/engineio"
)

// Server owns namespaces and the bus used to reach other nodes
type Server struct {
	eio        *engineio.Server
	namespaces map[string]*Namespace
	nsMu       sync.RWMutex

	pubsub     PubSub
	nodeID     string
	dedupRooms bool
	eventRate  rate.Limit
	eventBurst int
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	sub    Subscription
}

// Config represents server configuration
type Config struct {
	PingInterval   time.Duration
	PingTimeout    time.Duration
	MaxPayload     int64
	SendBuffer     int
	AllowedOrigins []string

	// PubSub connects this node to the others. Nil runs a single node.
	PubSub PubSub
	// NodeID identifies this node on the bus. Defaults to a random UUID.
	NodeID string
	// DedupRooms publishes each (namespace, room) pair once per broadcast.
	DedupRooms bool
	// EventRate caps inbound messages and events per second on each socket.
	// Zero means unlimited. EventBurst defaults to EventRate.
	EventRate  int
	EventBurst int
	Logger     *slog.Logger
}

// NewServer creates a server and subscribes it to dispatches from other nodes
func NewServer(config *Config) (*Server, error) {
	if config == nil {
		config = &Config{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	nodeID := config.NodeID
	if nodeID == "" {
		nodeID = uuid.NewString()
	}

	eventBurst := config.EventBurst
	if eventBurst <= 0 {
		eventBurst = config.EventRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		eio: engineio.NewServer(&engineio.Config{
			PingInterval:   config.PingInterval,
			PingTimeout:    config.PingTimeout,
			MaxPayload:     config.MaxPayload,
			SendBuffer:     config.SendBuffer,
			AllowedOrigins: config.AllowedOrigins,
			Logger:         logger,
		}),
		namespaces: make(map[string]*Namespace),
		pubsub:     config.PubSub,
		nodeID:     nodeID,
		dedupRooms: config.DedupRooms,
		eventRate:  rate.Limit(config.EventRate),
		eventBurst: eventBurst,
		logger:     logger.With(slog.String("node", nodeID)),
		ctx:        ctx,
		cancel:     cancel,
	}

	// Create default namespace
	server.Of(DefaultNamespace)

	if server.pubsub != nil {
		sub, err := server.pubsub.Subscribe(ctx, TopicDispatch, server.handleDispatch)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe to %s: %w", TopicDispatch, err)
		}
		server.sub = sub
	}

	server.eio.OnConnect(server.handleConnection)

	return server, nil
}

// NodeID returns the id this node publishes under
func (s *Server) NodeID() string {
	return s.nodeID
}

// Of returns a namespace, creating it if it doesn't exist
func (s *Server) Of(name string) *Namespace {
	if name == "" {
		name = DefaultNamespace
	}

	s.nsMu.RLock()
	ns, exists := s.namespaces[name]
	s.nsMu.RUnlock()

	if exists {
		return ns
	}

	s.nsMu.Lock()
	defer s.nsMu.Unlock()

	// Double-check after acquiring write lock
	if ns, exists := s.namespaces[name]; exists {
		return ns
	}

	ns = newNamespace(name, s)
	s.namespaces[name] = ns

	return ns
}

// OnConnect sets the connection handler for the default namespace
func (s *Server) OnConnect(handler func(*Socket)) {
	s.Of(DefaultNamespace).OnConnect(handler)
}

// BroadcastOperations returns a group of every socket in every namespace
func (s *Server) BroadcastOperations() *BroadcastGroup {
	s.nsMu.RLock()
	namespaces := make([]*Namespace, 0, len(s.namespaces))
	for _, ns := range s.namespaces {
		namespaces = append(namespaces, ns)
	}
	s.nsMu.RUnlock()

	var sockets []*Socket
	for _, ns := range namespaces {
		sockets = append(sockets, ns.Sockets()...)
	}
	return s.newGroup(sockets)
}

// RoomOperations returns a group of the default namespace sockets in rooms
func (s *Server) RoomOperations(rooms ...string) *BroadcastGroup {
	return s.Of(DefaultNamespace).RoomOperations(rooms...)
}

// Emit broadcasts to all clients in the default namespace
func (s *Server) Emit(event string, args ...any) {
	s.Of(DefaultNamespace).Emit(event, args...)
}

// To returns a group for rooms of the default namespace
func (s *Server) To(rooms ...string) *BroadcastGroup {
	return s.RoomOperations(rooms...)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/socket.io/") {
		http.NotFound(w, r)
		return
	}

	s.eio.ServeHTTP(w, r)
}

// Close closes all connections and stops listening to other nodes. The bus
// itself belongs to the caller and stays open.
func (s *Server) Close() error {
	s.cancel()

	var errs []error
	if s.sub != nil {
		if err := s.sub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dispatch subscription: %w", err))
		}
	}

	s.eio.Close()

	s.nsMu.RLock()
	defer s.nsMu.RUnlock()

	for _, ns := range s.namespaces {
		if err := ns.close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// newLimiter returns nil when inbound events are not limited.
func (s *Server) newLimiter() *rate.Limiter {
	if s.eventRate <= 0 {
		return nil
	}
	return rate.NewLimiter(s.eventRate, s.eventBurst)
}

func (s *Server) newGroup(sockets []*Socket) *BroadcastGroup {
	clients := func(yield func(Client) bool) {
		for _, socket := range sockets {
			if !yield(socket) {
				return
			}
		}
	}

	return NewBroadcastGroup(s.ctx, clients, s.pubsub,
		WithRoomDedup(s.dedupRooms),
		WithNodeID(s.nodeID),
		WithLogger(s.logger),
	)
}

func (s *Server) handleDispatch(msg *DispatchMessage) {
	if msg == nil || msg.Packet == nil || msg.NodeID == s.nodeID {
		return
	}

	s.nsMu.RLock()
	ns, ok := s.namespaces[msg.Namespace]
	s.nsMu.RUnlock()
	if !ok {
		return
	}

	n := ns.deliverLocal(msg.Room, msg.Packet)
	s.logger.Debug("remote dispatch delivered",
		slog.String("from", msg.NodeID),
		slog.String("namespace", msg.Namespace),
		slog.String("room", msg.Room),
		slog.Int("sockets", n),
	)
}

func (s *Server) handleConnection(session *engineio.Session) {
	ns := s.Of(session.Query().Get("namespace"))
	ns.addSocket(session)
}
