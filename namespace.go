package roomcast

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Namespace groups sockets and owns their room membership
type Namespace struct {
	name      string
	server    *Server
	adapter   Adapter
	sockets   map[string]*Socket
	mu        sync.RWMutex
	onConnect func(*Socket)
	logger    *slog.Logger
}

var _ NamespaceView = (*Namespace)(nil)

func newNamespace(name string, server *Server) *Namespace {
	return &Namespace{
		name:    name,
		server:  server,
		adapter: NewMemoryAdapter(),
		sockets: make(map[string]*Socket),
		logger:  server.logger.With(slog.String("namespace", name)),
	}
}

// Name returns the namespace name
func (ns *Namespace) Name() string {
	return ns.name
}

// ClientRooms returns the rooms a client of this namespace currently occupies
func (ns *Namespace) ClientRooms(clientID string) []string {
	return ns.adapter.SocketRooms(clientID)
}

// OnConnect sets the connection handler for this namespace
func (ns *Namespace) OnConnect(handler func(*Socket)) {
	ns.mu.Lock()
	ns.onConnect = handler
	ns.mu.Unlock()
}

// Sockets returns all connected sockets ordered by ID
func (ns *Namespace) Sockets() []*Socket {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(ns.sockets))
	sockets := make([]*Socket, 0, len(ids))
	for _, id := range ids {
		sockets = append(sockets, ns.sockets[id])
	}
	return sockets
}

// GetSocket retrieves a socket by ID
func (ns *Namespace) GetSocket(id string) (*Socket, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	socket, ok := ns.sockets[id]
	return socket, ok
}

// SetAdapter replaces the room membership store. Call it before sockets connect.
func (ns *Namespace) SetAdapter(adapter Adapter) {
	ns.adapter = adapter
}

// BroadcastOperations returns a group of every socket in the namespace
func (ns *Namespace) BroadcastOperations() *BroadcastGroup {
	return ns.server.newGroup(ns.Sockets())
}

// RoomOperations returns a group of the sockets in any of rooms. A socket
// that is in several of the rooms is included once.
func (ns *Namespace) RoomOperations(rooms ...string) *BroadcastGroup {
	return ns.server.newGroup(ns.roomSockets(rooms...))
}

// To is shorthand for RoomOperations
func (ns *Namespace) To(rooms ...string) *BroadcastGroup {
	return ns.RoomOperations(rooms...)
}

// Emit broadcasts an event to all sockets in the namespace
func (ns *Namespace) Emit(event string, args ...any) {
	ns.BroadcastOperations().SendEvent(event, args...)
}

func (ns *Namespace) roomSockets(rooms ...string) []*Socket {
	seen := make(map[string]struct{})
	var sockets []*Socket

	for _, room := range rooms {
		for _, id := range ns.adapter.Sockets(room) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if socket, ok := ns.GetSocket(id); ok {
				sockets = append(sockets, socket)
			}
		}
	}
	return sockets
}

// deliverLocal sends a packet that another node dispatched to this node's
// members of room. It never publishes.
func (ns *Namespace) deliverLocal(room string, packet *Packet) int {
	sockets := ns.roomSockets(room)
	for _, socket := range sockets {
		socket.Send(packet)
	}
	return len(sockets)
}

func (ns *Namespace) addSocket(c conn) *Socket {
	socket := newSocket(c, ns)

	ns.mu.Lock()
	ns.sockets[socket.ID()] = socket
	onConnect := ns.onConnect
	ns.mu.Unlock()

	// Auto-join own room
	socket.Join(socket.ID())

	socket.write(&Packet{Type: PacketTypeConnect, Namespace: ns.name})
	ns.logger.Debug("socket connected", slog.String("socket", socket.ID()))

	if onConnect != nil {
		onConnect(socket)
	}
	return socket
}

func (ns *Namespace) removeSocket(id string) {
	ns.mu.Lock()
	delete(ns.sockets, id)
	ns.mu.Unlock()

	ns.adapter.RemoveAll(id)
	ns.logger.Debug("socket removed", slog.String("socket", id))
}

func (ns *Namespace) close() error {
	return ns.adapter.Close()
}
