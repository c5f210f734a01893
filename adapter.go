package roomcast

// Adapter keeps the room membership of one namespace
type Adapter interface {
	// Add adds a socket to a room
	Add(socketID, room string)

	// Remove removes a socket from a room
	Remove(socketID, room string)

	// RemoveAll removes a socket from all rooms
	RemoveAll(socketID string)

	// Sockets returns all socket IDs in a room, sorted
	Sockets(room string) []string

	// SocketRooms returns all rooms a socket is in, sorted
	SocketRooms(socketID string) []string

	// Close cleans up the adapter
	Close() error
}
