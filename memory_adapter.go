package roomcast

import (
	"maps"
	"slices"
	"sync"
)

// MemoryAdapter is an in-memory implementation of the Adapter interface
type MemoryAdapter struct {
	rooms       map[string]map[string]struct{} // room -> socketIDs
	socketRooms map[string]map[string]struct{} // socketID -> rooms
	mu          sync.RWMutex
}

// NewMemoryAdapter creates a new in-memory adapter
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		rooms:       make(map[string]map[string]struct{}),
		socketRooms: make(map[string]map[string]struct{}),
	}
}

// Add adds a socket to a room
func (a *MemoryAdapter) Add(socketID, room string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	link(a.rooms, room, socketID)
	link(a.socketRooms, socketID, room)
}

// Remove removes a socket from a room
func (a *MemoryAdapter) Remove(socketID, room string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	unlink(a.rooms, room, socketID)
	unlink(a.socketRooms, socketID, room)
}

// RemoveAll removes a socket from all rooms
func (a *MemoryAdapter) RemoveAll(socketID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for room := range a.socketRooms[socketID] {
		unlink(a.rooms, room, socketID)
	}
	delete(a.socketRooms, socketID)
}

// Sockets returns all socket IDs in a room
func (a *MemoryAdapter) Sockets(room string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Sorted(maps.Keys(a.rooms[room]))
}

// SocketRooms returns all rooms a socket is in
func (a *MemoryAdapter) SocketRooms(socketID string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Sorted(maps.Keys(a.socketRooms[socketID]))
}

// Close cleans up the adapter
func (a *MemoryAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rooms = make(map[string]map[string]struct{})
	a.socketRooms = make(map[string]map[string]struct{})

	return nil
}

func link(index map[string]map[string]struct{}, key, member string) {
	if index[key] == nil {
		index[key] = make(map[string]struct{})
	}
	index[key][member] = struct{}{}
}

func unlink(index map[string]map[string]struct{}, key, member string) {
	if index[key] == nil {
		return
	}
	delete(index[key], member)
	if len(index[key]) == 0 {
		delete(index, key)
	}
}
