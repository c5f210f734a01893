package roomcast

import (
	"slices"

	"github.com/samber/lo"
)

// RoomIndex maps namespace names to the rooms occupied by a client snapshot.
// Namespaces keep first-seen order and each room list keeps client order, so
// a room shared by several clients appears once per client unless the index
// was built with dedup.
type RoomIndex struct {
	namespaces []string
	rooms      map[string][]string
}

// BuildRoomIndex reads the namespace and current rooms of every client.
// It does not touch the clients beyond those two reads.
func BuildRoomIndex(clients []Client, dedup bool) RoomIndex {
	idx := RoomIndex{rooms: make(map[string][]string)}

	for _, client := range clients {
		ns := client.Namespace()
		name := ns.Name()

		rooms, seen := idx.rooms[name]
		if !seen {
			idx.namespaces = append(idx.namespaces, name)
		}
		idx.rooms[name] = append(rooms, ns.ClientRooms(client.ID())...)
	}

	if dedup {
		for name, rooms := range idx.rooms {
			idx.rooms[name] = lo.Uniq(rooms)
		}
	}

	return idx
}

// Each calls fn for every (namespace, room) entry in index order.
func (idx RoomIndex) Each(fn func(namespace, room string)) {
	for _, name := range idx.namespaces {
		for _, room := range idx.rooms[name] {
			fn(name, room)
		}
	}
}

// Namespaces returns the namespace names in first-seen order.
func (idx RoomIndex) Namespaces() []string {
	return slices.Clone(idx.namespaces)
}

// Rooms returns the room list recorded for a namespace.
func (idx RoomIndex) Rooms(namespace string) []string {
	return slices.Clone(idx.rooms[namespace])
}

// Len returns the number of (namespace, room) entries.
func (idx RoomIndex) Len() int {
	n := 0
	for _, rooms := range idx.rooms {
		n += len(rooms)
	}
	return n
}
