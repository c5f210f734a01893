package roomcast

import (
	"context"
	"iter"
	"log/slog"
	"slices"
)

// BroadcastGroup is a snapshot of clients captured for one broadcast.
//
// The client list and the room index are fixed at construction; later room
// changes on the clients are not seen. Nothing is mutated after
// construction, so concurrent sends on one group are safe.
type BroadcastGroup struct {
	ctx       context.Context
	clients   []Client
	index     RoomIndex
	publisher Publisher
	nodeID    string
	logger    *slog.Logger
}

type broadcastOptions struct {
	dedupRooms bool
	nodeID     string
	logger     *slog.Logger
}

// BroadcastOption configures a BroadcastGroup.
type BroadcastOption func(*broadcastOptions)

// WithRoomDedup collapses repeated rooms of a namespace so each
// (namespace, room) pair is published once per send.
func WithRoomDedup(dedup bool) BroadcastOption {
	return func(o *broadcastOptions) { o.dedupRooms = dedup }
}

// WithNodeID stamps dispatch messages with the id of the publishing node.
func WithNodeID(id string) BroadcastOption {
	return func(o *broadcastOptions) { o.nodeID = id }
}

func WithLogger(logger *slog.Logger) BroadcastOption {
	return func(o *broadcastOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewBroadcastGroup captures clients and indexes their rooms. The sequence is
// read exactly once. A nil publisher disables distributed dispatch.
func NewBroadcastGroup(ctx context.Context, clients iter.Seq[Client], publisher Publisher, opts ...BroadcastOption) *BroadcastGroup {
	o := broadcastOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var snapshot []Client
	if clients != nil {
		snapshot = slices.Collect(clients)
	}

	return &BroadcastGroup{
		ctx:       ctx,
		clients:   snapshot,
		index:     BuildRoomIndex(snapshot, o.dedupRooms),
		publisher: publisher,
		nodeID:    o.nodeID,
		logger:    o.logger,
	}
}

// Clients returns a copy of the snapshot.
func (b *BroadcastGroup) Clients() []Client {
	return slices.Clone(b.clients)
}

// Rooms returns the room index built at construction.
func (b *BroadcastGroup) Rooms() RoomIndex {
	return b.index
}

// SendMessage sends a text message to every client and dispatches it.
func (b *BroadcastGroup) SendMessage(message string) {
	for _, client := range b.clients {
		client.SendMessage(message)
	}
	b.dispatch(NewMessagePacket(message))
}

// SendMessageAck sends a text message with a per-client acknowledgment.
func (b *BroadcastGroup) SendMessageAck(message string, ack BroadcastAckCallback) {
	for _, client := range b.clients {
		client.SendMessageAck(message, ack.CreateClientCallback(client))
	}
	ack.LoopFinished()
}

// SendJSON sends a JSON object to every client and dispatches it.
func (b *BroadcastGroup) SendJSON(object any) {
	for _, client := range b.clients {
		client.SendJSON(object)
	}
	b.dispatch(NewJSONPacket(object))
}

// SendJSONAck sends a JSON object with a per-client acknowledgment.
func (b *BroadcastGroup) SendJSONAck(object any, ack BroadcastAckCallback) {
	for _, client := range b.clients {
		client.SendJSONAck(object, ack.CreateClientCallback(client))
	}
	ack.LoopFinished()
}

// Send delivers packet to every client in snapshot order, then publishes
// it once per (namespace, room) entry of the index.
func (b *BroadcastGroup) Send(packet *Packet) {
	for _, client := range b.clients {
		client.Send(packet)
	}
	b.dispatch(packet)
}

// SendAck delivers packet with a per-client acknowledgment. Acknowledgments
// are local to a connection, so nothing is dispatched to other nodes.
func (b *BroadcastGroup) SendAck(packet *Packet, ack BroadcastAckCallback) {
	for _, client := range b.clients {
		client.SendAck(packet, ack.CreateClientCallback(client))
	}
	ack.LoopFinished()
}

// SendEvent sends a named event to every client and dispatches it.
func (b *BroadcastGroup) SendEvent(name string, args ...any) {
	for _, client := range b.clients {
		client.SendEvent(name, args...)
	}
	b.dispatch(NewEventPacket(name, args...))
}

// SendEventAck sends a named event with a per-client acknowledgment.
func (b *BroadcastGroup) SendEventAck(name string, ack BroadcastAckCallback, args ...any) {
	for _, client := range b.clients {
		client.SendEventAck(name, ack.CreateClientCallback(client), args...)
	}
	ack.LoopFinished()
}

// Disconnect disconnects every client. It is local only.
func (b *BroadcastGroup) Disconnect() {
	for _, client := range b.clients {
		client.Disconnect()
	}
}

func (b *BroadcastGroup) dispatch(packet *Packet) {
	if b.publisher == nil {
		return
	}

	b.index.Each(func(namespace, room string) {
		msg := &DispatchMessage{
			NodeID:    b.nodeID,
			Namespace: namespace,
			Room:      room,
			Packet:    packet,
		}
		if err := b.publisher.Publish(b.ctx, TopicDispatch, msg); err != nil {
			b.logger.Warn("dispatch publish failed",
				slog.String("namespace", namespace),
				slog.String("room", room),
				slog.String("packet", packet.Type.String()),
				slog.Any("error", err),
			)
		}
	})
}
