package roomcast

import "context"

//go:generate mockgen -source=dispatch.go -destination=mocks/mock_dispatch.go -package=mocks

// Topic names a channel on the pub/sub bus.
type Topic string

// TopicDispatch carries packets that other nodes deliver to their own
// members of a room.
const TopicDispatch Topic = "DISPATCH"

// DispatchMessage is published once per (namespace, room) entry of a
// broadcast so remote nodes can deliver Packet to their local room members.
type DispatchMessage struct {
	NodeID    string  `json:"nodeId"`
	Namespace string  `json:"namespace"`
	Room      string  `json:"room"`
	Packet    *Packet `json:"packet"`
}

// Publisher sends messages to every node listening on a topic.
// Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic Topic, msg *DispatchMessage) error
}

// Subscriber registers handlers for messages published on a topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic Topic, handler func(*DispatchMessage)) (Subscription, error)
}

// Subscription stops delivery to its handler when closed.
type Subscription interface {
	Close() error
}

// PubSub is the process-wide bus shared by all broadcasts of a server.
type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
