package roomcast

import "time"

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// Client is one connected peer as seen by the broadcast layer.
//
// Sends are best effort: an implementation deals with its own write
// failures and never lets them escape to the caller, so a broadcast keeps
// going when a single peer is gone.
type Client interface {
	ID() string
	Namespace() NamespaceView

	SendMessage(message string)
	SendMessageAck(message string, ack *AckCallback)
	SendJSON(object any)
	SendJSONAck(object any, ack *AckCallback)
	Send(packet *Packet)
	SendAck(packet *Packet, ack *AckCallback)
	SendEvent(name string, args ...any)
	SendEventAck(name string, ack *AckCallback, args ...any)
	Disconnect()
}

// NamespaceView is the read-only part of a namespace the broadcast layer
// needs: its name and the rooms a client currently occupies.
type NamespaceView interface {
	Name() string
	ClientRooms(clientID string) []string
}

// AckCallback is the per-client acknowledgment handler. OnTimeout fires
// instead of OnSuccess when Timeout is positive and the client did not
// answer in time.
type AckCallback struct {
	Timeout   time.Duration
	OnSuccess func(args ...any)
	OnTimeout func()
}
