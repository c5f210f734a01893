package roomcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultNamespace is the name of the namespace every server creates on start.
const DefaultNamespace = "/"

var (
	ErrEmptyPacket       = errors.New("empty packet")
	ErrMalformedPacket   = errors.New("malformed packet")
	ErrInvalidPacketType = errors.New("invalid packet type")
)

// PacketType represents socket packet types
type PacketType int

const (
	PacketTypeDisconnect PacketType = iota
	PacketTypeConnect
	PacketTypeHeartbeat
	PacketTypeMessage
	PacketTypeJSON
	PacketTypeEvent
	PacketTypeAck
	PacketTypeError
	PacketTypeNoop
)

// Packet is the message envelope delivered to clients and carried across
// nodes inside a DispatchMessage. A packet handed to a broadcast must not be
// modified afterwards: every recipient shares it.
type Packet struct {
	Type      PacketType `json:"type"`
	ID        *int       `json:"id,omitempty"`
	AckData   bool       `json:"ackData,omitempty"`
	AckID     *int       `json:"ackId,omitempty"`
	Namespace string     `json:"namespace,omitempty"`
	Name      string     `json:"name,omitempty"`
	Data      any        `json:"data,omitempty"`
	Args      []any      `json:"args,omitempty"`
}

// NewMessagePacket builds a plain text message packet.
func NewMessagePacket(message string) *Packet {
	return &Packet{Type: PacketTypeMessage, Data: message}
}

// NewJSONPacket builds a packet carrying an arbitrary JSON-encodable object.
func NewJSONPacket(object any) *Packet {
	return &Packet{Type: PacketTypeJSON, Data: object}
}

// NewEventPacket builds a named event packet.
func NewEventPacket(name string, args ...any) *Packet {
	return &Packet{Type: PacketTypeEvent, Name: name, Args: args}
}

// withNamespace returns a shallow copy bound to the given namespace.
func (p *Packet) withNamespace(namespace string) *Packet {
	out := *p
	out.Namespace = namespace
	return &out
}

// withAck returns a shallow copy that requests an acknowledgment with id.
func (p *Packet) withAck(id int) *Packet {
	out := *p
	out.ID = &id
	out.AckData = true
	return &out
}

type eventData struct {
	Name string `json:"name"`
	Args []any  `json:"args,omitempty"`
}

// Encode encodes the packet as type:id[+]:endpoint[:data]
func (p *Packet) Encode() (string, error) {
	var builder strings.Builder

	builder.WriteString(strconv.Itoa(int(p.Type)))
	builder.WriteByte(':')

	if p.ID != nil {
		builder.WriteString(strconv.Itoa(*p.ID))
		if p.AckData {
			builder.WriteByte('+')
		}
	}
	builder.WriteByte(':')

	if p.Namespace != DefaultNamespace {
		builder.WriteString(p.Namespace)
	}

	data, err := p.encodeData()
	if err != nil {
		return "", err
	}
	if data != "" || p.Type.carriesData() {
		builder.WriteByte(':')
		builder.WriteString(data)
	}

	return builder.String(), nil
}

func (p *Packet) encodeData() (string, error) {
	switch p.Type {
	case PacketTypeMessage, PacketTypeError:
		if p.Data == nil {
			return "", nil
		}
		if s, ok := p.Data.(string); ok {
			return s, nil
		}
		return fmt.Sprint(p.Data), nil
	case PacketTypeJSON:
		return marshal(p.Data)
	case PacketTypeEvent:
		return marshal(eventData{Name: p.Name, Args: p.Args})
	case PacketTypeAck:
		if p.AckID == nil {
			return "", nil
		}
		id := strconv.Itoa(*p.AckID)
		if len(p.Args) == 0 {
			return id, nil
		}
		args, err := marshal(p.Args)
		if err != nil {
			return "", err
		}
		return id + "+" + args, nil
	default:
		return "", nil
	}
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal packet data: %w", err)
	}
	return string(b), nil
}

// DecodePacket decodes a packet from its text form
func DecodePacket(data string) (*Packet, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPacket
	}

	parts := strings.SplitN(data, ":", 4)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedPacket, data)
	}

	t, err := strconv.Atoi(parts[0])
	if err != nil || t < int(PacketTypeDisconnect) || t > int(PacketTypeNoop) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPacketType, parts[0])
	}

	packet := &Packet{
		Type:      PacketType(t),
		Namespace: DefaultNamespace,
	}

	if id := parts[1]; id != "" {
		if strings.HasSuffix(id, "+") {
			packet.AckData = true
			id = strings.TrimSuffix(id, "+")
		}
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("%w: bad id %q", ErrMalformedPacket, parts[1])
		}
		packet.ID = &n
	}

	if parts[2] != "" {
		packet.Namespace = parts[2]
	}

	if len(parts) == 4 {
		if err := packet.decodeData(parts[3]); err != nil {
			return nil, err
		}
	}

	return packet, nil
}

func (p *Packet) decodeData(raw string) error {
	switch p.Type {
	case PacketTypeMessage, PacketTypeError:
		p.Data = raw
	case PacketTypeJSON:
		if raw == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(raw), &p.Data); err != nil {
			return fmt.Errorf("failed to unmarshal packet data: %w", err)
		}
	case PacketTypeEvent:
		var ev eventData
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}
		p.Name = ev.Name
		p.Args = ev.Args
	case PacketTypeAck:
		idPart, argsPart, hasArgs := strings.Cut(raw, "+")
		id, err := strconv.Atoi(idPart)
		if err != nil {
			return fmt.Errorf("%w: bad ack id %q", ErrMalformedPacket, idPart)
		}
		p.AckID = &id
		if hasArgs {
			if err := json.Unmarshal([]byte(argsPart), &p.Args); err != nil {
				return fmt.Errorf("failed to unmarshal ack args: %w", err)
			}
		}
	}
	return nil
}

func (pt PacketType) carriesData() bool {
	switch pt {
	case PacketTypeMessage, PacketTypeJSON, PacketTypeEvent, PacketTypeAck:
		return true
	default:
		return false
	}
}

// String returns the packet type as a string
func (pt PacketType) String() string {
	switch pt {
	case PacketTypeDisconnect:
		return "disconnect"
	case PacketTypeConnect:
		return "connect"
	case PacketTypeHeartbeat:
		return "heartbeat"
	case PacketTypeMessage:
		return "message"
	case PacketTypeJSON:
		return "json"
	case PacketTypeEvent:
		return "event"
	case PacketTypeAck:
		return "ack"
	case PacketTypeError:
		return "error"
	case PacketTypeNoop:
		return "noop"
	default:
		return "unknown"
	}
}
