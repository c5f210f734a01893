package engineio

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PacketType represents transport frame types
type PacketType byte

const (
	PacketTypeOpen PacketType = iota
	PacketTypeClose
	PacketTypePing
	PacketTypePong
	PacketTypeMessage
	PacketTypeNoop
)

// Packet is one websocket text frame: a type digit followed by the payload.
type Packet struct {
	Type PacketType
	Data []byte
}

// Encode encodes the packet to bytes
func (p *Packet) Encode() []byte {
	result := make([]byte, 0, len(p.Data)+1)
	result = append(result, byte('0'+p.Type))
	result = append(result, p.Data...)
	return result
}

// DecodePacket decodes bytes into a packet
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	typeChar := data[0]
	if typeChar < '0' || typeChar > '0'+byte(PacketTypeNoop) {
		return nil, fmt.Errorf("invalid frame type: %c", typeChar)
	}

	packet := &Packet{
		Type: PacketType(typeChar - '0'),
	}

	if len(data) > 1 {
		packet.Data = data[1:]
	}

	return packet, nil
}

// HandshakeData is sent in the open frame of every session
type HandshakeData struct {
	SID          string `json:"sid"`
	PingInterval int64  `json:"pingInterval"`
	PingTimeout  int64  `json:"pingTimeout"`
	MaxPayload   int64  `json:"maxPayload"`
}

// EncodeHandshake creates an open frame with handshake data
func EncodeHandshake(sid string, cfg *Config) ([]byte, error) {
	data := HandshakeData{
		SID:          sid,
		PingInterval: cfg.PingInterval.Milliseconds(),
		PingTimeout:  cfg.PingTimeout.Milliseconds(),
		MaxPayload:   cfg.MaxPayload,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode handshake: %w", err)
	}

	packet := &Packet{
		Type: PacketTypeOpen,
		Data: jsonData,
	}

	return packet.Encode(), nil
}

// String returns the packet type as a string
func (pt PacketType) String() string {
	switch pt {
	case PacketTypeOpen:
		return "open"
	case PacketTypeClose:
		return "close"
	case PacketTypePing:
		return "ping"
	case PacketTypePong:
		return "pong"
	case PacketTypeMessage:
		return "message"
	case PacketTypeNoop:
		return "noop"
	default:
		return "unknown(" + strconv.Itoa(int(pt)) + ")"
	}
}
