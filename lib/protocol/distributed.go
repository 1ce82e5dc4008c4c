package protocol

import "github.com/nyatla/slsk-go/lib/wire"

// DistributedMessage is exchanged over a D connection. This client never
// participates as a branch parent (spec Non-goal): every message received
// here is recorded or discarded, never forwarded to children.
type DistributedMessage interface {
	DistributedCode() DistributedCode
}

type DistributedPing struct{}

func (DistributedPing) DistributedCode() DistributedCode { return CodeDistributedPing }

type DistributedSearch struct {
	Unknown  uint32
	Username string
	Token    uint32
	Query    string
}

func (DistributedSearch) DistributedCode() DistributedCode { return CodeDistributedSearch }

type DistributedBranchLevel struct{ Level int32 }

func (DistributedBranchLevel) DistributedCode() DistributedCode { return CodeDistributedBranchLevel }

type DistributedBranchRoot struct{ Root string }

func (DistributedBranchRoot) DistributedCode() DistributedCode { return CodeDistributedBranchRoot }

type DistributedChildDepth struct{ Depth uint32 }

func (DistributedChildDepth) DistributedCode() DistributedCode { return CodeDistributedChildDepth }

type DistributedEmbeddedMessage struct {
	Code uint8
	Data []byte
}

func (DistributedEmbeddedMessage) DistributedCode() DistributedCode {
	return CodeDistributedEmbeddedMessage
}

// EncodeDistributedMessage serializes msg into a complete frame: u32 length,
// u8 code, payload.
func EncodeDistributedMessage(msg DistributedMessage) []byte {
	payload := wire.NewWriter(32)
	switch m := msg.(type) {
	case DistributedPing:
	case DistributedSearch:
		payload.WriteUint32(m.Unknown)
		payload.WriteString(m.Username)
		payload.WriteUint32(m.Token)
		payload.WriteString(m.Query)
	case DistributedBranchLevel:
		payload.WriteInt32(m.Level)
	case DistributedBranchRoot:
		payload.WriteString(m.Root)
	case DistributedChildDepth:
		payload.WriteUint32(m.Depth)
	case DistributedEmbeddedMessage:
		payload.WriteUint8(m.Code)
		for _, b := range m.Data {
			payload.WriteUint8(b)
		}
	}
	frame := wire.NewWriter(8 + payload.Len())
	frame.WriteUint32(uint32(1 + payload.Len()))
	frame.WriteUint8(uint8(msg.DistributedCode()))
	return append(frame.Bytes(), payload.Bytes()...)
}

// DecodeDistributedMessage decodes a distributed-protocol payload (frame
// length and code already consumed) according to its code.
func DecodeDistributedMessage(code DistributedCode, payload []byte) (DistributedMessage, error) {
	r := wire.NewReader(payload)
	switch code {
	case CodeDistributedPing:
		return DistributedPing{}, nil
	case CodeDistributedSearch:
		msg := DistributedSearch{
			Unknown:  r.ReadUint32(),
			Username: r.ReadString(),
			Token:    r.ReadUint32(),
			Query:    r.ReadString(),
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodeDistributedBranchLevel:
		msg := DistributedBranchLevel{Level: r.ReadInt32()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodeDistributedBranchRoot:
		msg := DistributedBranchRoot{Root: r.ReadString()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodeDistributedChildDepth:
		msg := DistributedChildDepth{Depth: r.ReadUint32()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodeDistributedEmbeddedMessage:
		inner := r.ReadUint8()
		return DistributedEmbeddedMessage{Code: inner, Data: payloadTail(r)}, nil
	default:
		return nil, wire.NewInvalidCode("distributed", uint32(code))
	}
}
