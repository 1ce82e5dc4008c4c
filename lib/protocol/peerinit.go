package protocol

import "github.com/nyatla/slsk-go/lib/wire"

// PeerInitMessage is exchanged over a freshly opened TCP connection before
// it is classified as a P/F/D channel, spec.md §4.4.
type PeerInitMessage interface {
	PeerInitCode() PeerInitCode
}

// PierceFirewall answers an indirect connection request the server relayed
// to us via ConnectToPeer; Token must match the token that request carried.
type PierceFirewall struct{ Token uint32 }

func (PierceFirewall) PeerInitCode() PeerInitCode { return CodePierceFirewall }

// PeerInit opens a direct connection, naming which of the three channel
// kinds it will carry.
type PeerInit struct {
	Username       string
	ConnectionType ConnectionType
	Token          uint32
}

func (PeerInit) PeerInitCode() PeerInitCode { return CodePeerInit }

// EncodePeerInitMessage serializes msg into a complete frame: u32 length, u8
// code, payload.
func EncodePeerInitMessage(msg PeerInitMessage) []byte {
	payload := wire.NewWriter(32)
	switch m := msg.(type) {
	case PierceFirewall:
		payload.WriteUint32(m.Token)
	case PeerInit:
		payload.WriteString(m.Username)
		payload.WriteString(string(m.ConnectionType))
		payload.WriteUint32(m.Token)
	}
	frame := wire.NewWriter(8 + payload.Len())
	frame.WriteUint32(uint32(1 + payload.Len()))
	frame.WriteUint8(uint8(msg.PeerInitCode()))
	return append(frame.Bytes(), payload.Bytes()...)
}

// DecodePeerInitMessage decodes a peer-init payload (frame length and code
// already consumed) according to its code.
func DecodePeerInitMessage(code PeerInitCode, payload []byte) (PeerInitMessage, error) {
	r := wire.NewReader(payload)
	switch code {
	case CodePierceFirewall:
		msg := PierceFirewall{Token: r.ReadUint32()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodePeerInit:
		username := r.ReadString()
		ct, err := ParseConnectionType(r.ReadString())
		if err != nil {
			return nil, err
		}
		msg := PeerInit{Username: username, ConnectionType: ct, Token: r.ReadUint32()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	default:
		return nil, wire.NewInvalidCode("peer_init", uint32(code))
	}
}

// PeerInitMessageSize probes a streaming buffer for a complete peer-init
// frame without consuming it; identical framing rule to the other three
// protocols (a single u32 length prefix), spec.md §4.1.
func PeerInitMessageSize(buf []byte) (int, bool) {
	return wire.MessageSize(buf)
}
