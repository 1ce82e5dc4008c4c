// Package connections implements the two ways a peer-to-peer channel gets
// established (direct dial, indirect firewall pierce) and the inbound
// acceptor that classifies unsolicited connections by their first message,
// following spec.md §4.4. Named to match the teacher's own lib/connections
// package.
package connections

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/nyatla/slsk-go/lib/logger"
	"github.com/nyatla/slsk-go/lib/protocol"
	"github.com/nyatla/slsk-go/lib/wire"
)

var l = logger.DefaultLogger.NewFacility("connections", "peer connection establishment")

// ChannelState is the per-channel state machine named in spec.md §4.4:
//
//	Opening → InitSent/PierceSent → Dialog → Closing
//	                              ↘ Failed(reason)
type ChannelState int

const (
	StateOpening ChannelState = iota
	StateInitSent
	StatePierceSent
	StateDialog
	StateClosing
	StateFailed
)

func (s ChannelState) String() string {
	switch s {
	case StateOpening:
		return "Opening"
	case StateInitSent:
		return "InitSent"
	case StatePierceSent:
		return "PierceSent"
	case StateDialog:
		return "Dialog"
	case StateClosing:
		return "Closing"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Channel wraps a single peer TCP connection together with its declared
// kind (P/F/D) and establishment state.
type Channel struct {
	Conn     net.Conn
	Username string
	Kind     protocol.ConnectionType
	Token    uint32

	state ChannelState
	br    *bufio.Reader
	buf   []byte
}

func newChannel(conn net.Conn) *Channel {
	return &Channel{Conn: conn, state: StateOpening, br: bufio.NewReader(conn)}
}

// DialDirect implements the "we initiate" establishment mode: connect to
// (ip, port), send PeerInit{ourUsername, kind, token}, and mark the channel
// ready for the higher-layer dialog.
func DialDirect(ip [4]byte, port uint16, ourUsername string, kind protocol.ConnectionType, token uint32, timeout time.Duration) (*Channel, error) {
	addr := fmt.Sprintf("%d.%d.%d.%d:%d", ip[0], ip[1], ip[2], ip[3], port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	ch := newChannel(conn)
	ch.Username = ourUsername
	ch.Kind = kind
	ch.Token = token
	frame := protocol.EncodePeerInitMessage(protocol.PeerInit{Username: ourUsername, ConnectionType: kind, Token: token})
	if _, err := conn.Write(frame); err != nil {
		conn.Close()
		ch.state = StateFailed
		return nil, err
	}
	ch.state = StateInitSent
	l.Debugf("direct dial to %s established, kind=%s token=%d", addr, kind, token)
	return ch, nil
}

// DialPierce implements the "peer initiated via server relay" mode: the
// server has asked us (via ConnectToPeer) to connect to (ip, port) and
// answer with PierceFirewall{token}.
func DialPierce(ip [4]byte, port uint16, token uint32, timeout time.Duration) (*Channel, error) {
	addr := fmt.Sprintf("%d.%d.%d.%d:%d", ip[0], ip[1], ip[2], ip[3], port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	ch := newChannel(conn)
	ch.Token = token
	frame := protocol.EncodePeerInitMessage(protocol.PierceFirewall{Token: token})
	if _, err := conn.Write(frame); err != nil {
		conn.Close()
		ch.state = StateFailed
		return nil, err
	}
	ch.state = StatePierceSent
	l.Debugf("pierce dial to %s established, token=%d", addr, token)
	return ch, nil
}

// ReadPeerMessage reads one complete peer-protocol frame (u32 length, u32
// code, payload) and decodes it, for use once the channel has reached
// StateDialog on a P-kind connection.
func (c *Channel) ReadPeerMessage() (protocol.PeerMessage, error) {
	frame, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	if len(frame) < 8 {
		return nil, fmt.Errorf("connections: peer frame too short for a code: %d bytes", len(frame))
	}
	code := protocol.PeerCode(uint32(frame[4]) | uint32(frame[5])<<8 | uint32(frame[6])<<16 | uint32(frame[7])<<24)
	return protocol.DecodePeerMessage(code, frame[8:])
}

// WritePeerMessage encodes and sends msg over the channel's connection.
func (c *Channel) WritePeerMessage(msg protocol.PeerMessage) error {
	frame, err := protocol.EncodePeerMessage(msg)
	if err != nil {
		return err
	}
	_, err = c.Conn.Write(frame)
	return err
}

// State reports the channel's current establishment state.
func (c *Channel) State() ChannelState { return c.state }

// MarkDialog transitions the channel to StateDialog once the higher-layer
// peer protocol dialog begins.
func (c *Channel) MarkDialog() { c.state = StateDialog }

// Fail transitions the channel to StateFailed and closes the socket.
func (c *Channel) Fail(reason error) {
	if c.state == StateFailed || c.state == StateClosing {
		return
	}
	l.Debugf("channel to %s failed: %v", c.Username, reason)
	c.state = StateFailed
	c.Conn.Close()
}

// Close transitions the channel to StateClosing gracefully.
func (c *Channel) Close() {
	if c.state == StateFailed || c.state == StateClosing {
		return
	}
	c.state = StateClosing
	c.Conn.Close()
}

// readFrame reads one complete u32-length-prefixed frame (peer-init or
// peer protocol) from the channel's buffered reader without consuming bytes
// prematurely: it probes with message_size while the frame still fits in
// the reader's buffer, and once the buffer is full it takes the length from
// the frame header and reads the rest straight through. The acceptor uses
// it to classify a connection before it knows which protocol's decoder to
// hand it to.
func (c *Channel) readFrame() ([]byte, error) {
	for {
		peeked, _ := c.br.Peek(c.br.Buffered())
		total, ok := wire.MessageSize(peeked)
		if !ok && total > 0 && len(peeked) == c.br.Size() {
			ok = true
		}
		if ok {
			buf := make([]byte, total)
			if _, err := readFull(c.br, buf); err != nil {
				return nil, err
			}
			return buf, nil
		}
		if _, err := c.br.Peek(c.br.Buffered() + 1); err != nil {
			return nil, err
		}
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
