package connections

import (
	"net"
	"testing"

	"github.com/nyatla/slsk-go/lib/protocol"
)

func TestChannelStateString(t *testing.T) {
	cases := map[ChannelState]string{
		StateOpening:     "Opening",
		StateInitSent:    "InitSent",
		StatePierceSent:  "PierceSent",
		StateDialog:      "Dialog",
		StateClosing:     "Closing",
		StateFailed:      "Failed",
		ChannelState(99): "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestChannelFailClosesOnce(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	ch := newChannel(a)
	ch.Fail(nil)
	if ch.State() != StateFailed {
		t.Fatalf("state = %v, want Failed", ch.State())
	}
	// Second Fail/Close must be a no-op, not panic on double-close.
	ch.Fail(nil)
	ch.Close()
}

func TestPeerAddressCacheRoundtrip(t *testing.T) {
	c, err := NewPeerAddressCache(8)
	if err != nil {
		t.Fatal(err)
	}
	addr := PeerAddress{IP: [4]byte{1, 2, 3, 4}, Port: 2234}
	c.Put("alice", addr)
	got, ok := c.Get("alice")
	if !ok || got != addr {
		t.Fatalf("Get(alice) = %+v, %v, want %+v, true", got, ok, addr)
	}
	c.Forget("alice")
	if _, ok := c.Get("alice"); ok {
		t.Fatal("expected entry forgotten")
	}
}

func TestDialDirectSendsPeerInit(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	accepted := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 256)
		n, _ := conn.Read(buf)
		accepted <- buf[:n]
		conn.Close()
	}()

	addr := ln.Addr().(*net.TCPAddr)
	var ip [4]byte
	copy(ip[:], addr.IP.To4())
	ch, err := DialDirect(ip, uint16(addr.Port), "testuser", protocol.ConnPeer, 42, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Conn.Close()
	if ch.State() != StateInitSent {
		t.Fatalf("state = %v, want InitSent", ch.State())
	}

	frame := <-accepted
	code := protocol.PeerInitCode(frame[4])
	msg, err := protocol.DecodePeerInitMessage(code, frame[5:])
	if err != nil {
		t.Fatal(err)
	}
	init, ok := msg.(protocol.PeerInit)
	if !ok || init.Username != "testuser" || init.Token != 42 {
		t.Fatalf("decoded %+v, %v", msg, ok)
	}
}
