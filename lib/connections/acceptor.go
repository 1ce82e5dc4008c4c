package connections

import (
	"context"
	"net"
	"strconv"

	"github.com/nyatla/slsk-go/lib/protocol"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Dispatcher receives a fully-classified inbound channel: the acceptor has
// already read the first PierceFirewall/PeerInit frame, so the dispatcher
// only needs to route by kind.
type Dispatcher interface {
	HandlePierce(ch *Channel, token uint32)
	HandlePeerInit(ch *Channel, username string, kind protocol.ConnectionType, token uint32)
}

// Acceptor is a suture.Service: it listens on a TCP port advertised to the
// server via SetWaitPort, and for every inbound connection reads the first
// complete frame to decide whether the remote end is answering one of our
// ConnectToPeer requests (PierceFirewall) or initiating on its own
// (PeerInit), per spec.md §4.4.
type Acceptor struct {
	listener   net.Listener
	dispatcher Dispatcher
}

// NewAcceptor binds a TCP listener on the given port (0 picks an ephemeral
// port — call Port() afterward to learn which one to advertise).
func NewAcceptor(port int, d Dispatcher) (*Acceptor, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return &Acceptor{listener: ln, dispatcher: d}, nil
}

// Port returns the bound TCP port.
func (a *Acceptor) Port() int {
	return a.listener.Addr().(*net.TCPAddr).Port
}

// Serve implements suture.Service: accept connections until ctx is
// cancelled.
func (a *Acceptor) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		a.listener.Close()
	}()
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go a.handle(conn)
	}
}

func (a *Acceptor) handle(conn net.Conn) {
	ch := newChannel(conn)
	frame, err := ch.readFrame()
	if err != nil {
		ch.Fail(err)
		return
	}
	// frame: u32 length, u8 code, payload
	code := protocol.PeerInitCode(frame[4])
	msg, err := protocol.DecodePeerInitMessage(code, frame[5:])
	if err != nil {
		ch.Fail(err)
		return
	}
	switch m := msg.(type) {
	case protocol.PierceFirewall:
		ch.Token = m.Token
		ch.state = StateDialog
		a.dispatcher.HandlePierce(ch, m.Token)
	case protocol.PeerInit:
		ch.Username = m.Username
		ch.Kind = m.ConnectionType
		ch.Token = m.Token
		ch.state = StateDialog
		a.dispatcher.HandlePeerInit(ch, m.Username, m.ConnectionType, m.Token)
	}
}

// PeerAddressCache memoizes recent GetPeerAddress lookups per username so
// repeated dial attempts (retries, multiple concurrent downloads from the
// same user) don't re-query the server every time. The server remains the
// source of truth: this is a latency optimization, never consulted once a
// peer has been reported offline.
type PeerAddressCache struct {
	cache *lru.Cache[string, PeerAddress]
}

// PeerAddress is a cached (ip, port) pair for a username.
type PeerAddress struct {
	IP   [4]byte
	Port uint16
}

// NewPeerAddressCache returns a cache holding up to size entries.
func NewPeerAddressCache(size int) (*PeerAddressCache, error) {
	c, err := lru.New[string, PeerAddress](size)
	if err != nil {
		return nil, err
	}
	return &PeerAddressCache{cache: c}, nil
}

func (c *PeerAddressCache) Get(username string) (PeerAddress, bool) {
	return c.cache.Get(username)
}

func (c *PeerAddressCache) Put(username string, addr PeerAddress) {
	c.cache.Add(username, addr)
}

// Forget evicts a username, e.g. once the server reports it offline.
func (c *PeerAddressCache) Forget(username string) {
	c.cache.Remove(username)
}
