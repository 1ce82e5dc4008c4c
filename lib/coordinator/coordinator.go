// Package coordinator is the transaction coordinator spec.md §4.5 and §5
// describe: it owns the single mutable state object tying the server
// session (lib/serverconn) to the peer connection layer (lib/connections)
// and the search/download state machines (lib/model), reading server
// events in order and driving each transaction kind's policy. Mutations to
// its own state happen under one mutex, acquired briefly and never held
// across socket I/O, the same discipline the teacher's lib/model.model
// applies to its folder/device maps.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/nyatla/slsk-go/lib/connections"
	"github.com/nyatla/slsk-go/lib/logger"
	"github.com/nyatla/slsk-go/lib/model"
	"github.com/nyatla/slsk-go/lib/protocol"
	"github.com/nyatla/slsk-go/lib/ratelimit"
	"github.com/nyatla/slsk-go/lib/serverconn"
)

var l = logger.DefaultLogger.NewFacility("coordinator", "transaction coordinator")

const (
	peerAddressTimeout = 15 * time.Second
	dialTimeout        = 10 * time.Second
	pierceWaitTimeout  = 15 * time.Second
	queueWaitTimeout   = 5 * time.Minute
)

// Config collects the coordinator's tunables.
type Config struct {
	// Username is this client's own login name, sent in every PeerInit we
	// initiate.
	Username string
	// ListenPort is the inbound acceptor's bind port; 0 picks an ephemeral
	// port (recommended — read it back with Port() before logging in, so
	// the real port can be advertised via SetWaitPort).
	ListenPort int
	// DownloadDir is where StreamToFile writes completed transfers.
	DownloadDir string
}

type addrResult struct {
	addr connections.PeerAddress
	err  error
}

type pierceResult struct {
	ch  *connections.Channel
	err error
}

// Coordinator implements connections.Dispatcher and drives every peer
// transaction this client initiates: resolving addresses, opening
// channels, running searches to completion, and walking a download through
// its full handshake.
type Coordinator struct {
	cfg  Config
	sess *serverconn.Session

	searches  *model.SearchRegistry
	limiter   *ratelimit.SearchLimiter
	peerCache *connections.PeerAddressCache
	acceptor  *connections.Acceptor
	sup       *suture.Supervisor

	mu          sync.Mutex
	tokenSeq    uint32
	addrWaiters map[string][]chan addrResult
	pierceWait  map[uint32]chan pierceResult
	searchDone  map[uint32]chan []model.AccumulatedResult
}

// New binds the inbound acceptor and builds an otherwise session-less
// coordinator. Call AttachSession once the server login succeeds.
func New(cfg Config) (*Coordinator, error) {
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}
	c := &Coordinator{
		cfg:         cfg,
		searches:    model.NewSearchRegistry(),
		limiter:     ratelimit.New(),
		addrWaiters: make(map[string][]chan addrResult),
		pierceWait:  make(map[uint32]chan pierceResult),
		searchDone:  make(map[uint32]chan []model.AccumulatedResult),
	}

	cache, err := connections.NewPeerAddressCache(256)
	if err != nil {
		return nil, err
	}
	c.peerCache = cache

	acceptor, err := connections.NewAcceptor(cfg.ListenPort, c)
	if err != nil {
		return nil, err
	}
	c.acceptor = acceptor

	c.sup = connections.NewSupervisor("connections")
	c.sup.Add(acceptor)
	return c, nil
}

// Port returns the bound inbound acceptor port, to be advertised to the
// server via SetWaitPort before Login.
func (c *Coordinator) Port() int { return c.acceptor.Port() }

// AttachSession binds the logged-in, Start()ed server session this
// coordinator drives. Call once, before Run.
func (c *Coordinator) AttachSession(sess *serverconn.Session) {
	c.sess = sess
}

// Run starts the connection supervisor, attempts a best-effort NAT-PMP port
// mapping for the acceptor's port so direct dials succeed more often from
// behind a home router, and processes server events in order until ctx is
// cancelled or the session closes.
func (c *Coordinator) Run(ctx context.Context) error {
	go c.sup.Serve(ctx)

	if _, ok := connections.TryPortMap(c.Port()); ok {
		stop := connections.RenewPortMap(c.Port())
		defer stop()
	}

	for {
		select {
		case ev, ok := <-c.sess.Events():
			if !ok {
				return c.sess.Err()
			}
			c.handleServerEvent(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) handleServerEvent(ev protocol.ServerResponse) {
	switch m := ev.(type) {
	case protocol.ServerGetPeerAddress:
		c.resolveAddr(m.Username, connections.PeerAddress{IP: m.IP, Port: uint16(m.Port)}, nil)
	case protocol.ServerCantConnectToPeer:
		c.failPierceWait(m.Token, fmt.Errorf("coordinator: server reports %s unreachable (token %d)", m.Username, m.Token))
	default:
		l.Debugf("unhandled server event %T", ev)
	}
}

func (c *Coordinator) nextToken() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSeq++
	return c.tokenSeq
}

func (c *Coordinator) resolveAddr(username string, addr connections.PeerAddress, err error) {
	c.mu.Lock()
	waiters := c.addrWaiters[username]
	delete(c.addrWaiters, username)
	c.mu.Unlock()
	if err == nil {
		if addr.IP == ([4]byte{}) {
			// 0.0.0.0: the server reports the user offline.
			c.peerCache.Forget(username)
		} else {
			c.peerCache.Put(username, addr)
		}
	}
	for _, w := range waiters {
		w <- addrResult{addr, err}
	}
}

// getPeerAddress resolves username's (ip, port) from the cache or, on a
// miss, by asking the server and blocking until the matching
// ServerGetPeerAddress event arrives.
func (c *Coordinator) getPeerAddress(username string) (connections.PeerAddress, error) {
	if addr, ok := c.peerCache.Get(username); ok {
		return addr, nil
	}
	wait := make(chan addrResult, 1)
	c.mu.Lock()
	first := len(c.addrWaiters[username]) == 0
	c.addrWaiters[username] = append(c.addrWaiters[username], wait)
	c.mu.Unlock()
	if first {
		if err := c.sess.Send(protocol.GetPeerAddressRequest{Username: username}); err != nil {
			return connections.PeerAddress{}, err
		}
	}
	select {
	case res := <-wait:
		return res.addr, res.err
	case <-time.After(peerAddressTimeout):
		return connections.PeerAddress{}, fmt.Errorf("coordinator: timed out resolving address for %s", username)
	}
}

// OpenChannel establishes a channel to username of the given kind, trying
// a direct dial first and falling back to the server-relayed firewall
// pierce, per spec.md §4.4.
func (c *Coordinator) OpenChannel(username string, kind protocol.ConnectionType, token uint32) (*connections.Channel, error) {
	addr, err := c.getPeerAddress(username)
	if err != nil {
		return nil, err
	}
	ch, err := connections.DialDirect(addr.IP, addr.Port, c.cfg.Username, kind, token, dialTimeout)
	if err == nil {
		return ch, nil
	}
	l.Debugf("direct dial to %s failed (%v), falling back to firewall pierce", username, err)
	return c.openViaPierce(username, kind, token)
}

func (c *Coordinator) openViaPierce(username string, kind protocol.ConnectionType, token uint32) (*connections.Channel, error) {
	wait := make(chan pierceResult, 1)
	c.mu.Lock()
	c.pierceWait[token] = wait
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pierceWait, token)
		c.mu.Unlock()
	}()

	if err := c.sess.Send(protocol.ConnectToPeerRequest{Token: token, Username: username, ConnectionType: kind}); err != nil {
		return nil, err
	}
	select {
	case res := <-wait:
		return res.ch, res.err
	case <-time.After(pierceWaitTimeout):
		c.sess.Send(protocol.CantConnectToPeerRequest{Token: token, Username: username})
		return nil, fmt.Errorf("coordinator: timed out waiting for %s to pierce firewall (token %d)", username, token)
	}
}

func (c *Coordinator) failPierceWait(token uint32, err error) {
	c.mu.Lock()
	wait, ok := c.pierceWait[token]
	delete(c.pierceWait, token)
	c.mu.Unlock()
	if ok {
		wait <- pierceResult{nil, err}
	}
}

// HandlePierce implements connections.Dispatcher: an inbound connection
// answering one of our own ConnectToPeerRequest calls.
func (c *Coordinator) HandlePierce(ch *connections.Channel, token uint32) {
	c.mu.Lock()
	wait, ok := c.pierceWait[token]
	delete(c.pierceWait, token)
	c.mu.Unlock()
	if !ok {
		l.Debugf("unsolicited pierce for unknown token %d, closing", token)
		ch.Close()
		return
	}
	wait <- pierceResult{ch, nil}
}

// HandlePeerInit implements connections.Dispatcher: an inbound connection
// a remote peer initiated on its own. The only kind this client expects
// unsolicited is P, carrying FileSearchResponse messages for a search this
// client started; F and D connections are refused since this client never
// serves uploads or joins the distributed network as a parent.
func (c *Coordinator) HandlePeerInit(ch *connections.Channel, username string, kind protocol.ConnectionType, token uint32) {
	if kind != protocol.ConnPeer {
		l.Debugf("unsolicited %s-kind connection from %s, closing", kind, username)
		ch.Close()
		return
	}
	go c.readPeerDialog(ch, username)
}

// readPeerDialog services an inbound P-kind channel until it closes,
// routing the message kinds this client cares about as a pure downloader:
// search results. Anything else is ignored rather than failing the
// channel, since an unsolicited UserInfoRequest/SharedFileListRequest is
// routine chatter this client declines to answer (Non-goal: serving
// shares).
func (c *Coordinator) readPeerDialog(ch *connections.Channel, username string) {
	defer ch.Close()
	for {
		msg, err := ch.ReadPeerMessage()
		if err != nil {
			return
		}
		if resp, ok := msg.(protocol.FileSearchResponse); ok {
			c.routeSearchResponse(resp)
		}
	}
}

func (c *Coordinator) routeSearchResponse(resp protocol.FileSearchResponse) {
	txn, ok := c.searches.Get(resp.Token)
	if !ok {
		return
	}
	files := make([]protocol.SearchResultFile, 0, len(resp.Results)+len(resp.PrivateResults))
	files = append(files, resp.Results...)
	files = append(files, resp.PrivateResults...)
	if txn.AddResults(resp.Username, files) {
		c.armFinalize(txn)
	}
}

func (c *Coordinator) armFinalize(txn *model.SearchTxn) {
	time.AfterFunc(model.AggregationWindow, func() {
		c.searches.Remove(txn.Token)
		c.mu.Lock()
		done, ok := c.searchDone[txn.Token]
		delete(c.searchDone, txn.Token)
		c.mu.Unlock()
		if ok {
			done <- txn.Results()
		}
	})
}

// Search sends a FileSearchRequest under the rate limiter's budget and
// blocks until the aggregation window closes, returning every result
// gathered from every responding peer, spec.md §4.5.1 steps 1-6.
func (c *Coordinator) Search(ctx context.Context, query string, kind model.SearchKind, purpose string) ([]model.AccumulatedResult, error) {
	if !c.limiter.CanSearch() {
		wait, _ := c.limiter.TimeUntilNextSlot()
		return nil, fmt.Errorf("coordinator: search budget exhausted, retry in %s", wait)
	}
	token := c.searches.NextToken()
	txn := model.NewSearchTxn(token, query, kind, purpose)
	c.searches.Register(txn)

	done := make(chan []model.AccumulatedResult, 1)
	c.mu.Lock()
	c.searchDone[token] = done
	c.mu.Unlock()

	if err := c.sess.Send(protocol.FileSearchRequest{Token: token, Query: query}); err != nil {
		c.searches.Remove(token)
		return nil, err
	}
	c.limiter.RecordSearch()

	select {
	case results := <-done:
		return results, nil
	case <-ctx.Done():
		c.searches.Remove(token)
		return nil, ctx.Err()
	}
}

// Browse fetches username's full shared-file listing over a fresh P-kind
// channel, spec.md §4.3.
func (c *Coordinator) Browse(username string) (protocol.SharedFileListResponse, error) {
	ch, err := c.OpenChannel(username, protocol.ConnPeer, c.nextToken())
	if err != nil {
		return protocol.SharedFileListResponse{}, err
	}
	defer ch.Close()

	if err := ch.WritePeerMessage(protocol.SharedFileListRequest{}); err != nil {
		return protocol.SharedFileListResponse{}, err
	}
	for {
		msg, err := ch.ReadPeerMessage()
		if err != nil {
			return protocol.SharedFileListResponse{}, err
		}
		if resp, ok := msg.(protocol.SharedFileListResponse); ok {
			return resp, nil
		}
	}
}
