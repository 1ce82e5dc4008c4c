package coordinator

import (
	"net"
	"testing"

	"github.com/nyatla/slsk-go/lib/connections"
	"github.com/nyatla/slsk-go/lib/model"
	"github.com/nyatla/slsk-go/lib/protocol"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c, err := New(Config{Username: "me"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNextTokenMonotonic(t *testing.T) {
	c := newTestCoordinator(t)
	a := c.nextToken()
	b := c.nextToken()
	if b <= a {
		t.Fatalf("tokens not monotonic: %d, %d", a, b)
	}
}

func TestHandlePierceRoutesToWaiter(t *testing.T) {
	c := newTestCoordinator(t)
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	wait := make(chan pierceResult, 1)
	c.pierceWait[42] = wait

	ch := &connections.Channel{Conn: a}
	c.HandlePierce(ch, 42)

	res := <-wait
	if res.err != nil || res.ch != ch {
		t.Fatalf("HandlePierce result = %+v, want matching channel with no error", res)
	}
}

func TestHandlePierceUnsolicitedCloses(t *testing.T) {
	c := newTestCoordinator(t)
	a, b := net.Pipe()
	defer b.Close()

	ch := &connections.Channel{Conn: a}
	c.HandlePierce(ch, 999) // no waiter registered for this token

	if ch.State() != connections.StateFailed && ch.State() != connections.StateClosing {
		t.Fatalf("state = %v, want Failed or Closing after unsolicited pierce", ch.State())
	}
}

func TestHandlePeerInitRejectsNonPeerKind(t *testing.T) {
	c := newTestCoordinator(t)
	a, b := net.Pipe()
	defer b.Close()

	ch := &connections.Channel{Conn: a}
	c.HandlePeerInit(ch, "alice", protocol.ConnFile, 1)

	if ch.State() != connections.StateFailed && ch.State() != connections.StateClosing {
		t.Fatalf("state = %v, want the channel closed for a non-P unsolicited connection", ch.State())
	}
}

func TestRouteSearchResponseAggregatesAcrossPeers(t *testing.T) {
	c := newTestCoordinator(t)
	txn := model.NewSearchTxn(7, "query", model.SearchInteractive, "")
	c.searches.Register(txn)

	c.routeSearchResponse(protocol.FileSearchResponse{
		Username: "alice", Token: 7,
		Results: []protocol.SearchResultFile{{Filename: "a.flac"}},
	})
	c.routeSearchResponse(protocol.FileSearchResponse{
		Username: "bob", Token: 7,
		Results:        []protocol.SearchResultFile{{Filename: "b.mp3"}},
		PrivateResults: []protocol.SearchResultFile{{Filename: "b2.mp3"}},
	})

	results := txn.Results()
	if len(results) != 3 {
		t.Fatalf("len(Results()) = %d, want 3 (1 public + 1 public + 1 private)", len(results))
	}
}

func TestRouteSearchResponseIgnoresUnknownToken(t *testing.T) {
	c := newTestCoordinator(t)
	// No txn registered for token 99; routing must not panic.
	c.routeSearchResponse(protocol.FileSearchResponse{Username: "alice", Token: 99})
}

func TestResolveAddrFansOutToAllWaiters(t *testing.T) {
	c := newTestCoordinator(t)
	w1 := make(chan addrResult, 1)
	w2 := make(chan addrResult, 1)
	c.addrWaiters["alice"] = []chan addrResult{w1, w2}

	addr := connections.PeerAddress{IP: [4]byte{1, 2, 3, 4}, Port: 2234}
	c.resolveAddr("alice", addr, nil)

	for _, w := range []chan addrResult{w1, w2} {
		res := <-w
		if res.err != nil || res.addr != addr {
			t.Fatalf("waiter result = %+v, want %+v", res, addr)
		}
	}
	if _, ok := c.peerCache.Get("alice"); !ok {
		t.Fatal("expected resolveAddr to populate the peer cache")
	}
	if len(c.addrWaiters) != 0 {
		t.Fatalf("expected waiters cleared, got %d entries", len(c.addrWaiters))
	}
}

func TestFailPierceWaitDeliversError(t *testing.T) {
	c := newTestCoordinator(t)
	wait := make(chan pierceResult, 1)
	c.pierceWait[5] = wait

	c.failPierceWait(5, net.ErrClosed)

	res := <-wait
	if res.err == nil || res.ch != nil {
		t.Fatalf("result = %+v, want an error and nil channel", res)
	}
	if _, ok := c.pierceWait[5]; ok {
		t.Fatal("expected pierceWait entry removed")
	}
}
