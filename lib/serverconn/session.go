// Package serverconn manages the single long-lived TCP channel to the
// central Soulseek server: login handshake, framed request/response
// exchange, and reconnect-with-backoff. Shaped after the teacher's
// lib/protocol rawConnection (other_examples protocol.go): a reader/writer
// goroutine pair joined by an outbox channel, counting stream wrappers, and
// a sync.Once-guarded close.
package serverconn

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nyatla/slsk-go/lib/logger"
	"github.com/nyatla/slsk-go/lib/protocol"
)

var l = logger.DefaultLogger.NewFacility("serverconn", "server session management")

const (
	loginTimeout    = 30 * time.Second
	readBufferGrow  = 64 * 1024
	maxReconnectTry = 5
)

var (
	bytesIn = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slsk_server_bytes_in_total",
		Help: "Total bytes read from the server connection.",
	})
	bytesOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slsk_server_bytes_out_total",
		Help: "Total bytes written to the server connection.",
	})
)

func init() {
	prometheus.MustRegister(bytesIn, bytesOut)
}

// ErrClosed is returned by Send once the session has been closed.
var ErrClosed = fmt.Errorf("serverconn: session closed")

type outboxMsg struct {
	payload []byte
}

// Session is a logged-in connection to the server. Responses are delivered
// on the channel returned by Events; call Start exactly once after Login
// succeeds.
type Session struct {
	conn net.Conn
	cr   *countingReader
	cw   *countingWriter
	br   *bufio.Reader

	outbox chan outboxMsg
	events chan protocol.ServerResponse
	closed chan struct{}
	once   sync.Once

	closeErr   error
	closeErrMu sync.Mutex
}

// Dial opens a TCP connection to host:port. It does not log in; call Login
// next.
func Dial(host string, port int) (*Session, error) {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), loginTimeout)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	cr := &countingReader{Reader: conn}
	cw := &countingWriter{Writer: conn}
	s := &Session{
		conn:   conn,
		cr:     cr,
		cw:     cw,
		br:     bufio.NewReaderSize(cr, readBufferGrow),
		outbox: make(chan outboxMsg, 64),
		events: make(chan protocol.ServerResponse, 64),
		closed: make(chan struct{}),
	}
	return s, nil
}

// Login sends the Login request and blocks until a LoginSuccess/LoginFailure
// is seen, ignoring any other message that arrives first (the server has
// been observed to interleave a handful of informational messages before
// login completes). It times out after loginTimeout.
func (s *Session) Login(username, password string, listenPort int) error {
	req := protocol.LoginRequest{
		Username:     username,
		Password:     password,
		Version:      protocol.ClientVersion,
		MinorVersion: 3,
	}
	if _, err := s.cw.Write(protocol.EncodeServerRequest(req)); err != nil {
		return err
	}

	deadline := time.Now().Add(loginTimeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("serverconn: login timed out after %s", loginTimeout)
		}
		s.conn.SetReadDeadline(deadline)
		resp, err := s.readOne()
		if err != nil {
			return err
		}
		switch r := resp.(type) {
		case protocol.ServerLoginSuccess:
			s.conn.SetReadDeadline(time.Time{})
			return nil
		case protocol.ServerLoginFailure:
			return fmt.Errorf("serverconn: login rejected: %s", r.Reason)
		default:
			l.Debugf("ignoring message during login: %T", resp)
		}
	}
}

// Start launches the reader and writer goroutines. Call once, after Login
// succeeds.
func (s *Session) Start() {
	go s.readerLoop()
	go s.writerLoop()
}

// Events returns the channel of responses delivered strictly in server
// order. It is closed when the session closes.
func (s *Session) Events() <-chan protocol.ServerResponse {
	return s.events
}

// Send enqueues a request for the writer goroutine. It never blocks on I/O
// itself.
func (s *Session) Send(req protocol.ServerRequest) error {
	select {
	case s.outbox <- outboxMsg{payload: protocol.EncodeServerRequest(req)}:
		return nil
	case <-s.closed:
		return ErrClosed
	}
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Err returns the error that caused the session to close, if any.
func (s *Session) Err() error {
	s.closeErrMu.Lock()
	defer s.closeErrMu.Unlock()
	return s.closeErr
}

// Stats reports cumulative byte counters and last-activity times, useful
// for health checks.
type Stats struct {
	BytesIn, BytesOut   uint64
	LastRead, LastWrite time.Time
}

func (s *Session) Stats() Stats {
	return Stats{
		BytesIn:   s.cr.Tot(),
		BytesOut:  s.cw.Tot(),
		LastRead:  s.cr.Last(),
		LastWrite: s.cw.Last(),
	}
}

func (s *Session) readOne() (protocol.ServerResponse, error) {
	header := make([]byte, 4)
	if _, err := readFull(s.br, header); err != nil {
		return nil, err
	}
	frameLen := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16 | uint32(header[3])<<24
	body := make([]byte, frameLen)
	if _, err := readFull(s.br, body); err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, fmt.Errorf("serverconn: frame too short for a code: %d bytes", len(body))
	}
	code := uint32(body[0]) | uint32(body[1])<<8 | uint32(body[2])<<16 | uint32(body[3])<<24
	return protocol.DecodeServerResponse(protocol.ServerCode(code), body[4:])
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

func (s *Session) readerLoop() {
	for {
		before := s.cr.Tot()
		resp, err := s.readOne()
		if err != nil {
			s.close(err)
			return
		}
		bytesIn.Add(float64(s.cr.Tot() - before))
		select {
		case s.events <- resp:
		case <-s.closed:
			return
		}
	}
}

func (s *Session) writerLoop() {
	for {
		select {
		case m := <-s.outbox:
			if _, err := s.cw.Write(m.payload); err != nil {
				s.close(err)
				return
			}
			bytesOut.Add(float64(len(m.payload)))
		case <-s.closed:
			return
		}
	}
}

func (s *Session) close(err error) {
	s.once.Do(func() {
		s.closeErrMu.Lock()
		s.closeErr = err
		s.closeErrMu.Unlock()
		l.Debugln("closing server session:", err)
		close(s.closed)
		close(s.events)
		s.conn.Close()
	})
}

// Close shuts down the session gracefully.
func (s *Session) Close() {
	s.close(nil)
}

// IsTransient reports whether an error string suggests a rate-limit or
// connection-reset condition worth a longer backoff, per
// reconnectDelay.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "reset")
}

// reconnectDelay implements the backoff schedule: 30*attempt seconds for a
// rate-limit/reset error, otherwise exponential 10/20/40/60s capped at 60s.
func reconnectDelay(attempt int, lastErr error) time.Duration {
	if IsTransient(lastErr) {
		return time.Duration(30*attempt) * time.Second
	}
	shift := attempt - 1
	if shift > 3 {
		shift = 3
	}
	secs := 10 * (1 << uint(shift))
	if secs > 60 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

// ConnectAndLogin dials host:port, logs in, and starts the session. On
// failure it retries up to maxReconnectTry times following
// reconnectDelay's schedule (spec: "reconnect_with_backoff").
func ConnectAndLogin(host string, port int, username, password string, listenPort int) (*Session, error) {
	var lastErr error
	for attempt := 1; attempt <= maxReconnectTry; attempt++ {
		sess, err := Dial(host, port)
		if err == nil {
			if err = sess.Login(username, password, listenPort); err == nil {
				if err = sess.Send(protocol.SetStatusRequest{Status: protocol.StatusOnline}); err != nil {
					sess.Close()
					return nil, err
				}
				if err = sess.Send(protocol.SetWaitPortRequest{Port: uint32(listenPort)}); err != nil {
					sess.Close()
					return nil, err
				}
				sess.Start()
				return sess, nil
			}
			sess.Close()
		}
		lastErr = err
		if attempt == maxReconnectTry {
			break
		}
		delay := reconnectDelay(attempt, lastErr)
		l.Infof("connect attempt %d/%d failed: %v, retrying in %s", attempt, maxReconnectTry, lastErr, delay)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("serverconn: giving up after %d attempts: %w", maxReconnectTry, lastErr)
}
