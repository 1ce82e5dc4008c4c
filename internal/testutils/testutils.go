// Package testutils holds small io.ReadWriteCloser fakes shared by tests
// across the module, named after the teacher's own testutils helpers
// referenced from lib/protocol/protocol_test.go (NoopCloser, BlockingRW).
package testutils

import "io"

// NoopCloser adds a no-op Close to any type, for wrapping a bare
// io.Reader/io.Writer pair into an io.ReadWriteCloser in tests.
type NoopCloser struct{}

func (NoopCloser) Close() error { return nil }

// NoopRW is a Writer that discards everything written to it and never
// returns data from Read.
type NoopRW struct{}

func (NoopRW) Write(p []byte) (int, error) { return len(p), nil }
func (NoopRW) Read([]byte) (int, error)    { return 0, io.EOF }

// BlockingRW is an io.ReadWriter whose Read blocks until fed via Write,
// for driving both ends of a connection without a real socket. The channel
// between them is unbuffered, so Write also blocks until a Read takes the
// data: the reading and writing ends run on separate goroutines.
type BlockingRW struct {
	ch chan []byte
	buf []byte
}

// NewBlockingRW returns a ready BlockingRW.
func NewBlockingRW() *BlockingRW {
	return &BlockingRW{ch: make(chan []byte)}
}

func (b *BlockingRW) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	b.ch <- cp
	return len(p), nil
}

func (b *BlockingRW) Read(p []byte) (int, error) {
	for len(b.buf) == 0 {
		b.buf = <-b.ch
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}
