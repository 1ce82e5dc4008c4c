package serverconn

import (
	"io"
	"sync/atomic"
	"time"
)

// countingReader and countingWriter wrap a stream to track byte totals and
// last-activity time, ported from the teacher's lib/protocol/counting.go.
// Session.Stats reports their totals, and the session's reader loop feeds
// the per-read delta into the Prometheus bytes-in counter.
type countingReader struct {
	io.Reader
	tot  uint64
	last int64
}

func (c *countingReader) Read(bs []byte) (int, error) {
	n, err := c.Reader.Read(bs)
	atomic.AddUint64(&c.tot, uint64(n))
	atomic.StoreInt64(&c.last, time.Now().UnixNano())
	return n, err
}

func (c *countingReader) Tot() uint64     { return atomic.LoadUint64(&c.tot) }
func (c *countingReader) Last() time.Time { return time.Unix(0, atomic.LoadInt64(&c.last)) }

type countingWriter struct {
	io.Writer
	tot  uint64
	last int64
}

func (c *countingWriter) Write(bs []byte) (int, error) {
	n, err := c.Writer.Write(bs)
	atomic.AddUint64(&c.tot, uint64(n))
	atomic.StoreInt64(&c.last, time.Now().UnixNano())
	return n, err
}

func (c *countingWriter) Tot() uint64     { return atomic.LoadUint64(&c.tot) }
func (c *countingWriter) Last() time.Time { return time.Unix(0, atomic.LoadInt64(&c.last)) }
