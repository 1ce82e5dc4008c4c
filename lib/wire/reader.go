package wire

import "encoding/binary"

// Reader decodes primitives from an in-memory frame payload. Like the
// teacher's calmh/xdr Reader, it keeps a single sticky error: once any Read*
// call fails, every subsequent call is a no-op that returns the zero value,
// so callers can chain several reads and check Err() once at the end.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader wraps buf for decoding. buf is not copied; the caller must not
// mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.Remaining() < n {
		r.err = NewBufferUnderflow(n, r.Remaining())
		return false
	}
	return true
}

func (r *Reader) ReadUint8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadUint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *Reader) ReadUint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadUint64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

// ReadBytes reads a u32-length-prefixed byte blob.
func (r *Reader) ReadBytes() []byte {
	n := int(r.ReadUint32())
	if !r.need(n) {
		return nil
	}
	v := make([]byte, n)
	copy(v, r.buf[r.pos:r.pos+n])
	r.pos += n
	return v
}

// ReadString reads a u32-length-prefixed UTF-8 string.
func (r *Reader) ReadString() string {
	b := r.ReadBytes()
	if r.err != nil {
		return ""
	}
	if !validUTF8(b) {
		r.err = NewUTF8(errInvalidUTF8)
		return ""
	}
	return string(b)
}

// ReadIPv4 reads a 4-byte little-endian IP, octets reversed relative to
// dotted-quad order: the wire bytes are [d, c, b, a] for address a.b.c.d.
func (r *Reader) ReadIPv4() [4]byte {
	if !r.need(4) {
		return [4]byte{}
	}
	d, c, b, a := r.buf[r.pos], r.buf[r.pos+1], r.buf[r.pos+2], r.buf[r.pos+3]
	r.pos += 4
	return [4]byte{a, b, c, d}
}

// ReadList reads a u32 element count followed by that many elements decoded
// with readFn, mirroring the original's generic read_list helper.
func ReadList[T any](r *Reader, readFn func(*Reader) T) []T {
	n := int(r.ReadUint32())
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Remaining() {
		// A list element is at least 1 byte; a count larger than the
		// remaining buffer can never be satisfied.
		r.err = NewBufferUnderflow(n, r.Remaining())
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, readFn(r))
		if r.err != nil {
			return nil
		}
	}
	return out
}
