package wire

import "encoding/binary"

// Writer accumulates an encoded message payload. Unlike Reader it cannot
// fail (the values passed in are always representable), so it has no sticky
// error state; it just grows a byte slice.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer, optionally pre-sizing its buffer.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes writes a u32-length-prefixed byte blob.
func (w *Writer) WriteBytes(v []byte) {
	w.WriteUint32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteString writes a u32-length-prefixed UTF-8 string.
func (w *Writer) WriteString(v string) {
	w.WriteBytes([]byte(v))
}

// WriteIPv4 writes a 4-byte little-endian IP, octets reversed relative to
// dotted-quad order: a.b.c.d is written as [d, c, b, a].
func (w *Writer) WriteIPv4(addr [4]byte) {
	a, b, c, d := addr[0], addr[1], addr[2], addr[3]
	w.buf = append(w.buf, d, c, b, a)
}

// WriteList writes a u32 element count followed by each element encoded
// with writeFn, mirroring the original's generic write_list helper.
func WriteList[T any](w *Writer, items []T, writeFn func(*Writer, T)) {
	w.WriteUint32(uint32(len(items)))
	for _, item := range items {
		writeFn(w, item)
	}
}
