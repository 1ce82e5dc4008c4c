package wire

import (
	"bytes"
	"testing"
	"testing/quick"
)

func TestUint32Roundtrip(t *testing.T) {
	f := func(v uint32) bool {
		w := NewWriter(4)
		w.WriteUint32(v)
		r := NewReader(w.Bytes())
		got := r.ReadUint32()
		return r.Err() == nil && got == v
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestStringRoundtrip(t *testing.T) {
	f := func(s string) bool {
		w := NewWriter(0)
		w.WriteString(s)
		r := NewReader(w.Bytes())
		got := r.ReadString()
		return r.Err() == nil && got == s
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestIPv4Roundtrip(t *testing.T) {
	w := NewWriter(4)
	addr := [4]byte{192, 168, 1, 1}
	w.WriteIPv4(addr)
	r := NewReader(w.Bytes())
	got := r.ReadIPv4()
	if got != addr {
		t.Fatalf("got %v, want %v", got, addr)
	}
}

func TestIPv4WireOrderIsReversed(t *testing.T) {
	w := NewWriter(4)
	w.WriteIPv4([4]byte{1, 2, 3, 4})
	want := []byte{4, 3, 2, 1}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("wire bytes = %v, want %v", w.Bytes(), want)
	}
}

func TestLoginHashVector(t *testing.T) {
	got := LoginHash("username", "password")
	want := "d51c9a7e9353746a6020f9602d452929"
	if got != want {
		t.Fatalf("LoginHash = %q, want %q", got, want)
	}
}

func TestZlibRoundtrip(t *testing.T) {
	orig := []byte("hello world, this is a test of compression")
	compressed, err := ZlibCompress(orig)
	if err != nil {
		t.Fatal(err)
	}
	decompressed, err := ZlibDecompress(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decompressed, orig) {
		t.Fatalf("got %q, want %q", decompressed, orig)
	}
}

func TestListRoundtrip(t *testing.T) {
	w := NewWriter(0)
	items := []uint32{1, 2, 3, 4, 5}
	WriteList(w, items, func(w *Writer, v uint32) { w.WriteUint32(v) })
	r := NewReader(w.Bytes())
	got := ReadList(r, func(r *Reader) uint32 { return r.ReadUint32() })
	if r.Err() != nil {
		t.Fatal(r.Err())
	}
	if len(got) != len(items) {
		t.Fatalf("got %d items, want %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Fatalf("item %d = %d, want %d", i, got[i], items[i])
		}
	}
}

func TestBufferUnderflowStopsSubsequentReads(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_ = r.ReadUint32() // needs 4 bytes, only 2 available
	if r.Err() == nil {
		t.Fatal("expected buffer underflow error")
	}
	if !IsKind(r.Err(), KindBufferUnderflow) {
		t.Fatalf("expected KindBufferUnderflow, got %v", r.Err())
	}
	// sticky: further reads are no-ops returning zero values, not panics
	if v := r.ReadUint8(); v != 0 {
		t.Fatalf("expected 0 after sticky error, got %d", v)
	}
}

func TestMessageSizeProbe(t *testing.T) {
	w := NewWriter(0)
	w.WriteUint32(4) // frame length: a single u32 code, no payload
	w.WriteUint32(1) // code

	// Partial buffer: length prefix present but body incomplete.
	partial := w.Bytes()[:6]
	if total, ok := MessageSize(partial); ok || total != 8 {
		t.Fatalf("MessageSize(partial) = (%d, %v), want (8, false)", total, ok)
	}

	full := w.Bytes()
	if total, ok := MessageSize(full); !ok || total != 8 {
		t.Fatalf("MessageSize(full) = (%d, %v), want (8, true)", total, ok)
	}

	// No length prefix yet at all.
	if _, ok := MessageSize(full[:2]); ok {
		t.Fatal("expected ok=false with fewer than 4 bytes buffered")
	}
}
