// Package wire implements the little-endian binary primitives shared by all
// four Soulseek wire protocols (server, peer, peer-init, distributed) plus
// the unframed file-transfer byte stream.
//
// The encoding rules are fixed by the network, not by us: u8/u16/u32/i32/u64
// in little-endian order, bool as a single byte, strings and byte blobs
// prefixed by a u32 length, IPv4 addresses stored as a little-endian u32
// (octets reversed relative to dotted-quad order), and lists prefixed by a
// u32 element count.
package wire

import "fmt"

// Kind classifies a wire-level error the way spec.md's error taxonomy does,
// so callers can branch on *kind* rather than parsing message text.
type Kind int

const (
	KindIO Kind = iota
	KindUTF8
	KindBufferUnderflow
	KindInvalidCode
	KindInvalidEnum
	KindCompressionFailure
	KindProtocolViolation
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindUTF8:
		return "utf8"
	case KindBufferUnderflow:
		return "buffer_underflow"
	case KindInvalidCode:
		return "invalid_code"
	case KindInvalidEnum:
		return "invalid_enum"
	case KindCompressionFailure:
		return "compression_failure"
	case KindProtocolViolation:
		return "protocol_violation"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by everything in lib/wire and
// lib/protocol. Construct one with the New* helpers rather than the struct
// literal so Kind and the associated fields always agree.
type Error struct {
	Kind Kind

	// KindBufferUnderflow
	Needed    int
	Available int

	// KindInvalidCode
	Protocol string
	Code     uint32

	// KindInvalidEnum
	Which string
	Value uint32

	// KindProtocolViolation / wrapped causes
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBufferUnderflow:
		return fmt.Sprintf("buffer underflow: needed %d bytes, had %d", e.Needed, e.Available)
	case KindInvalidCode:
		return fmt.Sprintf("invalid %s message code: %d", e.Protocol, e.Code)
	case KindInvalidEnum:
		return fmt.Sprintf("invalid %s value: %d", e.Which, e.Value)
	case KindCompressionFailure:
		return fmt.Sprintf("compression failure: %s", e.Message)
	case KindProtocolViolation:
		return fmt.Sprintf("protocol violation: %s", e.Message)
	case KindUTF8:
		return fmt.Sprintf("utf-8 decode error: %s", e.Message)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("io error: %s", e.Cause)
		}
		return "io error"
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewBufferUnderflow(needed, available int) *Error {
	return &Error{Kind: KindBufferUnderflow, Needed: needed, Available: available}
}

func NewInvalidCode(protocol string, code uint32) *Error {
	return &Error{Kind: KindInvalidCode, Protocol: protocol, Code: code}
}

func NewInvalidEnum(which string, value uint32) *Error {
	return &Error{Kind: KindInvalidEnum, Which: which, Value: value}
}

func NewCompressionFailure(msg string, cause error) *Error {
	return &Error{Kind: KindCompressionFailure, Message: msg, Cause: cause}
}

func NewProtocolViolation(msg string) *Error {
	return &Error{Kind: KindProtocolViolation, Message: msg}
}

func NewUTF8(cause error) *Error {
	return &Error{Kind: KindUTF8, Message: cause.Error(), Cause: cause}
}

func NewIO(cause error) *Error {
	return &Error{Kind: KindIO, Cause: cause}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
