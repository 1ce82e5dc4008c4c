package protocol

import "github.com/nyatla/slsk-go/lib/wire"

// EncodeFileTransferInit writes the unframed handshake a downloader sends
// immediately after reopening a peer connection as a File-kind channel: a
// bare u32 token followed by a u64 byte offset to resume from (0 for a
// fresh download). There is no length prefix and no message code — this is
// the one protocol of the five that isn't framed, spec.md §4.1.
func EncodeFileTransferInit(token uint32, offset uint64) []byte {
	w := wire.NewWriter(12)
	w.WriteUint32(token)
	w.WriteUint64(offset)
	return w.Bytes()
}

// DecodeFileTransferInit reverses EncodeFileTransferInit.
func DecodeFileTransferInit(buf []byte) (token uint32, offset uint64, err error) {
	r := wire.NewReader(buf)
	token = r.ReadUint32()
	offset = r.ReadUint64()
	if r.Err() != nil {
		return 0, 0, r.Err()
	}
	return token, offset, nil
}
