package wire

// MessageSize probes a streaming buffer for a complete frame without
// consuming it, the way the teacher's readHeader/readMessageAfterHeader
// split in its BEP connection reader probes for a complete message before
// handing it to the decoder. Soulseek framing is a single u32 little-endian
// length prefix covering the code and payload (no secondary header, unlike
// BEP's two-length-prefix scheme).
//
// It returns the total number of bytes the frame will occupy once complete
// (the 4-byte length prefix plus the frame body) and whether buf already
// holds that many bytes. If buf does not yet contain the 4-byte length
// prefix, ok is false and total is 0: the caller should read more and probe
// again.
func MessageSize(buf []byte) (total int, ok bool) {
	if len(buf) < 4 {
		return 0, false
	}
	r := NewReader(buf)
	frameLen := int(r.ReadUint32())
	total = 4 + frameLen
	return total, len(buf) >= total
}
