package wire

import (
	"bytes"
	"compress/zlib"
	"io"
)

// ZlibCompress compresses data for the three message kinds that carry
// compressed payloads (SharedFileListResponse, FolderContentsResponse,
// FileSearchResponse). There is no inner length prefix: the frame length
// already bounds the compressed bytes, and the decoder reads to EOF.
func ZlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, NewCompressionFailure(err.Error(), err)
	}
	if err := zw.Close(); err != nil {
		return nil, NewCompressionFailure(err.Error(), err)
	}
	return buf.Bytes(), nil
}

// ZlibDecompress reverses ZlibCompress.
func ZlibDecompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewCompressionFailure(err.Error(), err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, NewCompressionFailure(err.Error(), err)
	}
	return out, nil
}
