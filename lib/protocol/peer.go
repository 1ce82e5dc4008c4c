package protocol

import "github.com/nyatla/slsk-go/lib/wire"

// FileAttribute is one (code, value) pair attached to a shared or
// search-result file (bitrate, duration, VBR flag, encoder, ...).
type FileAttribute struct {
	Type  FileAttributeType
	Value uint32
}

func readFileAttribute(r *wire.Reader) FileAttribute {
	return FileAttribute{Type: FileAttributeType(r.ReadUint32()), Value: r.ReadUint32()}
}

func writeFileAttribute(w *wire.Writer, a FileAttribute) {
	w.WriteUint32(uint32(a.Type))
	w.WriteUint32(a.Value)
}

// SharedFile is one file entry as carried in SharedFileListResponse and
// FolderContentsResponse. The leading wire byte is always 1 and is not kept
// on the decoded struct (it carries no information in this protocol
// version).
type SharedFile struct {
	Filename   string
	Size       uint64
	Extension  string
	Attributes []FileAttribute
}

func readSharedFile(r *wire.Reader) SharedFile {
	r.ReadUint8() // always 1
	return SharedFile{
		Filename:   r.ReadString(),
		Size:       r.ReadUint64(),
		Extension:  r.ReadString(),
		Attributes: wire.ReadList(r, readFileAttribute),
	}
}

func writeSharedFile(w *wire.Writer, f SharedFile) {
	w.WriteUint8(1)
	w.WriteString(f.Filename)
	w.WriteUint64(f.Size)
	w.WriteString(f.Extension)
	wire.WriteList(w, f.Attributes, writeFileAttribute)
}

// SharedDirectory is a folder path with its files, as nested inside
// SharedFileListResponse/FolderContentsResponse.
type SharedDirectory struct {
	Path  string
	Files []SharedFile
}

func readSharedDirectory(r *wire.Reader) SharedDirectory {
	return SharedDirectory{Path: r.ReadString(), Files: wire.ReadList(r, readSharedFile)}
}

func writeSharedDirectory(w *wire.Writer, d SharedDirectory) {
	w.WriteString(d.Path)
	wire.WriteList(w, d.Files, writeSharedFile)
}

// SearchResultFile is one entry of a FileSearchResponse result list. Same
// wire shape as SharedFile but kept as a distinct type since the two never
// mix in practice and the spec's best-file selector (spec.md §4.5.2) only
// ever looks at this one.
type SearchResultFile struct {
	Filename   string
	Size       uint64
	Extension  string
	Attributes []FileAttribute
}

func readSearchResultFile(r *wire.Reader) SearchResultFile {
	r.ReadUint8()
	return SearchResultFile{
		Filename:   r.ReadString(),
		Size:       r.ReadUint64(),
		Extension:  r.ReadString(),
		Attributes: wire.ReadList(r, readFileAttribute),
	}
}

func writeSearchResultFile(w *wire.Writer, f SearchResultFile) {
	w.WriteUint8(1)
	w.WriteString(f.Filename)
	w.WriteUint64(f.Size)
	w.WriteString(f.Extension)
	wire.WriteList(w, f.Attributes, writeFileAttribute)
}

// PeerMessage is a message exchanged over a P (peer) connection.
type PeerMessage interface {
	PeerCode() PeerCode
}

// EncodePeerMessage serializes msg into a complete frame: u32 length, u32
// code, payload. The three compressed kinds (SharedFileListResponse,
// FolderContentsResponse, FileSearchResponse) zlib-compress their payload
// with no inner length prefix, matching spec.md §4.2.
func EncodePeerMessage(msg PeerMessage) ([]byte, error) {
	payload, err := encodePeerPayload(msg)
	if err != nil {
		return nil, err
	}
	frame := wire.NewWriter(8 + len(payload))
	frame.WriteUint32(uint32(4 + len(payload)))
	frame.WriteUint32(uint32(msg.PeerCode()))
	return append(frame.Bytes(), payload...), nil
}

type SharedFileListRequest struct{}

func (SharedFileListRequest) PeerCode() PeerCode { return CodeSharedFileListRequest }

type SharedFileListResponse struct {
	Directories        []SharedDirectory
	PrivateDirectories []SharedDirectory
}

func (SharedFileListResponse) PeerCode() PeerCode { return CodeSharedFileListResponse }

type FileSearchResponse struct {
	Username       string
	Token          uint32
	Results        []SearchResultFile
	SlotFree       bool
	AvgSpeed       uint32
	QueueLength    uint32
	PrivateResults []SearchResultFile
}

func (FileSearchResponse) PeerCode() PeerCode { return CodeFileSearchResponse }

type UserInfoRequest struct{}

func (UserInfoRequest) PeerCode() PeerCode { return CodeUserInfoRequest }

type UserInfoResponse struct {
	Description      string
	Picture          []byte
	HasPicture       bool
	TotalUploads     uint32
	QueueSize        uint32
	SlotsFree        bool
	UploadPermitted  UploadPermission
	HasUploadPermitted bool
}

func (UserInfoResponse) PeerCode() PeerCode { return CodeUserInfoResponse }

type FolderContentsRequest struct {
	Token  uint32
	Folder string
}

func (FolderContentsRequest) PeerCode() PeerCode { return CodeFolderContentsRequest }

type FolderContentsResponse struct {
	Token       uint32
	Folder      string
	Directories []SharedDirectory
}

func (FolderContentsResponse) PeerCode() PeerCode { return CodeFolderContentsResponse }

// TransferRequest opens a transfer in either direction. FileSize is present
// only for Upload (the direction this client never sends, since it never
// serves files, but must still decode when acting as the requester in the
// download handshake of spec.md §4.5.3).
type TransferRequest struct {
	Direction   TransferDirection
	Token       uint32
	Filename    string
	FileSize    uint64
	HasFileSize bool
}

func (TransferRequest) PeerCode() PeerCode { return CodeTransferRequest }

type TransferResponse struct {
	Token       uint32
	Allowed     bool
	FileSize    uint64
	HasFileSize bool
	Reason      TransferRejectionReason
	HasReason   bool
}

func (TransferResponse) PeerCode() PeerCode { return CodeTransferResponse }

type QueueUpload struct{ Filename string }

func (QueueUpload) PeerCode() PeerCode { return CodeQueueUpload }

type PlaceInQueueResponse struct {
	Filename string
	Place    uint32
}

func (PlaceInQueueResponse) PeerCode() PeerCode { return CodePlaceInQueueResponse }

type UploadFailed struct{ Filename string }

func (UploadFailed) PeerCode() PeerCode { return CodeUploadFailed }

type UploadDenied struct {
	Filename string
	Reason   TransferRejectionReason
}

func (UploadDenied) PeerCode() PeerCode { return CodeUploadDenied }

type PlaceInQueueRequest struct{ Filename string }

func (PlaceInQueueRequest) PeerCode() PeerCode { return CodePlaceInQueueRequest }

type UploadQueueNotification struct{}

func (UploadQueueNotification) PeerCode() PeerCode { return CodeUploadQueueNotification }

func encodePeerPayload(msg PeerMessage) ([]byte, error) {
	switch m := msg.(type) {
	case SharedFileListRequest, UserInfoRequest, UploadQueueNotification:
		return nil, nil
	case SharedFileListResponse:
		uncompressed := wire.NewWriter(256)
		wire.WriteList(uncompressed, m.Directories, writeSharedDirectory)
		uncompressed.WriteUint32(0) // unknown field
		wire.WriteList(uncompressed, m.PrivateDirectories, writeSharedDirectory)
		return wire.ZlibCompress(uncompressed.Bytes())
	case FileSearchResponse:
		uncompressed := wire.NewWriter(256)
		uncompressed.WriteString(m.Username)
		uncompressed.WriteUint32(m.Token)
		wire.WriteList(uncompressed, m.Results, writeSearchResultFile)
		uncompressed.WriteBool(m.SlotFree)
		uncompressed.WriteUint32(m.AvgSpeed)
		uncompressed.WriteUint32(m.QueueLength)
		uncompressed.WriteUint32(0) // unknown field
		wire.WriteList(uncompressed, m.PrivateResults, writeSearchResultFile)
		return wire.ZlibCompress(uncompressed.Bytes())
	case UserInfoResponse:
		w := wire.NewWriter(64)
		w.WriteString(m.Description)
		if m.HasPicture {
			w.WriteBool(true)
			w.WriteBytes(m.Picture)
		} else {
			w.WriteBool(false)
		}
		w.WriteUint32(m.TotalUploads)
		w.WriteUint32(m.QueueSize)
		w.WriteBool(m.SlotsFree)
		if m.HasUploadPermitted {
			w.WriteUint32(uint32(m.UploadPermitted))
		}
		return w.Bytes(), nil
	case FolderContentsRequest:
		w := wire.NewWriter(32)
		w.WriteUint32(m.Token)
		w.WriteString(m.Folder)
		return w.Bytes(), nil
	case FolderContentsResponse:
		uncompressed := wire.NewWriter(256)
		uncompressed.WriteUint32(m.Token)
		uncompressed.WriteString(m.Folder)
		wire.WriteList(uncompressed, m.Directories, writeSharedDirectory)
		return wire.ZlibCompress(uncompressed.Bytes())
	case TransferRequest:
		w := wire.NewWriter(32)
		w.WriteUint32(uint32(m.Direction))
		w.WriteUint32(m.Token)
		w.WriteString(m.Filename)
		if m.HasFileSize {
			w.WriteUint64(m.FileSize)
		}
		return w.Bytes(), nil
	case TransferResponse:
		w := wire.NewWriter(32)
		w.WriteUint32(m.Token)
		w.WriteBool(m.Allowed)
		if m.Allowed {
			if m.HasFileSize {
				w.WriteUint64(m.FileSize)
			}
		} else if m.HasReason {
			w.WriteString(string(m.Reason))
		}
		return w.Bytes(), nil
	case QueueUpload:
		w := wire.NewWriter(16)
		w.WriteString(m.Filename)
		return w.Bytes(), nil
	case PlaceInQueueResponse:
		w := wire.NewWriter(24)
		w.WriteString(m.Filename)
		w.WriteUint32(m.Place)
		return w.Bytes(), nil
	case UploadFailed:
		w := wire.NewWriter(16)
		w.WriteString(m.Filename)
		return w.Bytes(), nil
	case UploadDenied:
		w := wire.NewWriter(32)
		w.WriteString(m.Filename)
		w.WriteString(string(m.Reason))
		return w.Bytes(), nil
	case PlaceInQueueRequest:
		w := wire.NewWriter(16)
		w.WriteString(m.Filename)
		return w.Bytes(), nil
	default:
		return nil, wire.NewProtocolViolation("unknown peer message type for encoding")
	}
}

// DecodePeerMessage decodes a peer message payload (frame length and code
// already consumed) according to its code.
func DecodePeerMessage(code PeerCode, payload []byte) (PeerMessage, error) {
	switch code {
	case CodeSharedFileListRequest:
		return SharedFileListRequest{}, nil
	case CodeSharedFileListResponse:
		decompressed, err := wire.ZlibDecompress(payload)
		if err != nil {
			return nil, err
		}
		r := wire.NewReader(decompressed)
		dirs := wire.ReadList(r, readSharedDirectory)
		r.ReadUint32() // unknown field
		var priv []SharedDirectory
		if r.Err() == nil && r.Remaining() > 0 {
			priv = wire.ReadList(r, readSharedDirectory)
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return SharedFileListResponse{Directories: dirs, PrivateDirectories: priv}, nil
	case CodeFileSearchResponse:
		decompressed, err := wire.ZlibDecompress(payload)
		if err != nil {
			return nil, err
		}
		r := wire.NewReader(decompressed)
		username := r.ReadString()
		token := r.ReadUint32()
		results := wire.ReadList(r, readSearchResultFile)
		slotFree := r.ReadBool()
		avgSpeed := r.ReadUint32()
		queueLength := r.ReadUint32()
		r.ReadUint32() // unknown field
		var privResults []SearchResultFile
		if r.Err() == nil && r.Remaining() > 0 {
			privResults = wire.ReadList(r, readSearchResultFile)
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return FileSearchResponse{
			Username: username, Token: token, Results: results, SlotFree: slotFree,
			AvgSpeed: avgSpeed, QueueLength: queueLength, PrivateResults: privResults,
		}, nil
	case CodeUserInfoRequest:
		return UserInfoRequest{}, nil
	case CodeUserInfoResponse:
		r := wire.NewReader(payload)
		desc := r.ReadString()
		hasPic := r.ReadBool()
		resp := UserInfoResponse{Description: desc}
		if hasPic {
			resp.Picture = r.ReadBytes()
			resp.HasPicture = true
		}
		resp.TotalUploads = r.ReadUint32()
		resp.QueueSize = r.ReadUint32()
		resp.SlotsFree = r.ReadBool()
		if r.Err() == nil && r.Remaining() > 0 {
			resp.UploadPermitted = UploadPermission(r.ReadUint32())
			resp.HasUploadPermitted = true
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return resp, nil
	case CodeFolderContentsRequest:
		r := wire.NewReader(payload)
		req := FolderContentsRequest{Token: r.ReadUint32(), Folder: r.ReadString()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return req, nil
	case CodeFolderContentsResponse:
		decompressed, err := wire.ZlibDecompress(payload)
		if err != nil {
			return nil, err
		}
		r := wire.NewReader(decompressed)
		resp := FolderContentsResponse{
			Token:  r.ReadUint32(),
			Folder: r.ReadString(),
		}
		resp.Directories = wire.ReadList(r, readSharedDirectory)
		if r.Err() != nil {
			return nil, r.Err()
		}
		return resp, nil
	case CodeTransferRequest:
		r := wire.NewReader(payload)
		direction, err := ParseTransferDirection(r.ReadUint32())
		if err != nil {
			return nil, err
		}
		token := r.ReadUint32()
		filename := r.ReadString()
		req := TransferRequest{Direction: direction, Token: token, Filename: filename}
		if direction == DirectionUpload && r.Err() == nil && r.Remaining() > 0 {
			req.FileSize = r.ReadUint64()
			req.HasFileSize = true
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return req, nil
	case CodeTransferResponse:
		r := wire.NewReader(payload)
		token := r.ReadUint32()
		allowed := r.ReadBool()
		resp := TransferResponse{Token: token, Allowed: allowed}
		if allowed {
			if r.Err() == nil && r.Remaining() > 0 {
				resp.FileSize = r.ReadUint64()
				resp.HasFileSize = true
			}
		} else if r.Err() == nil && r.Remaining() > 0 {
			resp.Reason = TransferRejectionReason(r.ReadString())
			resp.HasReason = true
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return resp, nil
	case CodeQueueUpload:
		r := wire.NewReader(payload)
		req := QueueUpload{Filename: r.ReadString()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return req, nil
	case CodePlaceInQueueResponse:
		r := wire.NewReader(payload)
		resp := PlaceInQueueResponse{Filename: r.ReadString(), Place: r.ReadUint32()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return resp, nil
	case CodeUploadFailed:
		r := wire.NewReader(payload)
		msg := UploadFailed{Filename: r.ReadString()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodeUploadDenied:
		r := wire.NewReader(payload)
		msg := UploadDenied{Filename: r.ReadString(), Reason: TransferRejectionReason(r.ReadString())}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return msg, nil
	case CodePlaceInQueueRequest:
		r := wire.NewReader(payload)
		req := PlaceInQueueRequest{Filename: r.ReadString()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		return req, nil
	case CodeUploadQueueNotification:
		return UploadQueueNotification{}, nil
	default:
		return nil, wire.NewInvalidCode("peer", uint32(code))
	}
}
