package protocol

import (
	"testing"

	"github.com/nyatla/slsk-go/lib/wire"
)

func decodeServerFrame(t *testing.T, frame []byte) ServerResponse {
	t.Helper()
	total, ok := wire.MessageSize(frame)
	if !ok || total != len(frame) {
		t.Fatalf("MessageSize(%v) = (%d, %v), want (%d, true)", frame, total, ok, len(frame))
	}
	r := wire.NewReader(frame)
	r.ReadUint32() // frame length
	code := ServerCode(r.ReadUint32())
	resp, err := DecodeServerResponse(code, frame[8:])
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestLoginRequestRoundtrip(t *testing.T) {
	frame := EncodeServerRequest(LoginRequest{Username: "alice", Password: "hunter2", Version: ClientVersion, MinorVersion: 1})
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := r.ReadUint32()
	if ServerCode(code) != CodeLogin {
		t.Fatalf("code = %d, want %d", code, CodeLogin)
	}
	username := r.ReadString()
	password := r.ReadString()
	version := r.ReadUint32()
	hash := r.ReadString()
	minor := r.ReadUint32()
	if r.Err() != nil {
		t.Fatal(r.Err())
	}
	if username != "alice" || password != "hunter2" || version != ClientVersion || minor != 1 {
		t.Fatalf("decoded fields mismatch: %q %q %d %d", username, password, version, minor)
	}
	if want := wire.LoginHash("alice", "hunter2"); hash != want {
		t.Fatalf("hash = %q, want %q", hash, want)
	}
}

func TestLoginSuccessDecode(t *testing.T) {
	payload := wire.NewWriter(0)
	payload.WriteBool(true)
	payload.WriteString("Welcome")
	payload.WriteIPv4([4]byte{1, 2, 3, 4})
	payload.WriteString("abc123")
	payload.WriteBool(true)

	frame := wire.NewWriter(0)
	frame.WriteUint32(uint32(4 + payload.Len()))
	frame.WriteUint32(uint32(CodeLogin))
	full := append(frame.Bytes(), payload.Bytes()...)

	resp := decodeServerFrame(t, full)
	ls, ok := resp.(ServerLoginSuccess)
	if !ok {
		t.Fatalf("got %T, want ServerLoginSuccess", resp)
	}
	if ls.Greet != "Welcome" || ls.OwnIP != [4]byte{1, 2, 3, 4} || !ls.IsSupporter {
		t.Fatalf("unexpected decode: %+v", ls)
	}
}

func TestGetPeerAddressRoundtrip(t *testing.T) {
	payload := wire.NewWriter(0)
	payload.WriteString("bob")
	payload.WriteIPv4([4]byte{10, 0, 0, 1})
	payload.WriteUint32(2234)
	payload.WriteUint32(uint32(ObfuscationNone))
	payload.WriteUint16(0)

	resp, err := DecodeServerResponse(CodeGetPeerAddress, payload.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	got := resp.(ServerGetPeerAddress)
	if got.Username != "bob" || got.Port != 2234 || got.IP != [4]byte{10, 0, 0, 1} {
		t.Fatalf("unexpected decode: %+v", got)
	}
}

func TestUnknownServerCodeDecodesAsUnknown(t *testing.T) {
	resp, err := DecodeServerResponse(ServerCode(999999), []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	unk, ok := resp.(ServerUnknown)
	if !ok {
		t.Fatalf("got %T, want ServerUnknown", resp)
	}
	if unk.Code != ServerCode(999999) || len(unk.Payload) != 3 {
		t.Fatalf("unexpected decode: %+v", unk)
	}
}

func TestPeerQueueUploadRoundtrip(t *testing.T) {
	frame, err := EncodePeerMessage(QueueUpload{Filename: "Music/test.mp3"})
	if err != nil {
		t.Fatal(err)
	}
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := PeerCode(r.ReadUint32())
	msg, err := DecodePeerMessage(code, frame[8:])
	if err != nil {
		t.Fatal(err)
	}
	qu, ok := msg.(QueueUpload)
	if !ok || qu.Filename != "Music/test.mp3" {
		t.Fatalf("got %#v, want QueueUpload{Music/test.mp3}", msg)
	}
}

func TestPeerTransferRequestRoundtrip(t *testing.T) {
	orig := TransferRequest{Direction: DirectionUpload, Token: 12345, Filename: "test.mp3", FileSize: 1024, HasFileSize: true}
	frame, err := EncodePeerMessage(orig)
	if err != nil {
		t.Fatal(err)
	}
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := PeerCode(r.ReadUint32())
	msg, err := DecodePeerMessage(code, frame[8:])
	if err != nil {
		t.Fatal(err)
	}
	got := msg.(TransferRequest)
	if got != orig {
		t.Fatalf("got %+v, want %+v", got, orig)
	}
}

func TestSharedFileListResponseZlibRoundtrip(t *testing.T) {
	orig := SharedFileListResponse{
		Directories: []SharedDirectory{
			{Path: "Music", Files: []SharedFile{
				{Filename: "a.flac", Size: 123456, Extension: "flac", Attributes: []FileAttribute{{Type: AttrBitrate, Value: 1411}}},
			}},
		},
	}
	frame, err := EncodePeerMessage(orig)
	if err != nil {
		t.Fatal(err)
	}
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := PeerCode(r.ReadUint32())
	msg, err := DecodePeerMessage(code, frame[8:])
	if err != nil {
		t.Fatal(err)
	}
	got := msg.(SharedFileListResponse)
	if len(got.Directories) != 1 || got.Directories[0].Path != "Music" || len(got.Directories[0].Files) != 1 {
		t.Fatalf("unexpected decode: %+v", got)
	}
	if got.Directories[0].Files[0].Filename != "a.flac" || got.Directories[0].Files[0].Size != 123456 {
		t.Fatalf("unexpected file: %+v", got.Directories[0].Files[0])
	}
}

func TestPeerInitRoundtrip(t *testing.T) {
	orig := PeerInit{Username: "testuser", ConnectionType: ConnPeer, Token: 0}
	frame := EncodePeerInitMessage(orig)
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := PeerInitCode(r.ReadUint8())
	msg, err := DecodePeerInitMessage(code, frame[5:])
	if err != nil {
		t.Fatal(err)
	}
	if msg != orig {
		t.Fatalf("got %+v, want %+v", msg, orig)
	}
}

func TestPierceFirewallRoundtrip(t *testing.T) {
	orig := PierceFirewall{Token: 12345}
	frame := EncodePeerInitMessage(orig)
	total, ok := wire.MessageSize(frame)
	if !ok || total != len(frame) {
		t.Fatalf("MessageSize mismatch: %d/%v vs %d", total, ok, len(frame))
	}
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := PeerInitCode(r.ReadUint8())
	msg, err := DecodePeerInitMessage(code, frame[5:])
	if err != nil {
		t.Fatal(err)
	}
	if msg != orig {
		t.Fatalf("got %+v, want %+v", msg, orig)
	}
}

func TestDistributedSearchRoundtrip(t *testing.T) {
	orig := DistributedSearch{Unknown: 0, Username: "testuser", Token: 12345, Query: "test query"}
	frame := EncodeDistributedMessage(orig)
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := DistributedCode(r.ReadUint8())
	msg, err := DecodeDistributedMessage(code, frame[5:])
	if err != nil {
		t.Fatal(err)
	}
	if msg != orig {
		t.Fatalf("got %+v, want %+v", msg, orig)
	}
}

func TestDistributedBranchLevelRoundtrip(t *testing.T) {
	orig := DistributedBranchLevel{Level: 5}
	frame := EncodeDistributedMessage(orig)
	r := wire.NewReader(frame)
	r.ReadUint32()
	code := DistributedCode(r.ReadUint8())
	msg, err := DecodeDistributedMessage(code, frame[5:])
	if err != nil {
		t.Fatal(err)
	}
	if msg != orig {
		t.Fatalf("got %+v, want %+v", msg, orig)
	}
}

func TestFileTransferInitRoundtrip(t *testing.T) {
	buf := EncodeFileTransferInit(42, 1024)
	token, offset, err := DecodeFileTransferInit(buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != 42 || offset != 1024 {
		t.Fatalf("got (%d, %d), want (42, 1024)", token, offset)
	}
}
