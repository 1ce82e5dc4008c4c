package model

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/nyatla/slsk-go/lib/protocol"
)

func TestPickBestFilePrefersFlacAndBitrate(t *testing.T) {
	results := []AccumulatedResult{
		{Username: "alice", File: protocol.SearchResultFile{Filename: "song.mp3", Attributes: []protocol.FileAttribute{{Type: protocol.AttrBitrate, Value: 128}}}},
		{Username: "bob", File: protocol.SearchResultFile{Filename: "song.flac"}},
		{Username: "carol", File: protocol.SearchResultFile{Filename: "song.mp3", Attributes: []protocol.FileAttribute{{Type: protocol.AttrBitrate, Value: 320}}}},
	}
	best, ok := PickBestFile(results)
	if !ok {
		t.Fatal("expected a match")
	}
	if best.Username != "bob" {
		t.Fatalf("best = %s, want bob (flac)", best.Username)
	}
}

func TestPickBestFileIgnoresNonAudio(t *testing.T) {
	results := []AccumulatedResult{
		{Username: "alice", File: protocol.SearchResultFile{Filename: "readme.txt"}},
	}
	if _, ok := PickBestFile(results); ok {
		t.Fatal("expected no match for non-audio files")
	}
}

func TestPickBestFileDedupesByUsername(t *testing.T) {
	results := []AccumulatedResult{
		{Username: "alice", File: protocol.SearchResultFile{Filename: "low.mp3", Attributes: []protocol.FileAttribute{{Type: protocol.AttrBitrate, Value: 128}}}},
		{Username: "alice", File: protocol.SearchResultFile{Filename: "high.mp3", Attributes: []protocol.FileAttribute{{Type: protocol.AttrBitrate, Value: 320}}}},
	}
	best, ok := PickBestFile(results)
	if !ok || best.File.Filename != "low.mp3" {
		t.Fatalf("expected first occurrence kept (low.mp3), got %+v, %v", best, ok)
	}
}

func TestPickTopNForRetry(t *testing.T) {
	results := []AccumulatedResult{
		{Username: "a", File: protocol.SearchResultFile{Filename: "x.flac"}},
		{Username: "b", File: protocol.SearchResultFile{Filename: "y.mp3", Attributes: []protocol.FileAttribute{{Type: protocol.AttrBitrate, Value: 320}}}},
		{Username: "c", File: protocol.SearchResultFile{Filename: "z.mp3"}},
	}
	top, ok := PickTopN(results, 2)
	if !ok || len(top) != 2 {
		t.Fatalf("PickTopN = %+v, %v, want 2 results", top, ok)
	}
	if top[0].Username != "a" {
		t.Fatalf("top[0] = %s, want a (flac)", top[0].Username)
	}
}

func TestSearchTxnArmsOnlyOnce(t *testing.T) {
	txn := NewSearchTxn(1, "query", SearchInteractive, "")
	first := txn.AddResults("alice", []protocol.SearchResultFile{{Filename: "a.mp3"}})
	second := txn.AddResults("bob", []protocol.SearchResultFile{{Filename: "b.mp3"}})
	if !first {
		t.Error("expected first batch to arm the timer")
	}
	if second {
		t.Error("expected second batch to not re-arm the timer")
	}
	if got := len(txn.Results()); got != 2 {
		t.Fatalf("Results() len = %d, want 2", got)
	}
}

func TestSearchRegistryTokenMonotonic(t *testing.T) {
	r := NewSearchRegistry()
	a := r.NextToken()
	b := r.NextToken()
	if b <= a {
		t.Fatalf("tokens not monotonic: %d, %d", a, b)
	}
}

func TestDownloadCompletionTolerance(t *testing.T) {
	d := NewDownload(1, "alice", "song.mp3", 1000)
	d.Downloaded = 949
	if d.IsComplete() {
		t.Fatal("949/1000 should be below the 95% tolerance")
	}
	d.Downloaded = 950
	if !d.IsComplete() {
		t.Fatal("950/1000 should meet the 95% tolerance")
	}
}

func TestDownloadRetryThreshold(t *testing.T) {
	d := NewDownload(1, "alice", "song.mp3", 1000)
	for i := 0; i < 3; i++ {
		d.RecordAttempt()
		if d.ShouldRetryWithAlternative() {
			t.Fatalf("attempt %d: should not yet retry with alternative", d.Attempt())
		}
	}
	d.RecordAttempt()
	if !d.ShouldRetryWithAlternative() {
		t.Fatal("expected 4th attempt to trigger alternative-source retry")
	}
}

type fakeDeadlineReader struct {
	r          io.Reader
	deadlineAt time.Time
}

func (f *fakeDeadlineReader) Read(p []byte) (int, error)       { return f.r.Read(p) }
func (f *fakeDeadlineReader) SetReadDeadline(t time.Time) error { f.deadlineAt = t; return nil }

func TestStreamToFileReportsDownloadedBytes(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("x"), 100)
	r := &fakeDeadlineReader{r: bytes.NewReader(data)}
	throttle := NewProgressThrottle()
	n, err := StreamToFile(r, dir, "song.mp3", uint64(len(data)), throttle, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != uint64(len(data)) {
		t.Fatalf("downloaded = %d, want %d", n, len(data))
	}
}

type errDeadlineReader struct{ err error }

func (e *errDeadlineReader) Read(p []byte) (int, error)       { return 0, e.err }
func (e *errDeadlineReader) SetReadDeadline(t time.Time) error { return nil }

func TestStreamToFilePropagatesError(t *testing.T) {
	dir := t.TempDir()
	r := &errDeadlineReader{err: errors.New("connection reset")}
	_, err := StreamToFile(r, dir, "song.mp3", 100, NewProgressThrottle(), nil)
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestRoomSetJoinLeaveUsers(t *testing.T) {
	rs := NewRoomSet()
	rs.Join("lobby", []string{"alice"}, "alice")
	rs.UserJoined("lobby", "bob")
	room, ok := rs.Get("lobby")
	if !ok || len(room.Users) != 2 {
		t.Fatalf("room = %+v, %v, want 2 users", room, ok)
	}
	rs.UserLeft("lobby", "alice")
	room, _ = rs.Get("lobby")
	if len(room.Users) != 1 || room.Users[0] != "bob" {
		t.Fatalf("users after leave = %v, want [bob]", room.Users)
	}
}

func TestWatchlistStatusUpdates(t *testing.T) {
	w := NewWatchlist()
	w.Watch("alice")
	w.UpdateStatus("alice", 2)
	status, ok := w.Status("alice")
	if !ok || status != 2 {
		t.Fatalf("status = %d, %v, want 2, true", status, ok)
	}
	w.Unwatch("alice")
	if _, ok := w.Status("alice"); ok {
		t.Fatal("expected unwatched user to have no status")
	}
}

func TestPrivilegedUsersReplace(t *testing.T) {
	p := NewPrivilegedUsers()
	p.Replace([]string{"alice", "bob"})
	if !p.IsPrivileged("alice") || p.IsPrivileged("carol") {
		t.Fatal("unexpected privilege state")
	}
	p.Replace([]string{"carol"})
	if p.IsPrivileged("alice") || !p.IsPrivileged("carol") {
		t.Fatal("expected replace to discard old set")
	}
}
