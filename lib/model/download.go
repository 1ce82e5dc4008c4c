package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// DownloadState is the per-download state machine, spec.md §4.5.2.
type DownloadState int

const (
	DownloadQueuing DownloadState = iota
	DownloadAwaitingTransfer
	DownloadQueuedRemote
	DownloadTransferring
	DownloadComplete
	DownloadFailed
)

func (s DownloadState) String() string {
	switch s {
	case DownloadQueuing:
		return "Queuing"
	case DownloadAwaitingTransfer:
		return "AwaitingTransfer"
	case DownloadQueuedRemote:
		return "QueuedRemote"
	case DownloadTransferring:
		return "Transferring"
	case DownloadComplete:
		return "Complete"
	case DownloadFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// reopenGap is the pause observed to be necessary between closing the
// peer-kind channel and dialing the File-kind channel, spec.md §4.5.2 step 4.
const reopenGap = 100 * time.Millisecond

// completionTolerance: a download is considered successful once this
// fraction of the expected size has been received, since peers sometimes
// close the stream slightly short, spec.md §4.5.2 step 6.
const completionTolerance = 0.95

// readStallTimeout is the maximum gap between successive reads before a
// transfer is declared fatally stalled.
const readStallTimeout = 30 * time.Second

// Download tracks one file transfer from a single remote user.
type Download struct {
	ID          uint32
	Username    string
	Filename    string
	ExpectedSize uint64
	Token       uint32
	QueuePlace  uint32

	State      DownloadState
	Downloaded uint64
	FailReason string

	attempt int
}

// NewDownload starts a download in the Queuing state.
func NewDownload(id uint32, username, filename string, expectedSize uint64) *Download {
	return &Download{ID: id, Username: username, Filename: filename, ExpectedSize: expectedSize, State: DownloadQueuing}
}

// Attempt returns how many times this download has been (re)tried, used by
// the retry-with-alternative-source policy (spec.md §7: "on a download's
// 4th attempt").
func (d *Download) Attempt() int { return d.attempt }

// RecordAttempt increments the attempt counter and resets transient state
// for a retry.
func (d *Download) RecordAttempt() {
	d.attempt++
	d.State = DownloadQueuing
	d.Downloaded = 0
	d.FailReason = ""
}

// ShouldRetryWithAlternative reports whether this download has reached the
// attempt threshold at which the coordinator should search for a different
// source rather than retrying the same peer, per spec.md §7.
func (d *Download) ShouldRetryWithAlternative() bool {
	return d.attempt >= 4
}

// Fail transitions the download to Failed with a reason.
func (d *Download) Fail(reason string) {
	d.State = DownloadFailed
	d.FailReason = reason
}

// OnTransferRequest handles the peer's TransferRequest during negotiation,
// recording the transfer token and optional size, spec.md §4.5.2 step 3.
func (d *Download) OnTransferRequest(token uint32, size uint64, hasSize bool) {
	d.Token = token
	if hasSize {
		d.ExpectedSize = size
	}
	d.State = DownloadAwaitingTransfer
}

// OnQueuePosition records a PlaceInQueueResponse while waiting.
func (d *Download) OnQueuePosition(place uint32) {
	d.QueuePlace = place
	d.State = DownloadQueuedRemote
}

// ReopenDelay returns the pause the caller must wait between closing the
// peer-kind channel and dialing the File-kind channel.
func ReopenDelay() time.Duration { return reopenGap }

// IsComplete reports whether downloaded bytes meet the completion
// tolerance against the expected size.
func (d *Download) IsComplete() bool {
	if d.ExpectedSize == 0 {
		return true
	}
	return float64(d.Downloaded) >= float64(d.ExpectedSize)*completionTolerance
}

// ProgressThrottle gates DownloadProgress events to at most 10 Hz (every
// 100ms), reusing golang.org/x/time/rate the way the teacher already
// depends on it, repurposed here from connection scheduling to transfer
// progress throttling.
type ProgressThrottle struct {
	limiter *rate.Limiter
}

func NewProgressThrottle() *ProgressThrottle {
	return &ProgressThrottle{limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1)}
}

// Allow reports whether a progress event may be emitted right now.
func (p *ProgressThrottle) Allow() bool {
	return p.limiter.Allow()
}

// deadlineReader is satisfied by net.Conn; StreamToFile uses it to enforce
// readStallTimeout without an extra goroutine per read.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// StreamToFile copies the raw byte stream from r into downloads/<basename>,
// calling onProgress at most as often as throttle allows, and enforcing
// readStallTimeout between reads. It returns once expectedSize bytes have
// arrived, the stream ends, or a stall/IO error occurs.
func StreamToFile(r deadlineReader, downloadDir, filename string, expectedSize uint64, throttle *ProgressThrottle, onProgress func(downloaded uint64)) (downloaded uint64, err error) {
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return 0, err
	}
	base := filepath.Base(filename)
	f, err := os.Create(filepath.Join(downloadDir, base))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 65536)
	for {
		if err := r.SetReadDeadline(time.Now().Add(readStallTimeout)); err != nil {
			return downloaded, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return downloaded, werr
			}
			downloaded += uint64(n)
			if throttle.Allow() && onProgress != nil {
				onProgress(downloaded)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return downloaded, nil
			}
			if ne, ok := rerr.(interface{ Timeout() bool }); ok && ne.Timeout() {
				return downloaded, fmt.Errorf("model: download stalled for %s", readStallTimeout)
			}
			return downloaded, rerr
		}
		if expectedSize > 0 && downloaded >= expectedSize {
			return downloaded, nil
		}
	}
}
