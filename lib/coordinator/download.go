package coordinator

import (
	"fmt"
	"time"

	"github.com/nyatla/slsk-go/lib/connections"
	"github.com/nyatla/slsk-go/lib/model"
	"github.com/nyatla/slsk-go/lib/protocol"
)

// Download drives one file transfer end to end, spec.md §4.5.2: open a
// P-kind channel, queue the request, wait through any remote queueing for
// the peer's TransferRequest, accept it, close the P channel, reopen as an
// F-kind channel on the P channel's token after ReopenDelay, send the
// unframed transfer-init handshake carrying the transfer token, and stream
// the bytes to disk. onProgress is called at the
// throttled rate model.ProgressThrottle allows; it may be nil.
func (c *Coordinator) Download(username, filename string, expectedSize uint64, onProgress func(downloaded uint64)) (*model.Download, error) {
	d := model.NewDownload(c.nextToken(), username, filename, expectedSize)

	pch, err := c.OpenChannel(username, protocol.ConnPeer, d.ID)
	if err != nil {
		d.Fail(err.Error())
		return d, err
	}
	if err := pch.WritePeerMessage(protocol.QueueUpload{Filename: filename}); err != nil {
		pch.Close()
		d.Fail(err.Error())
		return d, err
	}

	transferToken, err := c.awaitTransferRequest(pch, d)
	if err != nil {
		pch.Close()
		d.Fail(err.Error())
		return d, err
	}

	if err := pch.WritePeerMessage(protocol.TransferResponse{
		Token: transferToken, Allowed: true, FileSize: d.ExpectedSize, HasFileSize: true,
	}); err != nil {
		pch.Close()
		d.Fail(err.Error())
		return d, err
	}
	pch.Close()
	time.Sleep(model.ReopenDelay())

	fch, err := c.OpenChannel(username, protocol.ConnFile, d.ID)
	if err != nil {
		d.Fail(err.Error())
		return d, err
	}
	defer fch.Close()

	if _, err := fch.Conn.Write(protocol.EncodeFileTransferInit(transferToken, 0)); err != nil {
		d.Fail(err.Error())
		return d, err
	}
	fch.MarkDialog()

	throttle := model.NewProgressThrottle()
	downloaded, streamErr := model.StreamToFile(fch.Conn, c.cfg.DownloadDir, filename, d.ExpectedSize, throttle, onProgress)
	d.Downloaded = downloaded
	if streamErr != nil {
		d.Fail(streamErr.Error())
		return d, streamErr
	}
	if d.IsComplete() {
		d.State = model.DownloadComplete
	} else {
		d.Fail(fmt.Sprintf("incomplete: received %d of %d bytes", downloaded, d.ExpectedSize))
	}
	return d, nil
}

// awaitTransferRequest reads peer-protocol messages on the P channel until
// the peer either opens the transfer (TransferRequest) or refuses it
// (UploadDenied/UploadFailed), tracking PlaceInQueueResponse updates along
// the way and resetting the wait deadline each time the queue position
// changes, since that is evidence the peer is still actively servicing the
// request rather than having gone silent.
func (c *Coordinator) awaitTransferRequest(ch *connections.Channel, d *model.Download) (uint32, error) {
	deadline := time.Now().Add(queueWaitTimeout)
	for time.Now().Before(deadline) {
		msg, err := ch.ReadPeerMessage()
		if err != nil {
			return 0, err
		}
		switch m := msg.(type) {
		case protocol.PlaceInQueueResponse:
			d.OnQueuePosition(m.Place)
			deadline = time.Now().Add(queueWaitTimeout)
		case protocol.TransferRequest:
			if m.Direction != protocol.DirectionUpload {
				continue
			}
			d.OnTransferRequest(m.Token, m.FileSize, m.HasFileSize)
			return m.Token, nil
		case protocol.UploadDenied:
			return 0, fmt.Errorf("coordinator: upload denied: %s", m.Reason)
		case protocol.UploadFailed:
			return 0, fmt.Errorf("coordinator: upload failed for %s", m.Filename)
		default:
			l.Debugf("ignoring %T while awaiting transfer request from %s", msg, d.Username)
		}
	}
	return 0, fmt.Errorf("coordinator: timed out waiting for transfer request from %s", d.Username)
}
