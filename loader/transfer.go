package loader

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-sahara/images"
	"github.com/moffa90/go-sahara/protocol"
)

// TransferStatus is the outcome of one image transfer.
type TransferStatus int

const (
	// MoreImages means the modem will ask for another image
	MoreImages TransferStatus = iota

	// Completed means every image has been transferred
	Completed
)

func (s TransferStatus) String() string {
	if s == Completed {
		return "completed"
	}
	return "more images"
}

// TransferImages transfers images until the modem reports that all of them
// were received.
//
// Example:
//
//	if err := l.TransferImages(ctx); err != nil {
//	    log.Fatal(err)
//	}
func (l *Loader) TransferImages(ctx context.Context) error {
	for done := 0; ; done++ {
		status, err := l.transferImage(ctx, done)
		if err != nil {
			return err
		}
		if status == Completed {
			l.logInfo("all images transferred", "images", done+1)
			return nil
		}
	}
}

// TransferImage runs the SAHARA exchange for a single image:
//  1. Hello handshake in transfer mode
//  2. Serve data requests until a data end request arrives
//  3. Check the data end status and answer with a data end response
//  4. Read the data end ack and report whether more images follow
//
// Any short read or write aborts the transfer; the modem cannot resend a
// request once the framing is lost.
func (l *Loader) TransferImage(ctx context.Context) (TransferStatus, error) {
	return l.transferImage(ctx, 0)
}

func (l *Loader) transferImage(ctx context.Context, imagesDone int) (TransferStatus, error) {
	if err := l.Handshake(ctx, protocol.ModeTransferPending); err != nil {
		return MoreImages, err
	}

	startTime := time.Now()
	progress := Progress{Phase: PhaseTransfer, ImagesDone: imagesDone}

	for {
		if err := ctx.Err(); err != nil {
			return MoreImages, inPhase(PhaseTransfer, errors.WithStack(err))
		}

		hdr, err := l.readHeader("data request header")
		if err != nil {
			return MoreImages, inPhase(PhaseTransfer, err)
		}

		if hdr.Command == protocol.CmdDataEndRequest {
			break
		}
		if hdr.Command != protocol.CmdDataRequest {
			return MoreImages, inPhase(PhaseTransfer, &protocol.UnexpectedCommandError{
				Want:       []uint32{protocol.CmdDataRequest, protocol.CmdDataEndRequest},
				Got:        hdr.Command,
				PacketSize: hdr.PacketSize,
			})
		}

		req, err := l.sendData()
		if err != nil {
			return MoreImages, inPhase(PhaseTransfer, err)
		}

		progress.ImageID = req.ImageID
		progress.Offset = req.Offset
		progress.Bytes += int(req.Size)
		progress.ElapsedTime = time.Since(startTime)
		l.reportProgress(progress)
	}

	body, err := l.readFull("data end request", protocol.DataEndRequestSize)
	if err != nil {
		return MoreImages, inPhase(PhaseTransfer, err)
	}
	end, err := protocol.ParseDataEndRequest(body)
	if err != nil {
		return MoreImages, inPhase(PhaseTransfer, err)
	}
	if end.Status != 0 {
		return MoreImages, inPhase(PhaseTransfer, &PeerStatusError{
			Message: "data end request",
			ImageID: end.ImageID,
			Status:  end.Status,
		})
	}

	progress.ImageID = end.ImageID
	progress.Done = true
	progress.ElapsedTime = time.Since(startTime)
	l.reportProgress(progress)
	l.logInfo("image transfer complete",
		"image_id", end.ImageID,
		"bytes", progress.Bytes,
		"elapsed", progress.ElapsedTime.String(),
	)

	if err := l.writeFull("data end response", protocol.EncodeControl(protocol.CmdDataEndResponse)); err != nil {
		return MoreImages, inPhase(PhaseTransfer, err)
	}

	b, err := l.readFull("data end ack", protocol.DataEndAckSize)
	if err != nil {
		return MoreImages, inPhase(PhaseTransfer, err)
	}
	ack, err := protocol.ParseDataEndAck(b)
	if err != nil {
		return MoreImages, inPhase(PhaseTransfer, err)
	}
	if ack.Header.Command != protocol.CmdDataEndAck {
		return MoreImages, inPhase(PhaseTransfer, &protocol.UnexpectedCommandError{
			Want:       []uint32{protocol.CmdDataEndAck},
			Got:        ack.Header.Command,
			PacketSize: ack.Header.PacketSize,
		})
	}

	switch ack.Status {
	case protocol.AckMoreImages:
		return MoreImages, nil
	case protocol.AckAllImages:
		return Completed, nil
	default:
		return MoreImages, inPhase(PhaseTransfer, &PeerStatusError{
			Message: "data end ack",
			ImageID: end.ImageID,
			Status:  ack.Status,
		})
	}
}

// sendData serves one data request whose header was already consumed.
// The size limit is checked before the image is touched.
func (l *Loader) sendData() (protocol.DataRequest, error) {
	body, err := l.readFull("data request", protocol.DataRequestSize)
	if err != nil {
		return protocol.DataRequest{}, err
	}
	req, err := protocol.ParseDataRequest(body)
	if err != nil {
		return protocol.DataRequest{}, err
	}

	if err := protocol.CheckSize(req.Size); err != nil {
		return req, err
	}

	data, err := l.config.Images.ReadImage(req.ImageID, req.Offset, req.Size)
	if err != nil {
		var unknown *images.UnknownImageError
		if errors.As(err, &unknown) {
			return req, err
		}
		return req, &LocalIOError{Op: "read image", Err: err}
	}

	l.logDebug("sending data",
		"image_id", req.ImageID,
		"offset", req.Offset,
		"size", req.Size,
	)

	if err := l.writeFull("image data", data); err != nil {
		return req, err
	}

	return req, nil
}
