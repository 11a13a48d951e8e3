package loader

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-sahara/protocol"
)

// DebugSession carries the state that spans ServiceMemoryDebug calls.
// Use one session per memory debug channel.
type DebugSession struct {
	hellos int
	synced int
}

// Hellos returns the number of hello requests seen in this session.
func (s *DebugSession) Hellos() int {
	return s.hellos
}

// Synced returns the number of EFS regions successfully handed to the sink.
func (s *DebugSession) Synced() int {
	return s.synced
}

// ServiceMemoryDebug handles one request from a booted modem in memory debug mode.
// Call it in a loop for as long as the modem runs.
//
// The second hello of a session is read and validated but not answered; the
// modem loses track of the conversation if it is.
func (l *Loader) ServiceMemoryDebug(ctx context.Context, s *DebugSession) error {
	if err := ctx.Err(); err != nil {
		return inPhase(PhaseMemoryDebug, errors.WithStack(err))
	}

	hdr, err := l.readHeader("command header")
	if err != nil {
		return inPhase(PhaseMemoryDebug, err)
	}

	switch hdr.Command {
	case protocol.CmdHelloRequest:
		s.hellos++
		if s.hellos == 2 {
			if _, err := l.readHello(hdr, protocol.ModeMemoryDebug); err != nil {
				return inPhase(PhaseHello, err)
			}
			l.logDebug("received hello, not answering", "hellos", s.hellos)
			return nil
		}
		if err := l.answerHello(hdr, protocol.ModeMemoryDebug); err != nil {
			return inPhase(PhaseHello, err)
		}
		l.logInfo("answered memory debug hello", "hellos", s.hellos)
		return nil

	case protocol.CmdMemoryDebugRequest:
		l.logDebug("received memory debug request")
		delivered, err := l.syncEFS(ctx)
		if delivered {
			s.synced++
		}
		if err != nil {
			return err
		}
		l.logInfo("finished EFS sync", "synced", s.synced)
		return nil

	default:
		return inPhase(PhaseMemoryDebug, &protocol.UnexpectedCommandError{
			Got:        hdr.Command,
			PacketSize: hdr.PacketSize,
		})
	}
}

// syncEFS services a memory debug request whose header was already consumed.
//
// The memory table returned by the modem decides which region is read; its
// filename must be a sync token before anything else happens. Once the table
// was received, the reset exchange is always performed so that the modem is
// not left mid-transaction, even when the sync itself failed.
// delivered reports whether the region was fetched, even if the reset failed.
func (l *Loader) syncEFS(ctx context.Context) (delivered bool, err error) {
	body, err := l.readFull("memory debug request", protocol.MemoryDebugRequestSize)
	if err != nil {
		return false, inPhase(PhaseEFSSync, err)
	}
	dbg, err := protocol.ParseMemoryDebugRequest(body)
	if err != nil {
		return false, inPhase(PhaseEFSSync, err)
	}

	req := protocol.BuildMemoryReadRequest(dbg.Address, dbg.Size)
	if err := l.writeFull("memory read request", protocol.EncodeMemoryReadRequest(req)); err != nil {
		return false, inPhase(PhaseEFSSync, err)
	}

	b, err := l.readFull("memory table", protocol.MemoryTableSize)
	if err != nil {
		return false, inPhase(PhaseEFSSync, err)
	}
	table, err := protocol.ParseMemoryTable(b)
	if err != nil {
		return false, inPhase(PhaseEFSSync, err)
	}

	l.logInfo("modem requested file",
		"file", protocol.FilenameString(table.Filename),
		"address", table.Address,
		"size", table.Size,
	)

	syncErr := l.fetchTable(ctx, table)
	resetErr := l.reset()

	if syncErr != nil {
		if resetErr != nil {
			l.logError("reset after failed EFS sync", "error", resetErr)
		}
		return false, inPhase(PhaseEFSSync, syncErr)
	}
	return true, inPhase(PhaseReset, resetErr)
}

// fetchTable validates a memory table, reads its region and hands it to the sink.
func (l *Loader) fetchTable(ctx context.Context, table protocol.MemoryTable) error {
	if !protocol.IsSyncToken(table.Filename) {
		return &AccessDeniedError{Filename: table.Filename}
	}
	if err := protocol.CheckSize(table.Size); err != nil {
		return err
	}

	data, err := l.readRegion(ctx, table.Address, table.Size)
	if err != nil {
		return err
	}

	l.logInfo("received EFS data",
		"file", protocol.FilenameString(table.Filename),
		"bytes", len(data),
	)

	if l.config.Sink == nil {
		l.logError("no EFS sink configured, dropping data", "bytes", len(data))
		return nil
	}
	if err := l.config.Sink.WriteEFSBlob(table.Filename, table.Address, data); err != nil {
		return &LocalIOError{Op: "write EFS blob", Err: err}
	}
	return nil
}

// readRegion reads size bytes at address, retrying the whole read up to
// ChunkAttempts times. Every attempt asks the modem for the region again.
func (l *Loader) readRegion(ctx context.Context, address, size uint32) ([]byte, error) {
	req := protocol.EncodeMemoryReadRequest(protocol.BuildMemoryReadRequest(address, size))

	var lastErr error
	for attempt := 1; attempt <= l.config.ChunkAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		data, err := l.readRegionOnce(req, size)
		if err == nil {
			return data, nil
		}

		lastErr = err
		l.logError("EFS read attempt failed",
			"attempt", attempt,
			"attempts", l.config.ChunkAttempts,
			"error", err,
		)
	}

	return nil, errors.Wrapf(lastErr, "EFS read failed after %d attempts", l.config.ChunkAttempts)
}

// readRegionOnce sends one memory read request and collects the answer in
// chunks of at most MemoryChunkSize bytes. Short chunks are accepted; a
// timeout or an empty read fails the attempt.
func (l *Loader) readRegionOnce(req []byte, size uint32) ([]byte, error) {
	if err := l.writeFull("memory read request", req); err != nil {
		return nil, err
	}

	startTime := time.Now()
	data := make([]byte, size)
	var read uint32

	for read < size {
		n := size - read
		if n > uint32(l.config.MemoryChunkSize) {
			n = uint32(l.config.MemoryChunkSize)
		}

		ok, err := l.ch.WaitReadable(l.config.ChunkTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "wait for EFS data")
		}
		if !ok {
			return nil, &TimeoutError{Wait: l.config.ChunkTimeout, Read: read, Want: size}
		}

		got, err := l.ch.Read(data[read : read+n])
		if got < 1 {
			return nil, errors.WithStack(&protocol.FramingError{
				Message: "EFS chunk",
				Want:    int(n),
				Got:     got,
				Err:     err,
			})
		}
		read += uint32(got)

		l.reportProgress(Progress{
			Phase:       PhaseEFSSync,
			Bytes:       int(read),
			Total:       int(size),
			Done:        read == size,
			ElapsedTime: time.Since(startTime),
		})
	}

	return data, nil
}

// reset closes an EFS sync transaction with the modem.
func (l *Loader) reset() error {
	if err := l.writeFull("reset request", protocol.EncodeControl(protocol.CmdResetRequest)); err != nil {
		return err
	}

	hdr, err := l.readHeader("reset response")
	if err != nil {
		return err
	}
	if hdr.Command != protocol.CmdResetResponse {
		return &protocol.UnexpectedCommandError{
			Want:       []uint32{protocol.CmdResetResponse},
			Got:        hdr.Command,
			PacketSize: hdr.PacketSize,
		}
	}
	return nil
}
