package loader

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-sahara/protocol"
)

// Channel is the byte stream to the modem, usually a serial port.
// The loader never configures it; it only reads, writes and waits.
type Channel interface {
	io.ReadWriter

	// WaitReadable blocks until data can be read or timeout elapses.
	// It returns false on timeout.
	WaitReadable(timeout time.Duration) (bool, error)
}

// ImageSource serves the data requested by the boot ROM.
type ImageSource interface {
	// ReadImage returns exactly size bytes of image id at offset.
	ReadImage(id, offset, size uint32) ([]byte, error)
}

// Sink receives EFS blobs after the filename was validated and the whole
// region was read.
type Sink interface {
	WriteEFSBlob(filename [protocol.FilenameSize]byte, address uint32, data []byte) error
}

// readFull reads exactly n bytes. Anything less is a framing error.
func (l *Loader) readFull(message string, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(l.ch, buf)
	if err != nil {
		return nil, errors.WithStack(&protocol.FramingError{Message: message, Want: n, Got: got, Err: err})
	}
	return buf, nil
}

// readHeader reads and decodes a generic header.
func (l *Loader) readHeader(message string) (protocol.Header, error) {
	b, err := l.readFull(message, protocol.HeaderSize)
	if err != nil {
		return protocol.Header{}, err
	}
	return protocol.ParseHeader(b)
}

// writeFull writes b completely. A short write loses the framing and is fatal.
func (l *Loader) writeFull(message string, b []byte) error {
	n, err := l.ch.Write(b)
	if err != nil || n < len(b) {
		return errors.WithStack(&protocol.FramingError{Message: message + " (write)", Want: len(b), Got: n, Err: err})
	}
	return nil
}
