package loader

import "time"

// Phase names a stage of the conversation with the modem.
// It is used in progress reports and in PhaseError.
type Phase string

const (
	// PhaseWake covers waking the modem and waiting for its tty
	PhaseWake Phase = "wake"

	// PhaseHello is the hello handshake
	PhaseHello Phase = "hello"

	// PhaseTransfer is the image transfer loop
	PhaseTransfer Phase = "data transfer"

	// PhaseBoot covers waiting for the modem to finish booting
	PhaseBoot Phase = "boot"

	// PhaseMemoryDebug is command dispatch in memory debug mode
	PhaseMemoryDebug Phase = "memory debug"

	// PhaseEFSSync is the retrieval of one EFS region
	PhaseEFSSync Phase = "EFS sync"

	// PhaseReset is the reset exchange closing an EFS sync
	PhaseReset Phase = "reset"
)

// Progress contains information about the transfer progress.
// Passed to ProgressCallback during image transfer and EFS sync.
type Progress struct {
	// Phase is PhaseTransfer or PhaseEFSSync
	Phase Phase

	// ImageID is the image being served (PhaseTransfer only)
	ImageID uint32

	// Offset is the image offset of the last data request (PhaseTransfer only)
	Offset uint32

	// Bytes is the number of bytes moved so far for the current image or region
	Bytes int

	// Total is the size of the EFS region being read (PhaseEFSSync only, 0 otherwise)
	Total int

	// ImagesDone is the number of images fully transferred before this one
	ImagesDone int

	// Done is set on the last report for an image or region
	Done bool

	// ElapsedTime is the time elapsed since the image or region started
	ElapsedTime time.Duration
}

// ProgressCallback is called during transfers to report progress.
// Implementations should return quickly; the modem has no flow control.
//
// Example:
//
//	l := loader.New(port,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("[%s] image %d: %d bytes\n", p.Phase, p.ImageID, p.Bytes)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the loader.
// This allows integration with any logging framework.
//
// Example with logrus:
//
//	type LogrusLogger struct{ l *logrus.Logger }
//	func (l LogrusLogger) Debug(msg string, kv ...interface{}) { l.l.WithFields(fields(kv)).Debug(msg) }
//	func (l LogrusLogger) Info(msg string, kv ...interface{})  { l.l.WithFields(fields(kv)).Info(msg) }
//	func (l LogrusLogger) Error(msg string, kv ...interface{}) { l.l.WithFields(fields(kv)).Error(msg) }
//
//	l := loader.New(port, loader.WithLogger(LogrusLogger{logrus.StandardLogger()}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
