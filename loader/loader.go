package loader

import (
	"context"

	"github.com/pkg/errors"

	"github.com/moffa90/go-sahara/protocol"
)

// Loader drives the SAHARA conversation with a modem boot ROM.
// The modem leads: every exchange starts with a request read from the channel,
// and the loader answers it with exactly one response.
//
// Loader is not safe for concurrent use; there is one conversation per channel.
type Loader struct {
	ch     Channel
	config Config
}

// New creates a new Loader on the given channel.
//
// Example:
//
//	port, _ := serial.Open(serial.ConnectProfile("/dev/ttyUSB0"))
//	l := loader.New(port,
//	    loader.WithLogger(myLogger),
//	    loader.WithSink(efs.NewDirSink(efs.DefaultDir)),
//	)
func New(ch Channel, opts ...Option) *Loader {
	if ch == nil {
		panic("channel cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Loader{
		ch:     ch,
		config: cfg,
	}
}

// Handshake reads a hello request and answers it.
//
// The modem's mode must match expectedMode; TransferPending and
// TransferComplete are accepted for each other. The response echoes the
// modem's version, minimum version, mode and appended data with status 0.
func (l *Loader) Handshake(ctx context.Context, expectedMode uint32) error {
	if err := ctx.Err(); err != nil {
		return inPhase(PhaseHello, errors.WithStack(err))
	}

	hdr, err := l.readHeader("hello header")
	if err != nil {
		return inPhase(PhaseHello, err)
	}
	if hdr.Command != protocol.CmdHelloRequest {
		return inPhase(PhaseHello, &protocol.UnexpectedCommandError{
			Want:       []uint32{protocol.CmdHelloRequest},
			Got:        hdr.Command,
			PacketSize: hdr.PacketSize,
		})
	}

	return inPhase(PhaseHello, l.answerHello(hdr, expectedMode))
}

// readHello reads the body of a hello whose header was already consumed and
// validates its mode. Nothing is sent.
func (l *Loader) readHello(hdr protocol.Header, expectedMode uint32) (protocol.HelloRequest, error) {
	body, err := l.readFull("hello request", protocol.HelloBodySize)
	if err != nil {
		return protocol.HelloRequest{}, err
	}

	req, err := protocol.ParseHelloBody(hdr, body)
	if err != nil {
		return protocol.HelloRequest{}, err
	}

	if err := protocol.ValidateMode(req.Mode, expectedMode); err != nil {
		return protocol.HelloRequest{}, err
	}

	l.logDebug("received hello",
		"version", req.Version,
		"min_version", req.MinVersion,
		"mode", protocol.ModeName(req.Mode),
	)

	return req, nil
}

// answerHello reads the body of a hello and sends the response.
func (l *Loader) answerHello(hdr protocol.Header, expectedMode uint32) error {
	req, err := l.readHello(hdr, expectedMode)
	if err != nil {
		return err
	}

	resp := protocol.BuildHelloResponse(req)
	if err := l.writeFull("hello response", protocol.EncodeHelloResponse(resp)); err != nil {
		return err
	}

	l.logDebug("sent hello response", "mode", protocol.ModeName(resp.Mode))
	return nil
}

// reportProgress calls the progress callback if configured.
func (l *Loader) reportProgress(progress Progress) {
	if l.config.ProgressCallback != nil {
		l.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (l *Loader) logDebug(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (l *Loader) logInfo(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (l *Loader) logError(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Error(msg, keysAndValues...)
	}
}
