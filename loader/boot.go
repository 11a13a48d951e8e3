package loader

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// DeviceControl wakes the modem and reports its boot state.
// Each method blocks until the condition holds or fails.
type DeviceControl interface {
	// Wake powers the modem up into its boot ROM
	Wake() error

	// WaitReady blocks until the modem's serial node exists
	WaitReady(ctx context.Context) error

	// WaitNormalBootDone blocks until the modem reports a normal boot
	WaitNormalBootDone() error

	// WaitForBootError blocks until the modem driver reports the boot outcome
	WaitForBootError() error
}

// Profile selects how the serial channel is opened.
type Profile int

const (
	// ProfileConnect is used for the image transfer: short connect wait
	ProfileConnect Profile = iota

	// ProfilePoll is used after boot: long-lived, short per-read wait
	ProfilePoll
)

func (p Profile) String() string {
	if p == ProfilePoll {
		return "poll"
	}
	return "connect"
}

// Port is a Channel that can be closed.
type Port interface {
	Channel
	io.Closer
}

// OpenFunc opens the channel to the modem with the given profile.
type OpenFunc func(ctx context.Context, profile Profile) (Port, error)

// Boot sequences a complete modem start:
//  1. Wake the modem and wait for its tty
//  2. Transfer all images (connect profile)
//  3. Wait for normal boot and the boot outcome
//  4. Service memory debug requests (poll profile) until ctx is done
type Boot struct {
	Device DeviceControl
	Open   OpenFunc

	// Options are applied to both loaders
	Options []Option

	// Logger is used for orchestration messages (optional)
	Logger Logger

	// SettleDelay is waited after boot before the QMI node is checked
	SettleDelay time.Duration

	// QMIPath is checked after boot and only logged (optional)
	QMIPath string
}

// Run performs the boot sequence. It returns nil only if ctx is cancelled
// while servicing memory debug requests.
func (b *Boot) Run(ctx context.Context) error {
	if b.Device == nil || b.Open == nil {
		return errors.New("boot needs a device and an open function")
	}

	if err := b.Device.Wake(); err != nil {
		return inPhase(PhaseWake, errors.Wrap(err, "wake modem"))
	}
	b.logInfo("modem wake issued")

	if err := b.Device.WaitReady(ctx); err != nil {
		return inPhase(PhaseWake, errors.Wrap(err, "wait for modem tty"))
	}

	if err := b.transfer(ctx); err != nil {
		return err
	}

	if err := b.Device.WaitNormalBootDone(); err != nil {
		return inPhase(PhaseBoot, errors.Wrap(err, "wait for normal boot"))
	}
	b.logInfo("waited for normal boot")

	if err := b.Device.WaitForBootError(); err != nil {
		return inPhase(PhaseBoot, errors.Wrap(err, "error during boot"))
	}
	b.logInfo("modem booted")

	b.checkQMI(ctx)

	return b.serveMemoryDebug(ctx)
}

// transfer opens the connect channel and sends every image.
func (b *Boot) transfer(ctx context.Context) error {
	port, err := b.Open(ctx, ProfileConnect)
	if err != nil {
		return inPhase(PhaseWake, errors.Wrap(err, "open serial channel"))
	}
	defer CloseOnDone(ctx, port)()

	return New(port, b.Options...).TransferImages(ctx)
}

// checkQMI logs whether the QMI control node appeared after boot.
func (b *Boot) checkQMI(ctx context.Context) {
	if b.QMIPath == "" {
		return
	}

	select {
	case <-time.After(b.SettleDelay):
	case <-ctx.Done():
		return
	}

	if _, err := os.Stat(b.QMIPath); err != nil {
		b.logError("QMI device does not exist", "path", b.QMIPath, "error", err)
		return
	}
	b.logInfo("QMI device ready", "path", b.QMIPath)
}

// serveMemoryDebug opens the poll channel and services requests until ctx is done.
func (b *Boot) serveMemoryDebug(ctx context.Context) error {
	port, err := b.Open(ctx, ProfilePoll)
	if err != nil {
		return inPhase(PhaseMemoryDebug, errors.Wrap(err, "open serial channel"))
	}
	defer CloseOnDone(ctx, port)()

	b.logInfo("servicing EFS sync requests")

	return ServeMemoryDebug(ctx, port, b.Options...)
}

// ServeMemoryDebug services requests on an already open channel until ctx is
// done or a request fails. Once ctx is done it returns nil; the error of the
// interrupted request is logged at debug level.
func ServeMemoryDebug(ctx context.Context, ch Channel, opts ...Option) error {
	l := New(ch, opts...)
	session := &DebugSession{}
	for {
		err := l.ServiceMemoryDebug(ctx, session)
		if ctx.Err() != nil {
			if err != nil {
				l.logDebug("stopped servicing memory debug requests", "error", err)
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// CloseOnDone closes port when ctx is done, which unblocks a pending read.
// The returned function closes the port and must be deferred.
func CloseOnDone(ctx context.Context, port Port) func() {
	stop := context.AfterFunc(ctx, func() { _ = port.Close() })
	return func() {
		if stop() {
			_ = port.Close()
		}
	}
}

func (b *Boot) logInfo(msg string, keysAndValues ...interface{}) {
	if b.Logger != nil {
		b.Logger.Info(msg, keysAndValues...)
	}
}

func (b *Boot) logError(msg string, keysAndValues ...interface{}) {
	if b.Logger != nil {
		b.Logger.Error(msg, keysAndValues...)
	}
}

