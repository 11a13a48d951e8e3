package serial

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultBaudRate is the line speed used by the modem's boot ROM.
const DefaultBaudRate = 9600

const (
	pollIn  int16 = unix.POLLIN
	pollOut int16 = unix.POLLOUT
)

// Config describes how the modem's tty is opened.
type Config struct {
	// Path is the tty device node
	Path string

	// BaudRate is the line speed; 0 means DefaultBaudRate
	BaudRate uint

	// ConnectTimeout bounds the wait for the line to accept writes after open.
	// Zero skips the wait.
	ConnectTimeout time.Duration
}

// ConnectProfile is used for the image transfer right after wake.
func ConnectProfile(path string) Config {
	return Config{
		Path:           path,
		BaudRate:       DefaultBaudRate,
		ConnectTimeout: 2 * time.Second,
	}
}

// PollProfile is used for the long-lived memory debug channel after boot.
// Reads block until the modem speaks or the port is closed; chunk waits are
// bounded by the loader's chunk timeout.
func PollProfile(path string) Config {
	return Config{
		Path:     path,
		BaudRate: DefaultBaudRate,
	}
}

// Port is an open tty in raw 8N1 mode. It implements loader.Port.
// Reads block until at least one byte arrives; use WaitReadable to bound the
// wait. Close interrupts a blocked Read, which then returns os.ErrClosed.
type Port struct {
	rwc  io.ReadWriteCloser
	fd   int
	path string

	// wake is a pipe whose read end becomes readable on Close
	wake [2]int

	// mu is held shared while fd is polled or read, and exclusively by Close
	mu        sync.RWMutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open opens and configures the tty described by cfg.
//
// Example:
//
//	port, err := serial.Open(serial.ConnectProfile("/dev/ttyHSL1"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
func Open(cfg Config) (*Port, error) {
	if cfg.Path == "" {
		return nil, errors.New("serial port path is empty")
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	rwc, err := goserial.Open(goserial.OpenOptions{
		PortName:          cfg.Path,
		BaudRate:          baud,
		DataBits:          8,
		StopBits:          1,
		ParityMode:        goserial.PARITY_NONE,
		RTSCTSFlowControl: false,
		MinimumReadSize:   1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Path)
	}

	p, err := newPort(rwc, cfg.Path)
	if err != nil {
		_ = rwc.Close()
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		ok, err := p.wait(pollOut, cfg.ConnectTimeout)
		if err != nil {
			_ = p.Close()
			return nil, errors.Wrapf(err, "wait for %s", cfg.Path)
		}
		if !ok {
			_ = p.Close()
			return nil, errors.Errorf("%s not writable after %s", cfg.Path, cfg.ConnectTimeout)
		}
	}

	return p, nil
}

// newPort wraps an open stream. Streams without a file descriptor are
// always reported readable.
func newPort(rwc io.ReadWriteCloser, path string) (*Port, error) {
	p := &Port{rwc: rwc, fd: -1, path: path, wake: [2]int{-1, -1}}

	f, ok := rwc.(interface{ Fd() uintptr })
	if !ok {
		return p, nil
	}
	// Fd leaves the file in blocking mode, where Close does not interrupt a
	// read(2) in progress. Reads wait in poll on the wake pipe as well.
	p.fd = int(f.Fd())
	if err := unix.Pipe2(p.wake[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, errors.Wrap(err, "create wake pipe")
	}
	return p, nil
}

// Path returns the device node the port was opened on.
func (p *Port) Path() string {
	return p.path
}

func (p *Port) Read(b []byte) (int, error) {
	if p.fd < 0 {
		return p.rwc.Read(b)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for {
		ok, err := p.waitLocked(pollIn, -1)
		if err != nil {
			return 0, err
		}
		if ok {
			return p.rwc.Read(b)
		}
	}
}

func (p *Port) Write(b []byte) (int, error) {
	if p.closed.Load() {
		return 0, errors.Wrap(os.ErrClosed, p.path)
	}
	return p.rwc.Write(b)
}

// Close closes the port. A Read blocked on another goroutine returns first.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if p.wake[1] >= 0 {
			_, _ = unix.Write(p.wake[1], []byte{0})
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		p.closeErr = p.rwc.Close()
		if p.wake[0] >= 0 {
			_ = unix.Close(p.wake[0])
			_ = unix.Close(p.wake[1])
		}
	})
	return p.closeErr
}

// WaitReadable blocks until data can be read or timeout elapses.
func (p *Port) WaitReadable(timeout time.Duration) (bool, error) {
	return p.wait(pollIn, timeout)
}

func (p *Port) wait(events int16, timeout time.Duration) (bool, error) {
	if p.fd < 0 {
		return true, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.waitLocked(events, timeout)
}

// waitLocked polls the descriptor for events. A negative timeout waits
// until an event or Close. EINTR restarts the poll with the remaining time.
func (p *Port) waitLocked(events int16, timeout time.Duration) (bool, error) {
	if p.closed.Load() {
		return false, errors.Wrap(os.ErrClosed, p.path)
	}

	deadline := time.Now().Add(timeout)
	fds := []unix.PollFd{
		{Fd: int32(p.fd), Events: events},
		{Fd: int32(p.wake[0]), Events: pollIn},
	}

	for {
		ms := -1
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			ms = int(remaining.Milliseconds())
		}

		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, errors.Wrap(err, "poll")
		}
		if fds[1].Revents != 0 {
			return false, errors.Wrap(os.ErrClosed, p.path)
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, errors.Errorf("poll %s: revents 0x%x", p.path, fds[0].Revents)
		}
		// POLLHUP still lets pending bytes be read; the read reports the hangup.
		return true, nil
	}
}
