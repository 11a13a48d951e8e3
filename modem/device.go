package modem

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// DefaultPath is the modem control node
	DefaultPath = "/dev/mdm"

	// DefaultTTYPath is the serial node that appears once the modem is awake
	DefaultTTYPath = "/dev/ttyUSB0"

	// DefaultReadyTimeout bounds the wait for the serial node after wake
	DefaultReadyTimeout = 2 * time.Second
)

// Linux ioctl request encoding, see asm-generic/ioctl.h.
const (
	iocWrite     = 1
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uint) uint {
	return dir<<iocDirShift | size<<iocSizeShift | typ<<iocTypeShift | nr<<iocNRShift
}

// charmCode is the ioctl type of the modem control driver.
const charmCode = 0xCC

// Control requests understood by the modem control driver.
var (
	ReqWake           = ioc(0, charmCode, 1, 0)
	ReqNormalBootDone = ioc(iocWrite, charmCode, 5, 4)
	ReqWaitForError   = ioc(iocWrite, charmCode, 12, 4)
)

// Config describes the modem's device nodes.
type Config struct {
	// Path is the control node; empty means DefaultPath
	Path string

	// TTYPath is the serial node waited for after wake; empty means DefaultTTYPath
	TTYPath string

	// ReadyTimeout bounds WaitReady; zero means DefaultReadyTimeout
	ReadyTimeout time.Duration
}

// Device controls the modem through its control node.
// It implements loader.DeviceControl.
type Device struct {
	cfg   Config
	fd    int
	ioctl func(fd int, req uint) error
}

// Open opens the control node read-only and non-blocking.
func Open(cfg Config) (*Device, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.TTYPath == "" {
		cfg.TTYPath = DefaultTTYPath
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}

	fd, err := unix.Open(cfg.Path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open modem device %s", cfg.Path)
	}

	return &Device{cfg: cfg, fd: fd, ioctl: ioctl}, nil
}

// ioctl issues req. Requests that carry an int get a pointer to 0, which the
// driver reads as a success status.
func ioctl(fd int, req uint) error {
	if req == ReqWake {
		return unix.IoctlSetInt(fd, req, 0)
	}
	return unix.IoctlSetPointerInt(fd, req, 0)
}

// TTYPath returns the serial node of the modem.
func (d *Device) TTYPath() string {
	return d.cfg.TTYPath
}

// Close closes the control node.
func (d *Device) Close() error {
	return unix.Close(d.fd)
}

// Wake powers the modem up into its boot ROM.
func (d *Device) Wake() error {
	return d.request("wake", ReqWake)
}

// WaitReady blocks until the serial node exists.
func (d *Device) WaitReady(ctx context.Context) error {
	return WaitForPath(ctx, d.cfg.TTYPath, d.cfg.ReadyTimeout)
}

// WaitNormalBootDone blocks until the driver reports that the modem booted normally.
func (d *Device) WaitNormalBootDone() error {
	return d.request("normal boot done", ReqNormalBootDone)
}

// WaitForBootError blocks until the driver reports the boot outcome.
func (d *Device) WaitForBootError() error {
	return d.request("wait for error", ReqWaitForError)
}

func (d *Device) request(name string, req uint) error {
	if err := d.ioctl(d.fd, req); err != nil {
		return errors.Wrapf(err, "ioctl %s (0x%x)", name, req)
	}
	return nil
}

// WaitForPath blocks until path exists, timeout elapses or ctx is done.
// The parent directory of path must exist.
func WaitForPath(ctx context.Context, path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}

	// Checked after the watch is in place so a node created in between is not missed.
	for {
		_, err := os.Stat(path)
		if err == nil {
			return nil
		}
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "stat %s", path)
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "%s did not appear", path)
		case _, ok := <-watcher.Events:
			if !ok {
				return errors.Errorf("watch %s closed", dir)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.Errorf("watch %s closed", dir)
			}
			return errors.Wrapf(err, "watch %s", dir)
		}
	}
}
