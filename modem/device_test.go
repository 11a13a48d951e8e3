package modem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRequestCodes(t *testing.T) {
	requireT := require.New(t)

	requireT.EqualValues(0xCC01, ReqWake)
	requireT.EqualValues(0x4004CC05, ReqNormalBootDone)
	requireT.EqualValues(0x4004CC0C, ReqWaitForError)
}

func TestDeviceRequests(t *testing.T) {
	requireT := require.New(t)

	var reqs []uint
	dev := &Device{
		cfg: Config{TTYPath: DefaultTTYPath},
		fd:  7,
		ioctl: func(fd int, req uint) error {
			requireT.Equal(7, fd)
			reqs = append(reqs, req)
			return nil
		},
	}

	requireT.NoError(dev.Wake())
	requireT.NoError(dev.WaitNormalBootDone())
	requireT.NoError(dev.WaitForBootError())
	requireT.Equal([]uint{ReqWake, ReqNormalBootDone, ReqWaitForError}, reqs)
	requireT.Equal(DefaultTTYPath, dev.TTYPath())
}

func TestDeviceRequestError(t *testing.T) {
	requireT := require.New(t)

	dev := &Device{ioctl: func(int, uint) error { return os.ErrPermission }}

	err := dev.Wake()
	requireT.ErrorIs(err, os.ErrPermission)
	requireT.Contains(err.Error(), "ioctl wake (0xcc01)")
}

func TestOpenMissing(t *testing.T) {
	requireT := require.New(t)

	_, err := Open(Config{Path: filepath.Join(t.TempDir(), "mdm")})
	requireT.Error(err)
	requireT.Contains(err.Error(), "open modem device")
}

func TestWaitForPath(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		requireT := require.New(t)

		path := filepath.Join(t.TempDir(), "ttyUSB0")
		requireT.NoError(os.WriteFile(path, nil, 0o644))
		requireT.NoError(WaitForPath(context.Background(), path, time.Second))
	})

	t.Run("appears", func(t *testing.T) {
		requireT := require.New(t)

		path := filepath.Join(t.TempDir(), "ttyUSB0")
		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(path, nil, 0o644)
		}()

		requireT.NoError(WaitForPath(context.Background(), path, 5*time.Second))
	})

	t.Run("timeout", func(t *testing.T) {
		requireT := require.New(t)

		path := filepath.Join(t.TempDir(), "ttyUSB0")
		err := WaitForPath(context.Background(), path, 50*time.Millisecond)
		requireT.ErrorIs(err, context.DeadlineExceeded)
		requireT.Contains(err.Error(), path)
	})

	t.Run("cancelled", func(t *testing.T) {
		requireT := require.New(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := WaitForPath(ctx, filepath.Join(t.TempDir(), "ttyUSB0"), time.Minute)
		requireT.True(errors.Is(err, context.Canceled))
	})
}

func TestWaitForPathIgnoresOtherNodes(t *testing.T) {
	requireT := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "ttyUSB0")
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "ttyUSB1"), nil, 0o644)
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(path, nil, 0o644)
	}()

	requireT.NoError(WaitForPath(context.Background(), path, 5*time.Second))
}

func TestWaitForPathMissingParent(t *testing.T) {
	requireT := require.New(t)

	dir := filepath.Join(t.TempDir(), "missing")
	err := WaitForPath(context.Background(), filepath.Join(dir, "ttyUSB0"), time.Second)
	requireT.Error(err)
	requireT.Contains(err.Error(), dir)
}

func TestWaitReady(t *testing.T) {
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "ttyUSB0")
	requireT.NoError(os.WriteFile(path, nil, 0o644))

	dev := &Device{cfg: Config{TTYPath: path, ReadyTimeout: time.Second}}
	requireT.NoError(dev.WaitReady(context.Background()))
}
