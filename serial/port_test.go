package serial

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-sahara/loader"
)

// pipeStream joins the two ends of an os.Pipe into one stream.
// Fd reports the read end, which is what WaitReadable polls.
type pipeStream struct {
	r *os.File
	w *os.File
}

func (s pipeStream) Read(b []byte) (int, error)  { return s.r.Read(b) }
func (s pipeStream) Write(b []byte) (int, error) { return s.w.Write(b) }
func (s pipeStream) Fd() uintptr                 { return s.r.Fd() }

func (s pipeStream) Close() error {
	_ = s.w.Close()
	return s.r.Close()
}

func newPipePort(t *testing.T) *Port {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	p, err := newPort(pipeStream{r: r, w: w}, "pipe")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProfiles(t *testing.T) {
	requireT := require.New(t)

	connect := ConnectProfile("/dev/ttyHSL1")
	requireT.Equal("/dev/ttyHSL1", connect.Path)
	requireT.EqualValues(DefaultBaudRate, connect.BaudRate)
	requireT.Equal(2*time.Second, connect.ConnectTimeout)

	poll := PollProfile("/dev/ttyHSL1")
	requireT.EqualValues(DefaultBaudRate, poll.BaudRate)
	requireT.Zero(poll.ConnectTimeout)
}

func TestWaitReadable(t *testing.T) {
	requireT := require.New(t)

	p := newPipePort(t)

	start := time.Now()
	ok, err := p.WaitReadable(20 * time.Millisecond)
	requireT.NoError(err)
	requireT.False(ok)
	requireT.GreaterOrEqual(time.Since(start), 15*time.Millisecond)

	n, err := p.Write([]byte("sahara"))
	requireT.NoError(err)
	requireT.Equal(6, n)

	ok, err = p.WaitReadable(time.Second)
	requireT.NoError(err)
	requireT.True(ok)

	buf := make([]byte, 6)
	_, err = io.ReadFull(p, buf)
	requireT.NoError(err)
	requireT.Equal([]byte("sahara"), buf)
}

func TestCloseInterruptsRead(t *testing.T) {
	requireT := require.New(t)

	p := newPipePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := loader.CloseOnDone(ctx, p)
	defer done()

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Read(make([]byte, 8))
		errCh <- err
	}()

	// Nothing is written, so the read stays blocked until ctx is cancelled.
	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-errCh:
		requireT.FailNow("read returned early", "%v", err)
	default:
	}

	cancel()
	select {
	case err := <-errCh:
		requireT.ErrorIs(err, os.ErrClosed)
	case <-time.After(2 * time.Second):
		requireT.FailNow("read still blocked after cancel")
	}
}

func TestClosedPort(t *testing.T) {
	requireT := require.New(t)

	p := newPipePort(t)
	requireT.NoError(p.Close())
	requireT.NoError(p.Close())

	_, err := p.Read(make([]byte, 1))
	requireT.ErrorIs(err, os.ErrClosed)

	_, err = p.Write([]byte{1})
	requireT.ErrorIs(err, os.ErrClosed)

	_, err = p.WaitReadable(time.Millisecond)
	requireT.ErrorIs(err, os.ErrClosed)
}

func TestReadAfterData(t *testing.T) {
	requireT := require.New(t)

	p := newPipePort(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = p.Write([]byte("ok"))
	}()

	buf := make([]byte, 2)
	_, err := io.ReadFull(p, buf)
	requireT.NoError(err)
	requireT.Equal([]byte("ok"), buf)
}

func TestWaitWritable(t *testing.T) {
	requireT := require.New(t)

	p := newPipePort(t)

	// The read end of a pipe never becomes writable.
	ok, err := p.wait(pollOut, 10*time.Millisecond)
	requireT.NoError(err)
	requireT.False(ok)
}

func TestWaitWithoutDescriptor(t *testing.T) {
	requireT := require.New(t)

	p, err := newPort(nopCloser{&bytes.Buffer{}}, "buffer")
	requireT.NoError(err)
	ok, err := p.WaitReadable(time.Millisecond)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.Equal("buffer", p.Path())
}

type nopCloser struct {
	io.ReadWriter
}

func (nopCloser) Close() error { return nil }

func TestOpenErrors(t *testing.T) {
	requireT := require.New(t)

	_, err := Open(Config{})
	requireT.Error(err)

	missing := filepath.Join(t.TempDir(), "ttyMISSING")
	_, err = Open(PollProfile(missing))
	requireT.Error(err)
	requireT.Contains(err.Error(), missing)
}
