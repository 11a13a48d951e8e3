package loader

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync/atomic"
	"time"

	"github.com/moffa90/go-sahara/protocol"
)

// MockChannel simulates the modem side of a serial channel.
// Bytes queued with Queue are returned by Read; OnWrite lets a test react to
// what the loader sends, the way a real boot ROM would.
type MockChannel struct {
	readBuf    bytes.Buffer
	writes     [][]byte
	waits      int
	closed     atomic.Bool
	shortWrite bool
	writeErr   error

	// OnWrite is called after every write with a copy of the written bytes
	OnWrite func(p []byte)
}

func NewMockChannel(msgs ...[]byte) *MockChannel {
	m := &MockChannel{}
	m.Queue(msgs...)
	return m
}

func (m *MockChannel) Queue(msgs ...[]byte) {
	for _, msg := range msgs {
		m.readBuf.Write(msg)
	}
}

func (m *MockChannel) Read(p []byte) (int, error) {
	if m.readBuf.Len() == 0 {
		return 0, io.EOF
	}
	return m.readBuf.Read(p)
}

func (m *MockChannel) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	n := len(p)
	if m.shortWrite && n > 0 {
		n--
	}
	cp := append([]byte(nil), p...)
	m.writes = append(m.writes, cp)
	if m.OnWrite != nil {
		m.OnWrite(cp)
	}
	return n, nil
}

// WaitReadable reports a timeout whenever nothing is queued.
func (m *MockChannel) WaitReadable(time.Duration) (bool, error) {
	m.waits++
	return m.readBuf.Len() > 0, nil
}

func (m *MockChannel) Close() error {
	m.closed.Store(true)
	return nil
}

// Remaining returns the number of queued bytes the loader has not read.
func (m *MockChannel) Remaining() int {
	return m.readBuf.Len()
}

// WritesOf returns every written message whose command is cmd.
func (m *MockChannel) WritesOf(cmd uint32) [][]byte {
	var out [][]byte
	for _, w := range m.writes {
		if len(w) >= protocol.HeaderSize && binary.LittleEndian.Uint32(w) == cmd {
			out = append(out, w)
		}
	}
	return out
}

// MockSource is an ImageSource serving generated data and counting reads.
type MockSource struct {
	reads int
	err   error
}

func (s *MockSource) ReadImage(id, offset, size uint32) ([]byte, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(id + offset + uint32(i))
	}
	return data, nil
}

// MockSink records EFS blobs.
type MockSink struct {
	blobs []blob
	err   error
}

type blob struct {
	filename [protocol.FilenameSize]byte
	address  uint32
	data     []byte
}

func (s *MockSink) WriteEFSBlob(filename [protocol.FilenameSize]byte, address uint32, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.blobs = append(s.blobs, blob{filename: filename, address: address, data: data})
	return nil
}

// MockLogger collects log messages.
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

// Modem message builders.

func helloMsg(mode, version uint32) []byte {
	return protocol.EncodeHelloRequest(protocol.HelloRequest{
		Header:     protocol.Header{Command: protocol.CmdHelloRequest, PacketSize: protocol.HelloSize},
		Version:    version,
		MinVersion: 1,
		Mode:       mode,
		Appended:   [protocol.AppendedWords]uint32{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
	})
}

func headerMsg(cmd, size uint32) []byte {
	return protocol.EncodeHeader(protocol.Header{Command: cmd, PacketSize: size})
}

func dataReqMsg(id, offset, size uint32) []byte {
	return append(headerMsg(protocol.CmdDataRequest, 20),
		protocol.EncodeDataRequest(protocol.DataRequest{ImageID: id, Offset: offset, Size: size})...)
}

func dataEndMsg(id, status uint32) []byte {
	return append(headerMsg(protocol.CmdDataEndRequest, 16),
		protocol.EncodeDataEndRequest(protocol.DataEndRequest{ImageID: id, Status: status})...)
}

func ackMsg(status uint32) []byte {
	return protocol.EncodeDataEndAck(protocol.DataEndAck{
		Header: protocol.Header{Command: protocol.CmdDataEndAck, PacketSize: protocol.DataEndAckSize},
		Status: status,
	})
}

func memDebugMsg(address, size uint32) []byte {
	return append(headerMsg(protocol.CmdMemoryDebugRequest, 16),
		protocol.EncodeMemoryDebugRequest(protocol.MemoryDebugRequest{Address: address, Size: size})...)
}

func tableMsg(filename [protocol.FilenameSize]byte, address, size uint32) []byte {
	return protocol.EncodeMemoryTable(protocol.MemoryTable{Address: address, Size: size, Filename: filename})
}

// imageTransfer returns the messages for one complete image with the given ack status.
func imageTransfer(id, size, ack uint32) [][]byte {
	return [][]byte{
		helloMsg(protocol.ModeTransferPending, 2),
		dataReqMsg(id, 0, size),
		dataEndMsg(id, 0),
		ackMsg(ack),
	}
}

func command(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
