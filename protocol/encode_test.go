package protocol

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeHeader(t *testing.T) {
	requireT := require.New(t)

	b := EncodeHeader(Header{Command: CmdDataEndResponse, PacketSize: HeaderSize})
	requireT.Equal([]byte{0x05, 0, 0, 0, 0x08, 0, 0, 0}, b)
}

func TestEncodeControl(t *testing.T) {
	tests := []struct {
		name string
		cmd  uint32
	}{
		{name: "data end response", cmd: CmdDataEndResponse},
		{name: "reset request", cmd: CmdResetRequest},
		{name: "reset response", cmd: CmdResetResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireT := require.New(t)

			b := EncodeControl(tt.cmd)
			requireT.Len(b, HeaderSize)
			requireT.Equal(tt.cmd, binary.LittleEndian.Uint32(b[0:4]))
			requireT.EqualValues(8, binary.LittleEndian.Uint32(b[4:8]))
		})
	}
}

func TestBuildHelloResponse(t *testing.T) {
	requireT := require.New(t)

	req := HelloRequest{
		Header:     Header{Command: CmdHelloRequest, PacketSize: HelloSize},
		Version:    3,
		MinVersion: 1,
		Reserved:   0xDEADBEEF,
		Mode:       ModeTransferPending,
		Appended:   [AppendedWords]uint32{1, 2, 3, 4, 5, 6},
	}

	resp := BuildHelloResponse(req)
	requireT.EqualValues(CmdHelloResponse, resp.Header.Command)
	requireT.EqualValues(HelloSize, resp.Header.PacketSize)
	requireT.EqualValues(3, resp.Version)
	requireT.EqualValues(1, resp.MinVersion)
	requireT.EqualValues(StatusSuccess, resp.Status)
	requireT.EqualValues(ModeTransferPending, resp.Mode)
	requireT.Equal(req.Appended, resp.Appended)
}

func TestEncodeHelloResponseLayout(t *testing.T) {
	requireT := require.New(t)

	resp := HelloResponse{
		Header:     Header{Command: CmdHelloResponse, PacketSize: HelloSize},
		Version:    2,
		MinVersion: 1,
		Status:     0,
		Mode:       ModeMemoryDebug,
		Appended:   [AppendedWords]uint32{0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6},
	}

	b := EncodeHelloResponse(resp)
	requireT.Len(b, 48)

	// Fixed offsets are the compatibility contract with the boot ROM.
	requireT.EqualValues(CmdHelloResponse, binary.LittleEndian.Uint32(b[0:]))
	requireT.EqualValues(48, binary.LittleEndian.Uint32(b[4:]))
	requireT.EqualValues(2, binary.LittleEndian.Uint32(b[8:]))
	requireT.EqualValues(1, binary.LittleEndian.Uint32(b[12:]))
	requireT.EqualValues(0, binary.LittleEndian.Uint32(b[16:]))
	requireT.EqualValues(ModeMemoryDebug, binary.LittleEndian.Uint32(b[20:]))
	requireT.EqualValues(0xA1, binary.LittleEndian.Uint32(b[24:]))
	requireT.EqualValues(0xA6, binary.LittleEndian.Uint32(b[44:]))
}

func TestBuildMemoryReadRequest(t *testing.T) {
	requireT := require.New(t)

	r := BuildMemoryReadRequest(0x1000, 0x200)
	b := EncodeMemoryReadRequest(r)

	requireT.Equal([]byte{
		0x0A, 0, 0, 0,
		0x10, 0, 0, 0,
		0x00, 0x10, 0, 0,
		0x00, 0x02, 0, 0,
	}, b)
}

func TestEncodeMemoryTableLayout(t *testing.T) {
	requireT := require.New(t)

	table := MemoryTable{
		Unknown:  1,
		Address:  0x2000,
		Size:     64,
		Filename: SyncEFS2,
	}
	table.Reserved[0] = 0xFF

	b := EncodeMemoryTable(table)
	requireT.Len(b, MemoryTableSize)
	requireT.EqualValues(0x2000, binary.LittleEndian.Uint32(b[4:]))
	requireT.EqualValues(64, binary.LittleEndian.Uint32(b[8:]))
	requireT.Equal(byte(0xFF), b[12])
	requireT.Equal(SyncEFS2[:], b[32:52])
}
