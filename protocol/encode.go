package protocol

import (
	"encoding/binary"
)

// putWords writes words into b as consecutive little-endian uint32 values.
func putWords(b []byte, words ...uint32) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
}

// EncodeHeader encodes a generic header.
//
// Layout:
//
//	[COMMAND(4)][PACKET_SIZE(4)]
func EncodeHeader(h Header) []byte {
	b := make([]byte, HeaderSize)
	putWords(b, h.Command, h.PacketSize)
	return b
}

// EncodeControl encodes a header-only message such as a data end response or
// a reset request. PacketSize is always HeaderSize.
func EncodeControl(cmd uint32) []byte {
	return EncodeHeader(Header{Command: cmd, PacketSize: HeaderSize})
}

// EncodeHelloRequest encodes a complete hello request including its header.
//
// Layout:
//
//	[HEADER(8)][VERSION(4)][MIN_VERSION(4)][RESERVED(4)][MODE(4)][APPENDED(24)]
func EncodeHelloRequest(r HelloRequest) []byte {
	b := make([]byte, HelloSize)
	putWords(b, r.Header.Command, r.Header.PacketSize, r.Version, r.MinVersion, r.Reserved, r.Mode)
	putWords(b[24:], r.Appended[:]...)
	return b
}

// BuildHelloResponse returns the response the host sends for req.
// Version, MinVersion, Mode and Appended are echoed from the request; the
// modem uses the echo to confirm the negotiation.
func BuildHelloResponse(req HelloRequest) HelloResponse {
	return HelloResponse{
		Header:     Header{Command: CmdHelloResponse, PacketSize: HelloSize},
		Version:    req.Version,
		MinVersion: req.MinVersion,
		Status:     StatusSuccess,
		Mode:       req.Mode,
		Appended:   req.Appended,
	}
}

// EncodeHelloResponse encodes a complete hello response including its header.
//
// Layout:
//
//	[HEADER(8)][VERSION(4)][MIN_VERSION(4)][STATUS(4)][MODE(4)][APPENDED(24)]
func EncodeHelloResponse(r HelloResponse) []byte {
	b := make([]byte, HelloSize)
	putWords(b, r.Header.Command, r.Header.PacketSize, r.Version, r.MinVersion, r.Status, r.Mode)
	putWords(b[24:], r.Appended[:]...)
	return b
}

// EncodeDataRequest encodes the body of a data request (without header).
//
// Layout:
//
//	[IMAGE_ID(4)][OFFSET(4)][SIZE(4)]
func EncodeDataRequest(r DataRequest) []byte {
	b := make([]byte, DataRequestSize)
	putWords(b, r.ImageID, r.Offset, r.Size)
	return b
}

// EncodeDataEndRequest encodes the body of a data end request (without header).
//
// Layout:
//
//	[IMAGE_ID(4)][STATUS(4)]
func EncodeDataEndRequest(r DataEndRequest) []byte {
	b := make([]byte, DataEndRequestSize)
	putWords(b, r.ImageID, r.Status)
	return b
}

// EncodeDataEndAck encodes a complete data end ack including its header.
func EncodeDataEndAck(a DataEndAck) []byte {
	b := make([]byte, DataEndAckSize)
	putWords(b, a.Header.Command, a.Header.PacketSize, a.Status)
	return b
}

// EncodeMemoryDebugRequest encodes the body of a memory debug request (without header).
//
// Layout:
//
//	[ADDRESS(4)][SIZE(4)]
func EncodeMemoryDebugRequest(r MemoryDebugRequest) []byte {
	b := make([]byte, MemoryDebugRequestSize)
	putWords(b, r.Address, r.Size)
	return b
}

// BuildMemoryReadRequest returns a memory read request for size bytes at address.
func BuildMemoryReadRequest(address, size uint32) MemoryReadRequest {
	return MemoryReadRequest{
		Header:  Header{Command: CmdMemoryReadRequest, PacketSize: MemoryReadRequestSize},
		Address: address,
		Size:    size,
	}
}

// EncodeMemoryReadRequest encodes a complete memory read request including its header.
//
// Layout:
//
//	[HEADER(8)][ADDRESS(4)][SIZE(4)]
func EncodeMemoryReadRequest(r MemoryReadRequest) []byte {
	b := make([]byte, MemoryReadRequestSize)
	putWords(b, r.Header.Command, r.Header.PacketSize, r.Address, r.Size)
	return b
}

// EncodeMemoryTable encodes a memory table.
//
// Layout:
//
//	[UNKNOWN(4)][ADDRESS(4)][SIZE(4)][RESERVED(20)][FILENAME(20)]
func EncodeMemoryTable(t MemoryTable) []byte {
	b := make([]byte, MemoryTableSize)
	putWords(b, t.Unknown, t.Address, t.Size)
	copy(b[12:32], t.Reserved[:])
	copy(b[32:52], t.Filename[:])
	return b
}
