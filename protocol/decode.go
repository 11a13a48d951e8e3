package protocol

import (
	"encoding/binary"
)

// need returns a FramingError if b is shorter than size.
// Longer input is accepted; only the first size bytes are decoded.
func need(b []byte, size int, message string) error {
	if len(b) < size {
		return &FramingError{Message: message, Want: size, Got: len(b)}
	}
	return nil
}

// word returns the i-th little-endian uint32 of b.
func word(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i*4:])
}

// ParseHeader decodes a generic header.
// PacketSize is returned as sent and never used to size later reads.
func ParseHeader(b []byte) (Header, error) {
	if err := need(b, HeaderSize, "header"); err != nil {
		return Header{}, err
	}
	return Header{Command: word(b, 0), PacketSize: word(b, 1)}, nil
}

// ParseHelloRequest decodes a complete hello request including its header.
func ParseHelloRequest(b []byte) (HelloRequest, error) {
	if err := need(b, HelloSize, "hello request"); err != nil {
		return HelloRequest{}, err
	}
	h, _ := ParseHeader(b)
	return ParseHelloBody(h, b[HeaderSize:])
}

// ParseHelloBody decodes the part of a hello request that follows an
// already decoded header.
func ParseHelloBody(h Header, body []byte) (HelloRequest, error) {
	if err := need(body, HelloBodySize, "hello request body"); err != nil {
		return HelloRequest{}, err
	}
	r := HelloRequest{
		Header:     h,
		Version:    word(body, 0),
		MinVersion: word(body, 1),
		Reserved:   word(body, 2),
		Mode:       word(body, 3),
	}
	for i := range r.Appended {
		r.Appended[i] = word(body, 4+i)
	}
	return r, nil
}

// ParseHelloResponse decodes a complete hello response including its header.
func ParseHelloResponse(b []byte) (HelloResponse, error) {
	if err := need(b, HelloSize, "hello response"); err != nil {
		return HelloResponse{}, err
	}
	r := HelloResponse{
		Header:     Header{Command: word(b, 0), PacketSize: word(b, 1)},
		Version:    word(b, 2),
		MinVersion: word(b, 3),
		Status:     word(b, 4),
		Mode:       word(b, 5),
	}
	for i := range r.Appended {
		r.Appended[i] = word(b, 6+i)
	}
	return r, nil
}

// ParseDataRequest decodes the body of a data request.
func ParseDataRequest(b []byte) (DataRequest, error) {
	if err := need(b, DataRequestSize, "data request"); err != nil {
		return DataRequest{}, err
	}
	return DataRequest{ImageID: word(b, 0), Offset: word(b, 1), Size: word(b, 2)}, nil
}

// ParseDataEndRequest decodes the body of a data end request.
func ParseDataEndRequest(b []byte) (DataEndRequest, error) {
	if err := need(b, DataEndRequestSize, "data end request"); err != nil {
		return DataEndRequest{}, err
	}
	return DataEndRequest{ImageID: word(b, 0), Status: word(b, 1)}, nil
}

// ParseDataEndAck decodes a complete data end ack including its header.
func ParseDataEndAck(b []byte) (DataEndAck, error) {
	if err := need(b, DataEndAckSize, "data end ack"); err != nil {
		return DataEndAck{}, err
	}
	return DataEndAck{
		Header: Header{Command: word(b, 0), PacketSize: word(b, 1)},
		Status: word(b, 2),
	}, nil
}

// ParseMemoryDebugRequest decodes the body of a memory debug request.
func ParseMemoryDebugRequest(b []byte) (MemoryDebugRequest, error) {
	if err := need(b, MemoryDebugRequestSize, "memory debug request"); err != nil {
		return MemoryDebugRequest{}, err
	}
	return MemoryDebugRequest{Address: word(b, 0), Size: word(b, 1)}, nil
}

// ParseMemoryReadRequest decodes a complete memory read request including its header.
func ParseMemoryReadRequest(b []byte) (MemoryReadRequest, error) {
	if err := need(b, MemoryReadRequestSize, "memory read request"); err != nil {
		return MemoryReadRequest{}, err
	}
	return MemoryReadRequest{
		Header:  Header{Command: word(b, 0), PacketSize: word(b, 1)},
		Address: word(b, 2),
		Size:    word(b, 3),
	}, nil
}

// ParseMemoryTable decodes a memory table.
func ParseMemoryTable(b []byte) (MemoryTable, error) {
	if err := need(b, MemoryTableSize, "memory table"); err != nil {
		return MemoryTable{}, err
	}
	t := MemoryTable{
		Unknown: word(b, 0),
		Address: word(b, 1),
		Size:    word(b, 2),
	}
	copy(t.Reserved[:], b[12:32])
	copy(t.Filename[:], b[32:52])
	return t, nil
}
