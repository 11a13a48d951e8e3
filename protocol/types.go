package protocol

// Header starts every message on the wire.
// PacketSize is the total message size including the header.
type Header struct {
	Command    uint32
	PacketSize uint32
}

// HelloRequest is sent by the modem to open a session.
type HelloRequest struct {
	Header Header

	// Version is the protocol version the modem speaks
	Version uint32

	// MinVersion is the lowest version the modem accepts
	MinVersion uint32

	// Reserved is unused by this host
	Reserved uint32

	// Mode is the requested session mode (ModeTransferPending, ...)
	Mode uint32

	// Appended is opaque data that must be echoed back verbatim
	Appended [AppendedWords]uint32
}

// HelloResponse is the host's answer to a HelloRequest.
type HelloResponse struct {
	Header     Header
	Version    uint32
	MinVersion uint32
	Status     uint32
	Mode       uint32
	Appended   [AppendedWords]uint32
}

// DataRequest asks for Size bytes of image ImageID starting at Offset.
// It follows a generic header on the wire.
type DataRequest struct {
	ImageID uint32
	Offset  uint32
	Size    uint32
}

// DataEndRequest closes the transfer of one image.
// A nonzero Status is a failure reported by the modem.
type DataEndRequest struct {
	ImageID uint32
	Status  uint32
}

// DataEndAck tells the host whether another image follows.
type DataEndAck struct {
	Header Header

	// Status is AckMoreImages or AckAllImages
	Status uint32
}

// MemoryDebugRequest describes the debug table region the host must fetch.
// It follows a generic header on the wire.
type MemoryDebugRequest struct {
	Address uint32
	Size    uint32
}

// MemoryReadRequest asks the modem to send Size bytes at Address.
type MemoryReadRequest struct {
	Header  Header
	Address uint32
	Size    uint32
}

// MemoryTable is the modem's description of the region it wants synced.
type MemoryTable struct {
	Unknown  uint32
	Address  uint32
	Size     uint32
	Reserved [reservedSize]byte

	// Filename is a NUL padded token naming a logical file, not a host path
	Filename [FilenameSize]byte
}
