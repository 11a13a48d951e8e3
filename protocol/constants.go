package protocol

// ProtocolVersion is the SAHARA protocol version this library was written against.
const ProtocolVersion = 2

// Command codes carried in Header.Command.
const (
	// CmdHelloRequest is sent by the modem to open a session
	CmdHelloRequest = 0x01

	// CmdHelloResponse is the host's answer to a hello
	CmdHelloResponse = 0x02

	// CmdDataRequest asks the host for a slice of an image
	CmdDataRequest = 0x03

	// CmdDataEndRequest ends the transfer of one image
	CmdDataEndRequest = 0x04

	// CmdDataEndResponse acknowledges the end of one image (header only)
	CmdDataEndResponse = 0x05

	// CmdDataEndAck tells the host whether more images follow
	CmdDataEndAck = 0x06

	// CmdResetRequest closes a memory debug transaction (header only)
	CmdResetRequest = 0x07

	// CmdResetResponse confirms the reset (header only)
	CmdResetResponse = 0x08

	// CmdMemoryDebugRequest announces a debug table region
	CmdMemoryDebugRequest = 0x09

	// CmdMemoryReadRequest asks the modem to send a memory region
	CmdMemoryReadRequest = 0x0A
)

// Modes negotiated in the hello exchange.
const (
	// ModeTransferPending means images still have to be transferred
	ModeTransferPending = 0x00

	// ModeTransferComplete means the image transfer finished
	ModeTransferComplete = 0x01

	// ModeMemoryDebug is used after normal boot for EFS sync
	ModeMemoryDebug = 0x02

	// ModeCommand is the command mode; this host never accepts it
	ModeCommand = 0x03
)

// Status values.
const (
	// StatusSuccess is the hello response status for an accepted session
	StatusSuccess = 0x00

	// AckMoreImages is the DataEndAck status when more images follow
	AckMoreImages = 0x00

	// AckAllImages is the DataEndAck status once every image has been sent
	AckAllImages = 0x01
)

// Encoded message sizes in bytes. Every message is packed and little-endian.
const (
	// HeaderSize is the size of the generic header: command(4) + packet_size(4)
	HeaderSize = 8

	// HelloSize is the size of a hello request or response including the header
	HelloSize = HeaderSize + 40

	// HelloBodySize is the part of a hello that follows the header
	HelloBodySize = HelloSize - HeaderSize

	// DataRequestSize is the body of a data request: image_id, offset, size
	DataRequestSize = 12

	// DataEndRequestSize is the body of a data end request: image_id, status
	DataEndRequestSize = 8

	// DataEndAckSize is a data end ack including the header
	DataEndAckSize = HeaderSize + 4

	// MemoryDebugRequestSize is the body of a memory debug request: address, size
	MemoryDebugRequestSize = 8

	// MemoryReadRequestSize is a memory read request including the header
	MemoryReadRequestSize = HeaderSize + 8

	// MemoryTableSize is unknown(4) + address(4) + size(4) + reserved(20) + filename(20)
	MemoryTableSize = 52

	// AppendedWords is the number of opaque words carried in a hello
	AppendedWords = 6

	// FilenameSize is the fixed width of the memory table filename field
	FilenameSize = 20

	// reservedSize is the fixed width of the memory table reserved field
	reservedSize = 20
)

// Transfer limits.
const (
	// MaxSendChunk is the largest data request or memory table size accepted (1 MiB)
	MaxSendChunk = 1 * 1024 * 1024

	// MaxMemoryChunk is the largest single read issued while pulling EFS data
	MaxMemoryChunk = 4096
)
