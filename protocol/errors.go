package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// FramingError is returned when fewer bytes are available than a message's fixed size.
// The caller must treat it as a lost connection: the framing cannot be recovered.
type FramingError struct {
	// Message names the structure that was being decoded
	Message string

	// Want is the fixed encoded size of the structure
	Want int

	// Got is the number of bytes actually available
	Got int

	// Err is the transport error that cut the message short, if any
	Err error
}

func (e *FramingError) Error() string {
	msg := fmt.Sprintf("framing error: %s needs %d bytes, got %d", e.Message, e.Want, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FramingError) Unwrap() error {
	return e.Err
}

// UnexpectedCommandError is returned when the modem sends a command the host
// cannot accept at this point of the conversation.
type UnexpectedCommandError struct {
	// Want lists the commands that were acceptable
	Want []uint32

	// Got is the command that arrived
	Got uint32

	// PacketSize is the size the modem announced for the message
	PacketSize uint32
}

func (e *UnexpectedCommandError) Error() string {
	if len(e.Want) == 0 {
		return fmt.Sprintf("unknown command %s with size %d", CommandName(e.Got), e.PacketSize)
	}
	names := make([]string, 0, len(e.Want))
	for _, c := range e.Want {
		names = append(names, CommandName(c))
	}
	return fmt.Sprintf("unexpected command %s, want %v", CommandName(e.Got), names)
}

// ModeMismatchError is returned when the modem asks for a mode the host does not expect.
type ModeMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *ModeMismatchError) Error() string {
	return fmt.Sprintf("mode %s is not the expected mode %s", ModeName(e.Got), ModeName(e.Expected))
}

// SizeLimitError is returned when a requested transfer exceeds MaxSendChunk.
type SizeLimitError struct {
	Size  uint32
	Limit uint32
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("requested size %d exceeds limit of %d bytes", e.Size, e.Limit)
}

// IsFramingError returns true if err is or wraps a FramingError.
func IsFramingError(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe)
}

// CheckSize returns a SizeLimitError if size exceeds MaxSendChunk.
func CheckSize(size uint32) error {
	if size > MaxSendChunk {
		return &SizeLimitError{Size: size, Limit: MaxSendChunk}
	}
	return nil
}

// CommandName returns a human-readable name for a command code.
func CommandName(cmd uint32) string {
	switch cmd {
	case CmdHelloRequest:
		return "hello request"
	case CmdHelloResponse:
		return "hello response"
	case CmdDataRequest:
		return "data request"
	case CmdDataEndRequest:
		return "data end request"
	case CmdDataEndResponse:
		return "data end response"
	case CmdDataEndAck:
		return "data end ack"
	case CmdResetRequest:
		return "reset request"
	case CmdResetResponse:
		return "reset response"
	case CmdMemoryDebugRequest:
		return "memory debug request"
	case CmdMemoryReadRequest:
		return "memory read request"
	default:
		return fmt.Sprintf("0x%02X", cmd)
	}
}

// ModeName returns a human-readable name for a session mode.
func ModeName(mode uint32) string {
	switch mode {
	case ModeTransferPending:
		return "transfer pending"
	case ModeTransferComplete:
		return "transfer complete"
	case ModeMemoryDebug:
		return "memory debug"
	case ModeCommand:
		return "command"
	default:
		return fmt.Sprintf("0x%02X", mode)
	}
}
