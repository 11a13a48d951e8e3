// Package protocol implements the wire format of the Qualcomm SAHARA boot protocol.
//
// This package provides functions to encode and decode every SAHARA message
// used while loading firmware into a modem and while servicing its memory
// debug (EFS sync) requests.
//
// # Protocol Overview
//
// Every message starts with a generic header:
//
//	[COMMAND(4)][PACKET_SIZE(4)]
//
// All fields are little-endian uint32 values with no padding. PACKET_SIZE is
// the size of the complete message including the header.
//
// Some messages (data request, data end request, memory debug request) are
// read in two steps: the header first, then a fixed-size body. The body size
// is a property of the command, never of PACKET_SIZE.
//
// # Encoders
//
// Use the Encode* functions to build messages the host sends:
//
//	resp := protocol.BuildHelloResponse(req)
//	frame := protocol.EncodeHelloResponse(resp)
//	frame = protocol.EncodeControl(protocol.CmdResetRequest)
//
// # Decoders
//
// Use the Parse* functions on buffers received from the modem:
//
//	hdr, err := protocol.ParseHeader(buf)
//	req, err := protocol.ParseDataRequest(body)
//
// A buffer shorter than the structure's fixed size yields a *FramingError.
//
// # Access Control
//
// Memory tables name the region the modem wants synced with a 20-byte token.
// Only SyncEFS1 and SyncEFS2 are accepted; see IsSyncToken.
package protocol
