// Package protocol implements the Raspberry Pi A/B EEPROM firmware mailbox protocol.
//
// This package provides functions to build request messages and parse response
// messages for the eight A/B EEPROM property tags of the VideoCore mailbox.
//
// # Message Overview
//
// Every message is a fixed-size buffer of little-endian 32-bit words:
//
//	[BUF_SIZE][CODE][TAG][TAG_BUF_SIZE][TAG_REQ_RESP_SIZE][BODY...][END_TAG]
//
// Where:
//   - BUF_SIZE = total message size in bytes
//   - CODE = 0 in a request; ResponseBit is set by the firmware once processed
//   - TAG = the operation (see the Tag constants)
//   - TAG_BUF_SIZE = the fixed body size of TAG
//   - TAG_REQ_RESP_SIZE = 0 in a request; ResponseBit is set in a response
//   - END_TAG = 0
//
// Body layouts are defined explicitly by the *Offset constants in layout.go,
// never by host structure layout.
//
// # Request Builders
//
// Use the Build* functions to create requests:
//
//	msg := protocol.BuildGetABParamsCmd()
//	msg := protocol.BuildSetPacketCmd(offset, data)
//	// ... etc
//
// # Response Parsers
//
// After the exchange, use CheckResponse to validate the header and the
// Parse* functions to decode the body:
//
//	if err := protocol.CheckResponse(msg); err != nil {
//	    return err // transport failure
//	}
//	params, err := protocol.ParseABParamsResponse(msg)
//
// # Error Overlay
//
// The first body word of every tag carries either the result or, with
// ResponseBit set, a firmware error code. The parsers decode it once and
// return the code as an ErrorCode error:
//
//	if errors.Is(err, protocol.ErrHashMismatch) {
//	    // ...
//	}
//
// Clients wrap codes in ProtocolError with the failed operation:
//
//	err := &protocol.ProtocolError{
//	    Operation: "mark partition valid",
//	    Code:      protocol.ErrHashMismatch,
//	}
//	// err.Error() returns: "mark partition valid failed: Hash mismatch (0x03)"
package protocol
