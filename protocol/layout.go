package protocol

import (
	"encoding/binary"
	"fmt"
)

// Every message is laid out explicitly, all words little-endian:
//
//	offset  size  field
//	0       4     buf_size           total message size
//	4       4     code               0 in requests, ResponseBit set by firmware
//	8       4     tag                Tag
//	12      4     tag_buf_size       body size
//	16      4     tag_req_resp_size  0 in requests, ResponseBit set by firmware
//	20      N     body               tag specific, see below
//	20+N    4     end_tag            0
//
// The first body word of every tag doubles as the error overlay.

// Header field offsets.
const (
	offBufSize        = 0
	offCode           = 4
	offTag            = 8
	offTagBufSize     = 12
	offTagReqRespSize = 16

	// BodyOffset is the offset of the first body word
	BodyOffset = HeaderSize
)

// Packet body (get/set packet).
const (
	PacketAddressOffset = BodyOffset     // address_or_error u32
	PacketLengthOffset  = BodyOffset + 4 // length u32
	PacketDataOffset    = BodyOffset + 8 // data [MaxPacketSize]u8
	PacketBodySize      = 8 + MaxPacketSize
)

// Get update status body.
const (
	StatusOffset            = BodyOffset      // status_or_error u32
	StatusFirmwareErrOffset = BodyOffset + 4  // firmware_error u32
	StatusSPIGPIOOffset     = BodyOffset + 8  // spi_gpio_check u32
	StatusPartitioningOff   = BodyOffset + 12 // using_partitioning u32
	UpdateStatusBodySize    = 16
)

// Set update status (command) body.
const (
	CommandOffset         = BodyOffset // command_or_error u32
	UpdateCommandBodySize = 4
)

// Get partition body.
const (
	CommittedPartitionOffset = BodyOffset      // committed_partition_or_error u32
	ValidPartitionOffset     = BodyOffset + 4  // valid_partition u32
	CommittedHashOffset      = BodyOffset + 8  // committed_hash [32]u8
	ValidHashOffset          = BodyOffset + 40 // valid_hash [32]u8
	PartitionGetBodySize     = 72
)

// Set partition body.
const (
	RelativePartitionOffset = BodyOffset     // relative_partition_or_error u32
	SetHashOffset           = BodyOffset + 4 // hash [32]u8
	PartitionSetBodySize    = 36
)

// Get AB params body.
const (
	ABPartitionOffset       = BodyOffset      // partition_or_error u32
	ABCommittedOffset       = BodyOffset + 4  // committed u32
	ABTrybootOffset         = BodyOffset + 8  // tryboot u32
	ABPartitionAtBootOffset = BodyOffset + 12 // partition_at_boot u32
	ABCommittedAtBootOffset = BodyOffset + 16 // committed_at_boot u32
	ABParamsGetBodySize     = 20
)

// Set AB param body.
const (
	ABParamOffset      = BodyOffset     // param_or_error u32
	ABValueOffset      = BodyOffset + 4 // value u32
	ABParamSetBodySize = 8
)

// BodySize returns the fixed body size for tag, or 0 for an unknown tag.
func BodySize(tag Tag) int {
	switch tag {
	case TagGetPacket, TagSetPacket:
		return PacketBodySize
	case TagGetUpdateStatus:
		return UpdateStatusBodySize
	case TagSetUpdateStatus:
		return UpdateCommandBodySize
	case TagGetPartition:
		return PartitionGetBodySize
	case TagSetPartition:
		return PartitionSetBodySize
	case TagGetABParams:
		return ABParamsGetBodySize
	case TagSetABParams:
		return ABParamSetBodySize
	default:
		return 0
	}
}

// MessageSize returns the total message size for tag.
func MessageSize(tag Tag) int {
	return HeaderSize + BodySize(tag) + EndTagSize
}

// Header is the decoded mailbox message header.
type Header struct {
	BufSize        uint32
	Code           uint32
	Tag            Tag
	TagBufSize     uint32
	TagReqRespSize uint32
}

// ParseHeader decodes the header of msg.
func ParseHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderSize+EndTagSize {
		return Header{}, fmt.Errorf("message too short: got %d bytes, minimum is %d", len(msg), HeaderSize+EndTagSize)
	}
	return Header{
		BufSize:        getU32(msg, offBufSize),
		Code:           getU32(msg, offCode),
		Tag:            Tag(getU32(msg, offTag)),
		TagBufSize:     getU32(msg, offTagBufSize),
		TagReqRespSize: getU32(msg, offTagReqRespSize),
	}, nil
}

// CheckResponse validates that the firmware processed msg: the buffer is
// large enough for its tag and ResponseBit is set in both the header code
// and the tag request/response size.
func CheckResponse(msg []byte) error {
	h, err := ParseHeader(msg)
	if err != nil {
		return err
	}
	if size := MessageSize(h.Tag); BodySize(h.Tag) == 0 || len(msg) < size {
		return fmt.Errorf("invalid response for tag 0x%08X: got %d bytes, expected %d", uint32(h.Tag), len(msg), size)
	}
	if h.Code&ResponseBit == 0 || h.TagReqRespSize&ResponseBit == 0 {
		return fmt.Errorf("mailbox did not process request: code=0x%08X tag_req_resp_size=0x%08X",
			h.Code, h.TagReqRespSize)
	}
	return nil
}

// newMessage allocates a zeroed request for tag with its header filled in.
func newMessage(tag Tag) []byte {
	body := BodySize(tag)
	msg := make([]byte, HeaderSize+body+EndTagSize)
	putU32(msg, offBufSize, uint32(len(msg)))
	putU32(msg, offTag, uint32(tag))
	putU32(msg, offTagBufSize, uint32(body))
	return msg
}

func getU32(msg []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(msg[off : off+4])
}

func putU32(msg []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(msg[off:off+4], v)
}
