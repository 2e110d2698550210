package protocol

import (
	"fmt"
)

// DecodeOverlay validates msg as a response for tag and decodes the error
// overlay carried by its leading body word.
//
// If the word has ResponseBit set the low bits are returned as an
// ErrorCode error; a masked value of zero is reported as ErrFailed so a
// flagged response is never taken as success. Otherwise the word itself is
// returned. Malformed messages yield a plain (non ErrorCode) error.
func DecodeOverlay(msg []byte, tag Tag) (uint32, error) {
	if len(msg) < MessageSize(tag) {
		return 0, fmt.Errorf("%s response too short: got %d bytes, expected %d", tag, len(msg), MessageSize(tag))
	}
	if got := Tag(getU32(msg, offTag)); got != tag {
		return 0, fmt.Errorf("unexpected tag in response: got 0x%08X, expected 0x%08X", uint32(got), uint32(tag))
	}

	v := getU32(msg, BodyOffset)
	if v&ResponseBit != 0 {
		code := ErrorCode(v &^ ResponseBit)
		if code == ErrNone {
			code = ErrFailed
		}
		return 0, code
	}
	return v, nil
}

// ParseAck parses the response of a set tag that carries no result.
func ParseAck(msg []byte, tag Tag) error {
	_, err := DecodeOverlay(msg, tag)
	return err
}

// ParseGetPacketResponse returns the length bytes read by a Get Packet
// request. The returned slice aliases msg.
//
// Data format:
//
//	[ADDRESS(4)][LENGTH(4)][DATA(length)]
func ParseGetPacketResponse(msg []byte, length int) ([]byte, error) {
	if _, err := DecodeOverlay(msg, TagGetPacket); err != nil {
		return nil, err
	}
	if length < 0 || length > MaxPacketSize {
		return nil, fmt.Errorf("invalid packet length %d: maximum is %d", length, MaxPacketSize)
	}
	return msg[PacketDataOffset : PacketDataOffset+length], nil
}

// ParseUpdateStatusResponse parses the Get Update Status response.
//
// Data format (16 bytes):
//
//	[STATUS(4)][FIRMWARE_ERROR(4)][SPI_GPIO_CHECK(4)][USING_PARTITIONING(4)]
func ParseUpdateStatusResponse(msg []byte) (*UpdateStatusInfo, error) {
	status, err := DecodeOverlay(msg, TagGetUpdateStatus)
	if err != nil {
		return nil, err
	}

	return &UpdateStatusInfo{
		Status:            UpdateStatus(status),
		FirmwareError:     ErrorCode(getU32(msg, StatusFirmwareErrOffset)),
		SPIGPIOCheck:      getU32(msg, StatusSPIGPIOOffset),
		UsingPartitioning: getU32(msg, StatusPartitioningOff) != 0,
	}, nil
}

// ParsePartitionResponse parses the Get Partition response.
//
// Data format (72 bytes):
//
//	[COMMITTED(4)][VALID(4)][COMMITTED_HASH(32)][VALID_HASH(32)]
func ParsePartitionResponse(msg []byte) (*PartitionValidity, error) {
	committed, err := DecodeOverlay(msg, TagGetPartition)
	if err != nil {
		return nil, err
	}

	pv := &PartitionValidity{
		CommittedPartition: Partition(committed),
		ValidPartition:     Partition(getU32(msg, ValidPartitionOffset)),
	}
	copy(pv.CommittedHash[:], msg[CommittedHashOffset:CommittedHashOffset+HashSize])
	copy(pv.ValidHash[:], msg[ValidHashOffset:ValidHashOffset+HashSize])

	return pv, nil
}

// ParseABParamsResponse parses the Get AB Params response.
//
// Data format (20 bytes):
//
//	[PARTITION(4)][COMMITTED(4)][TRYBOOT(4)][PARTITION_AT_BOOT(4)][COMMITTED_AT_BOOT(4)]
func ParseABParamsResponse(msg []byte) (*ABParams, error) {
	partition, err := DecodeOverlay(msg, TagGetABParams)
	if err != nil {
		return nil, err
	}

	return &ABParams{
		CurrentPartition: Partition(partition),
		Committed:        getU32(msg, ABCommittedOffset) != 0,
		Tryboot:          getU32(msg, ABTrybootOffset) != 0,
		PartitionAtBoot:  Partition(getU32(msg, ABPartitionAtBootOffset)),
		CommittedAtBoot:  getU32(msg, ABCommittedAtBootOffset) != 0,
	}, nil
}
