package protocol

import "fmt"

// Firmware side of the codec. Used by emulators and tests to decode
// requests and write responses in place with the same layout as the client.

// Request is a decoded A/B EEPROM mailbox request.
// Only the fields belonging to Tag are set.
type Request struct {
	Tag Tag

	// Address is the absolute (get) or image relative (set) packet offset
	Address uint32
	Length  uint32
	// Data aliases the staged bytes of a Set Packet request
	Data []byte

	Command UpdateCommand

	Relative RelativePartition
	Hash     Hash

	Param ABParam
	Value uint32
}

// ParseRequest decodes a request message.
func ParseRequest(msg []byte) (*Request, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return nil, err
	}
	body := BodySize(h.Tag)
	if body == 0 {
		return nil, fmt.Errorf("unknown tag 0x%08X", uint32(h.Tag))
	}
	if len(msg) < MessageSize(h.Tag) || int(h.BufSize) != MessageSize(h.Tag) || int(h.TagBufSize) != body {
		return nil, fmt.Errorf("%s request has invalid size: buf_size=%d tag_buf_size=%d len=%d",
			h.Tag, h.BufSize, h.TagBufSize, len(msg))
	}

	req := &Request{Tag: h.Tag}
	switch h.Tag {
	case TagGetPacket, TagSetPacket:
		req.Address = getU32(msg, PacketAddressOffset)
		req.Length = getU32(msg, PacketLengthOffset)
		if req.Length > MaxPacketSize {
			return nil, fmt.Errorf("packet length %d exceeds maximum %d bytes", req.Length, MaxPacketSize)
		}
		if h.Tag == TagSetPacket {
			req.Data = msg[PacketDataOffset : PacketDataOffset+int(req.Length)]
		}
	case TagSetUpdateStatus:
		req.Command = UpdateCommand(getU32(msg, CommandOffset))
	case TagSetPartition:
		req.Relative = RelativePartition(getU32(msg, RelativePartitionOffset))
		copy(req.Hash[:], msg[SetHashOffset:SetHashOffset+HashSize])
	case TagSetABParams:
		req.Param = ABParam(getU32(msg, ABParamOffset))
		req.Value = getU32(msg, ABValueOffset)
	}
	return req, nil
}

// RespondError overlays code onto the leading body word and marks msg processed.
func RespondError(msg []byte, code ErrorCode) {
	putU32(msg, BodyOffset, uint32(code)|ResponseBit)
	markProcessed(msg)
}

// RespondAck marks a set request processed without changing its body.
func RespondAck(msg []byte) {
	markProcessed(msg)
}

// RespondPacket writes data read from the EEPROM into a Get Packet message.
func RespondPacket(msg []byte, data []byte) {
	copy(msg[PacketDataOffset:PacketDataOffset+MaxPacketSize], data)
	markProcessed(msg)
}

// RespondUpdateStatus writes a Get Update Status response.
func RespondUpdateStatus(msg []byte, info UpdateStatusInfo) {
	putU32(msg, StatusOffset, uint32(info.Status))
	putU32(msg, StatusFirmwareErrOffset, uint32(info.FirmwareError))
	putU32(msg, StatusSPIGPIOOffset, info.SPIGPIOCheck)
	putU32(msg, StatusPartitioningOff, boolWord(info.UsingPartitioning))
	markProcessed(msg)
}

// RespondPartition writes a Get Partition response.
func RespondPartition(msg []byte, pv PartitionValidity) {
	putU32(msg, CommittedPartitionOffset, uint32(pv.CommittedPartition))
	putU32(msg, ValidPartitionOffset, uint32(pv.ValidPartition))
	copy(msg[CommittedHashOffset:CommittedHashOffset+HashSize], pv.CommittedHash[:])
	copy(msg[ValidHashOffset:ValidHashOffset+HashSize], pv.ValidHash[:])
	markProcessed(msg)
}

// RespondABParams writes a Get AB Params response.
func RespondABParams(msg []byte, p ABParams) {
	putU32(msg, ABPartitionOffset, uint32(p.CurrentPartition))
	putU32(msg, ABCommittedOffset, boolWord(p.Committed))
	putU32(msg, ABTrybootOffset, boolWord(p.Tryboot))
	putU32(msg, ABPartitionAtBootOffset, uint32(p.PartitionAtBoot))
	putU32(msg, ABCommittedAtBootOffset, boolWord(p.CommittedAtBoot))
	markProcessed(msg)
}

// markProcessed sets ResponseBit in the header code and tag request/response size.
func markProcessed(msg []byte) {
	h, err := ParseHeader(msg)
	if err != nil {
		return
	}
	putU32(msg, offCode, h.Code|ResponseBit)
	putU32(msg, offTagReqRespSize, ResponseBit|uint32(BodySize(h.Tag)))
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
