package protocol

// Request builders. Building never fails: callers validate inputs first.

// BuildGetPacketCmd constructs a Get Packet request reading length bytes
// from the absolute EEPROM address. length must not exceed MaxPacketSize.
//
// Body:
//
//	[ADDRESS(4)][LENGTH(4)][DATA(MaxPacketSize)]
func BuildGetPacketCmd(address, length uint32) []byte {
	msg := newMessage(TagGetPacket)
	putU32(msg, PacketAddressOffset, address)
	putU32(msg, PacketLengthOffset, length)
	return msg
}

// BuildSetPacketCmd constructs a Set Packet request staging data at offset
// within the update image. At most MaxPacketSize bytes of data are carried.
//
// Body:
//
//	[OFFSET(4)][LENGTH(4)][DATA(MaxPacketSize)]
func BuildSetPacketCmd(offset uint32, data []byte) []byte {
	msg := newMessage(TagSetPacket)
	n := copy(msg[PacketDataOffset:PacketDataOffset+MaxPacketSize], data)
	putU32(msg, PacketAddressOffset, offset)
	putU32(msg, PacketLengthOffset, uint32(n))
	return msg
}

// BuildGetUpdateStatusCmd constructs a Get Update Status request.
func BuildGetUpdateStatusCmd() []byte {
	return newMessage(TagGetUpdateStatus)
}

// BuildUpdateCommandCmd constructs a Set Update Status request carrying cmd.
//
// Body:
//
//	[COMMAND(4)]
func BuildUpdateCommandCmd(cmd UpdateCommand) []byte {
	msg := newMessage(TagSetUpdateStatus)
	putU32(msg, CommandOffset, uint32(cmd))
	return msg
}

// BuildGetPartitionCmd constructs a Get Partition request.
func BuildGetPartitionCmd() []byte {
	return newMessage(TagGetPartition)
}

// BuildSetPartitionCmd constructs a Set Partition request journaling hash
// against the relative partition.
//
// Body:
//
//	[RELATIVE_PARTITION(4)][HASH(32)]
func BuildSetPartitionCmd(rel RelativePartition, hash Hash) []byte {
	msg := newMessage(TagSetPartition)
	putU32(msg, RelativePartitionOffset, uint32(rel))
	copy(msg[SetHashOffset:SetHashOffset+HashSize], hash[:])
	return msg
}

// BuildGetABParamsCmd constructs a Get AB Params request.
func BuildGetABParamsCmd() []byte {
	return newMessage(TagGetABParams)
}

// BuildSetABParamCmd constructs a Set AB Params request.
// For ParamCommit value is a RelativePartition; for ParamTryboot it is the flag.
//
// Body:
//
//	[PARAM(4)][VALUE(4)]
func BuildSetABParamCmd(param ABParam, value uint32) []byte {
	msg := newMessage(TagSetABParams)
	putU32(msg, ABParamOffset, uint32(param))
	putU32(msg, ABValueOffset, value)
	return msg
}
