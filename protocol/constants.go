package protocol

// EEPROM geometry. These are fixed by the bootloader and never derived at runtime.
const (
	// MaxPacketSize is the largest EEPROM payload carried by one mailbox message (512 KiB)
	MaxPacketSize = 512 * 1024

	// PartitionSize is the size of each A/B boot partition (988 KiB)
	PartitionSize = 988 * 1024

	// PartitionAStart is the absolute EEPROM offset of partition A (64 KiB)
	PartitionAStart = 64 * 1024

	// PartitionBStart is the absolute EEPROM offset of partition B, directly after A
	PartitionBStart = PartitionAStart + PartitionSize

	// Capacity is the total addressable EEPROM size (2 MiB)
	Capacity = 2 * 1024 * 1024

	// HashSize is the size of a partition content digest
	HashSize = 32
)

// Mailbox framing constants.
const (
	// ResponseBit is set by the firmware in the header code and tag
	// request/response size of a processed message, and in the leading
	// body word of a failed tag.
	ResponseBit = 0x80000000

	// HeaderSize is the size of the message header: five 32-bit words
	HeaderSize = 20

	// EndTagSize is the size of the zero end tag terminating a message
	EndTagSize = 4
)

// Tag identifies the operation carried by a mailbox message.
type Tag uint32

// Property tags for the A/B EEPROM interface.
const (
	// TagGetPacket reads a block of raw EEPROM bytes
	TagGetPacket Tag = 0x00030096

	// TagSetPacket stages a block of an update image
	TagSetPacket Tag = 0x00038096

	// TagGetUpdateStatus queries the asynchronous write status
	TagGetUpdateStatus Tag = 0x00030097

	// TagSetUpdateStatus sends an update command (cancel, start write)
	TagSetUpdateStatus Tag = 0x00038097

	// TagGetPartition queries committed/valid partitions and their hashes
	TagGetPartition Tag = 0x00030098

	// TagSetPartition journals a hash against a relative partition
	TagSetPartition Tag = 0x00038098

	// TagGetABParams queries current partition, committed, tryboot and boot snapshot
	TagGetABParams Tag = 0x00030099

	// TagSetABParams sets one A/B parameter (commit, tryboot)
	TagSetABParams Tag = 0x00038099
)

// String returns the operation name for the tag.
func (t Tag) String() string {
	switch t {
	case TagGetPacket:
		return "get packet"
	case TagSetPacket:
		return "set packet"
	case TagGetUpdateStatus:
		return "get update status"
	case TagSetUpdateStatus:
		return "set update status"
	case TagGetPartition:
		return "get partition"
	case TagSetPartition:
		return "set partition"
	case TagGetABParams:
		return "get ab params"
	case TagSetABParams:
		return "set ab params"
	default:
		return "unknown tag"
	}
}

// UpdateCommand is the command word of a set update status message.
type UpdateCommand uint32

// Update commands.
const (
	// CommandCancel cancels a staged or in-progress update
	CommandCancel UpdateCommand = 0

	// CommandStartWrite commits all staged packets into the EEPROM
	CommandStartWrite UpdateCommand = 1
)

// ABParam selects which A/B parameter a set AB params message changes.
type ABParam uint32

// A/B parameter ids.
const (
	// ParamCommit commits a relative partition
	ParamCommit ABParam = 1

	// ParamTryboot sets the one-shot tryboot flag
	ParamTryboot ABParam = 2
)
