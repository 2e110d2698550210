package protocol

import (
	"encoding/hex"
	"fmt"
)

// Partition is one of the two fixed EEPROM boot partitions.
type Partition uint32

// Partition ids as reported by the firmware.
const (
	PartitionA Partition = 1
	PartitionB Partition = 2
)

// Valid reports whether p names partition A or B.
func (p Partition) Valid() bool {
	return p == PartitionA || p == PartitionB
}

// Start returns the absolute EEPROM offset of the partition.
func (p Partition) Start() int {
	if p == PartitionB {
		return PartitionBStart
	}
	return PartitionAStart
}

// Opposite returns the other partition.
func (p Partition) Opposite() Partition {
	if p == PartitionA {
		return PartitionB
	}
	return PartitionA
}

func (p Partition) String() string {
	switch p {
	case PartitionA:
		return "A"
	case PartitionB:
		return "B"
	default:
		return fmt.Sprintf("partition(%d)", uint32(p))
	}
}

// RelativePartition names a partition relative to the one the firmware is
// currently running from. The firmware resolves it at call time.
type RelativePartition uint32

// Relative partitions.
const (
	Current  RelativePartition = 0
	Opposite RelativePartition = 1
)

func (r RelativePartition) String() string {
	switch r {
	case Current:
		return "current"
	case Opposite:
		return "opposite"
	default:
		return fmt.Sprintf("relative(%d)", uint32(r))
	}
}

// Hash is the content digest journaled against a partition.
type Hash [HashSize]byte

// String returns the lowercase hex form of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ABParams contains all A/B parameters, read in one round trip.
// Returned by the Get AB Params tag.
type ABParams struct {
	// CurrentPartition is the partition the firmware considers current
	CurrentPartition Partition

	// Committed reports whether the current partition is committed
	Committed bool

	// Tryboot is the one-shot tryboot flag
	Tryboot bool

	// PartitionAtBoot is the partition the bootloader booted from
	PartitionAtBoot Partition

	// CommittedAtBoot is the committed flag sampled by the bootloader at boot
	CommittedAtBoot bool
}

// UpdateStatus is the state of the asynchronous EEPROM write.
type UpdateStatus uint32

// Update status codes.
const (
	StatusNoUpdate UpdateStatus = 0
	StatusCanceled UpdateStatus = 1
	StatusBusy     UpdateStatus = 2
	StatusSuccess  UpdateStatus = 3
)

func (s UpdateStatus) String() string {
	switch s {
	case StatusNoUpdate:
		return "No update"
	case StatusCanceled:
		return "Canceled"
	case StatusBusy:
		return "Busy"
	case StatusSuccess:
		return "Success"
	default:
		return "Unrecognised status code"
	}
}

// UpdateStatusInfo is returned by the Get Update Status tag.
type UpdateStatusInfo struct {
	// Status is the write state
	Status UpdateStatus

	// FirmwareError is the firmware's error for the last update.
	// Only meaningful when Status is not StatusBusy.
	FirmwareError ErrorCode

	// SPIGPIOCheck is 1 when the firmware can drive the SPI EEPROM GPIOs
	SPIGPIOCheck uint32

	// UsingPartitioning reports whether the EEPROM uses A/B partitioning
	UsingPartitioning bool
}

// PartitionValidity is returned by the Get Partition tag.
type PartitionValidity struct {
	// CommittedPartition is the partition eligible for normal boot
	CommittedPartition Partition

	// ValidPartition is the most recently marked valid partition
	ValidPartition Partition

	// CommittedHash is the hash journaled for the committed partition
	CommittedHash Hash

	// ValidHash is the hash journaled for the valid partition
	ValidHash Hash
}
