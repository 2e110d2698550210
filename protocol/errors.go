package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode is an A/B EEPROM error code, either reported by the firmware
// through the error overlay or raised locally before any exchange.
// ErrorCode implements error so it can be matched with errors.Is.
type ErrorCode uint32

// Error codes. Values match the firmware ABI.
const (
	// ErrNone indicates success. It is never returned as an error.
	ErrNone ErrorCode = 0

	// ErrFailed is the transport failure and catch-all unknown error
	ErrFailed ErrorCode = 1

	// ErrInvalidPartition indicates an invalid partition was selected
	ErrInvalidPartition ErrorCode = 2

	// ErrHashMismatch indicates the hash does not match the partition contents
	ErrHashMismatch ErrorCode = 3

	// ErrBusy indicates the firmware is busy with an update
	ErrBusy ErrorCode = 4

	// ErrUpdate indicates the update failed
	ErrUpdate ErrorCode = 5

	// ErrUncommitted indicates an action that is unsafe from an uncommitted partition
	ErrUncommitted ErrorCode = 6

	// ErrInvalidArg indicates an invalid argument
	ErrInvalidArg ErrorCode = 7

	// ErrLength indicates a length error
	ErrLength ErrorCode = 8

	// ErrErase indicates the EEPROM erase failed
	ErrErase ErrorCode = 9

	// ErrWrite indicates the EEPROM write failed
	ErrWrite ErrorCode = 10

	// ErrAlreadyCommitted indicates the partition is already committed
	ErrAlreadyCommitted ErrorCode = 11

	// ErrSPIGPIO indicates the firmware cannot access the SPI GPIOs
	ErrSPIGPIO ErrorCode = 12

	// ErrNoPartitioning indicates A/B partitioning is not in use
	ErrNoPartitioning ErrorCode = 13
)

// ErrorCodes lists every failure code, in wire order.
var ErrorCodes = []ErrorCode{
	ErrFailed, ErrInvalidPartition, ErrHashMismatch, ErrBusy, ErrUpdate,
	ErrUncommitted, ErrInvalidArg, ErrLength, ErrErase, ErrWrite,
	ErrAlreadyCommitted, ErrSPIGPIO, ErrNoPartitioning,
}

func (c ErrorCode) Error() string {
	switch c {
	case ErrNone:
		return "Success"
	case ErrFailed:
		return "Unknown error. Please check you are running a firmware version that supports AB."
	case ErrInvalidPartition:
		return "Invalid partition selected"
	case ErrHashMismatch:
		return "Hash mismatch"
	case ErrBusy:
		return "Busy"
	case ErrUpdate:
		return "Update failed"
	case ErrUncommitted:
		return "Unsafe to perform action from uncommitted partition"
	case ErrInvalidArg:
		return "Invalid argument"
	case ErrLength:
		return "Length error"
	case ErrErase:
		return "Erase failed"
	case ErrWrite:
		return "Write failed"
	case ErrAlreadyCommitted:
		return "Already committed"
	case ErrSPIGPIO:
		return "SPI GPIO Error. Please enable AB Firmware in raspi-config."
	case ErrNoPartitioning:
		return "AB Partitioning is not being used. Perform an AB update to enable AB partitioning."
	default:
		return "Unrecognised error"
	}
}

// ProtocolError represents a failed A/B EEPROM operation.
// Contains exactly one error code.
type ProtocolError struct {
	// Operation is the operation that failed
	Operation string

	// Code is the firmware or local error code
	Code ErrorCode

	// Err is the underlying cause, if any (e.g. the ioctl errno)
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s (0x%02X): %v", e.Operation, e.Code.Error(), uint32(e.Code), e.Err)
	}
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Operation, e.Code.Error(), uint32(e.Code))
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the ErrorCode carried by e.
func (e *ProtocolError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// IsProtocolError returns true if the error is a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// CodeOf returns the error code carried by err.
// Returns ErrNone for a nil error and ErrFailed for errors without a code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrNone
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrFailed
}
