package eepromab

import (
	"fmt"
	"time"

	"github.com/moffa90/go-eepromab/protocol"
)

// UpdateError indicates that the firmware finished an update without
// success. It is returned by WaitForUpdate wrapped in a
// protocol.ProtocolError whose code is Code().
type UpdateError struct {
	// Status is the final update status
	Status protocol.UpdateStatus

	// FirmwareError is the error the firmware reported, possibly ErrNone
	FirmwareError protocol.ErrorCode
}

func (e *UpdateError) Error() string {
	if e.FirmwareError == protocol.ErrNone {
		return fmt.Sprintf("EEPROM update status: %s", e.Status)
	}
	return fmt.Sprintf("EEPROM update status: %s, firmware error: %s", e.Status, e.FirmwareError.Error())
}

// Code returns the firmware error, or protocol.ErrUpdate when the firmware
// reported none.
func (e *UpdateError) Code() protocol.ErrorCode {
	if e.FirmwareError == protocol.ErrNone {
		return protocol.ErrUpdate
	}
	return e.FirmwareError
}

// UpdateTimeoutError indicates that the firmware still reported busy after
// every allowed status query. It is distinct from firmware errors and is
// returned wrapped in a protocol.ProtocolError with code protocol.ErrBusy.
type UpdateTimeoutError struct {
	Attempts int
	Interval time.Duration
}

func (e *UpdateTimeoutError) Error() string {
	return fmt.Sprintf("EEPROM update still busy after %d status queries at %s intervals", e.Attempts, e.Interval)
}
