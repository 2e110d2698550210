package emulator

import (
	"github.com/moffa90/go-eepromab/image"
	"github.com/moffa90/go-eepromab/protocol"
)

// Fault injection and inspection. These hooks stand in for the failure
// modes of real hardware.

// Fail makes every following request for tag fail with code.
func (e *Emulator) Fail(tag protocol.Tag, code protocol.ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faults[tag] = code
}

// Clear removes the fault injected for tag.
func (e *Emulator) Clear(tag protocol.Tag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.faults, tag)
}

// FailTransport makes Exchange return err without touching the message.
// A nil err restores normal operation.
func (e *Emulator) FailTransport(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transportErr = err
}

// SetUnprocessed makes the firmware leave messages without response bits.
func (e *Emulator) SetUnprocessed(unprocessed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unprocessed = unprocessed
}

// FailNextUpdate makes the next started write end with code instead of
// landing in the EEPROM.
func (e *Emulator) FailNextUpdate(code protocol.ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextFailure = code
}

// Calls returns the tags of all requests received, in order.
func (e *Emulator) Calls() []protocol.Tag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]protocol.Tag(nil), e.calls...)
}

// ResetCalls clears the request log.
func (e *Emulator) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// CallCount returns how many requests for tag were received.
func (e *Emulator) CallCount(tag protocol.Tag) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.calls {
		if t == tag {
			n++
		}
	}
	return n
}

// State returns the lifecycle state of p.
func (e *Emulator) State(p protocol.Partition) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(p)
}

// Params returns the A/B parameters the firmware would report.
func (e *Emulator) Params() protocol.ABParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.abParams()
}

// EEPROM returns a copy of the whole EEPROM.
func (e *Emulator) EEPROM() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.eeprom...)
}

// Contents returns a copy of partition p.
func (e *Emulator) Contents(p protocol.Partition) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.partition(p)...)
}

// Hash returns the SHA-256 digest of partition p.
func (e *Emulator) Hash(p protocol.Partition) protocol.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	return image.Sum(e.partition(p))
}

// Poke writes data at an absolute EEPROM offset, bypassing the firmware.
func (e *Emulator) Poke(offset int, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.eeprom[offset:], data)
}

// Reboot simulates a restart. With tryboot set the bootloader starts once
// from the valid uncommitted partition; otherwise it starts from the
// committed one. Tryboot is cleared and the boot snapshot taken.
func (e *Emulator) Reboot() {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.committedPartition
	if e.tryboot && e.validPartition != e.committedPartition && e.state(e.validPartition) == StateValid {
		next = e.validPartition
	}

	e.current = next
	e.tryboot = false
	e.partitionAtBoot = next
	e.committedAtBoot = e.state(next) == StateCommitted
	e.status = protocol.StatusNoUpdate
	e.firmwareError = protocol.ErrNone
	e.busyRemaining = 0
	e.staged = false

	e.logInfo("rebooted", "partition", next.String(), "committed", e.committedAtBoot)
}
