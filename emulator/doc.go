// Package emulator provides an in-memory A/B EEPROM firmware.
//
// The Emulator implements mailbox.Transport. It decodes each request with
// the same layout table as the client and answers in place, so a client
// built on it exercises the real codec end to end:
//
//	emu := emulator.New(emulator.WithBusyPolls(3))
//	client := eepromab.New(emu)
//
// # Firmware Model
//
// The EEPROM holds partition A at 64 KiB and partition B directly after it.
// Each partition follows its own lifecycle:
//
//	unset -> valid -> committed
//
// A new emulator runs from a committed partition A. Writes always land in
// the partition opposite to the running one, after BusyPolls status queries
// have reported busy. Marking a partition valid requires the SHA-256 hash of
// its content. Reboot honours the one-shot tryboot flag.
//
// # Fault Injection
//
// Fail overlays an error code on every response for a tag, FailTransport
// fails the exchange itself and SetUnprocessed leaves responses without the
// firmware's response bits.
package emulator
