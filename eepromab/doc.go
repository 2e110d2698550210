// Package eepromab provides a high-level API for the Raspberry Pi A/B EEPROM
// firmware interface.
//
// # Overview
//
// The bootloader EEPROM holds two boot partitions, A and B. The firmware
// runs from one of them and only ever writes the other. This package
// covers:
//   - Reading the whole EEPROM or one partition in bounded packets
//   - Staging an update image and starting the firmware write
//   - Polling the asynchronous write until it completes
//   - Marking partitions valid, committing them and setting tryboot
//
// # Basic Usage
//
// Update the opposite partition and boot it once:
//
//	client := eepromab.New(mailbox.NewDevice(mailbox.DefaultDevicePath, nil))
//
//	img, err := image.Load("pieeprom.upd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := client.Update(ctx, img.Data); err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.MarkValid(ctx, protocol.Opposite, img.Hash); err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.SetTryboot(ctx, true); err != nil {
//	    log.Fatal(err)
//	}
//
// After rebooting into the new partition, CommitCurrent makes it the
// default.
//
// # Progress Tracking
//
// Track transfers with a callback:
//
//	client := eepromab.New(transport,
//	    eepromab.WithProgressCallback(func(p eepromab.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//
// # Configuration Options
//
//	client := eepromab.New(transport,
//	    eepromab.WithLogger(myLogger),
//	    eepromab.WithPacketSize(64*1024),
//	    eepromab.WithPollAttempts(30),
//	    eepromab.WithPollInterval(500*time.Millisecond),
//	)
//
// # Error Handling
//
// Every error returned by a Client is a *protocol.ProtocolError carrying
// exactly one protocol.ErrorCode:
//
//	err := client.MarkValid(ctx, protocol.Opposite, hash)
//	switch {
//	case errors.Is(err, protocol.ErrHashMismatch):
//	    // hash does not match the partition
//	case errors.Is(err, protocol.ErrUncommitted):
//	    // running from an uncommitted partition
//	}
//
// WaitForUpdate additionally wraps an *UpdateError when the firmware ends an
// update without success and an *UpdateTimeoutError when it is still busy
// after the last allowed query.
//
// # Context Support
//
// Transfers check the context before every packet. A cancelled context
// never interrupts an exchange already in flight.
package eepromab
