// Package image loads A/B EEPROM update images and saves EEPROM dumps.
//
// # Update Images
//
// An update image is the raw content of one boot partition. It must be
// exactly protocol.PartitionSize bytes; shorter or longer files are
// rejected before any device is touched:
//
//	img, err := image.Load("pieeprom.upd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("hash: %s\n", img.Hash)
//
// # Hashes
//
// The firmware journals a SHA-256 digest against every partition marked
// valid. Sum computes it over raw bytes and ParseHash decodes the 64 character
// hex form printed by the CLI:
//
//	h, err := image.ParseHash("9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08")
//
// The package never inspects image content. Validation is left to the
// firmware, which compares the supplied hash with the partition it holds.
package image
