package image

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moffa90/go-eepromab/protocol"
)

// Image is an update image for one A/B partition.
type Image struct {
	// Data is the partition content, exactly protocol.PartitionSize bytes
	Data []byte

	// Hash is the SHA-256 digest of Data
	Hash protocol.Hash
}

// SizeError indicates a file that is not exactly one partition long.
type SizeError struct {
	Got  int64
	Want int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("file size is not a valid AB update size: got %d bytes, want %d", e.Got, e.Want)
}

// Is matches protocol.ErrLength.
func (e *SizeError) Is(target error) bool {
	code, ok := target.(protocol.ErrorCode)
	return ok && code == protocol.ErrLength
}

// Load reads an update image from the given file path.
//
// Example:
//
//	img, err := image.Load("pieeprom.upd")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(f)
}

// LoadReader reads an update image from any io.Reader.
// Reading stops one byte past the partition size so oversized input is
// detected without consuming the whole stream.
func LoadReader(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, protocol.PartitionSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) != protocol.PartitionSize {
		return nil, &SizeError{Got: int64(len(data)), Want: protocol.PartitionSize}
	}

	return &Image{Data: data, Hash: Sum(data)}, nil
}

// SaveDump writes data read from the EEPROM to path, replacing any
// existing file.
func SaveDump(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

// Sum returns the SHA-256 digest of data.
func Sum(data []byte) protocol.Hash {
	return protocol.Hash(sha256.Sum256(data))
}

// ParseHash decodes a 64 character hex digest. Surrounding whitespace is
// ignored and both cases are accepted.
func ParseHash(s string) (protocol.Hash, error) {
	var h protocol.Hash

	s = strings.TrimSpace(s)
	if len(s) != 2*protocol.HashSize {
		return h, fmt.Errorf("invalid hash string: got %d characters, want %d", len(s), 2*protocol.HashSize)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("invalid hash string: %w", err)
	}
	return h, nil
}
