package config

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-eepromab/protocol"
)

// Validate checks configuration correctness.
// It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if cfg.Device == "" {
		return errors.New("device must not be empty")
	}

	if cfg.PacketSize < 1 || cfg.PacketSize > protocol.MaxPacketSize {
		return fmt.Errorf("packet_size %d out of range 1..%d", cfg.PacketSize, protocol.MaxPacketSize)
	}

	if cfg.Poll.Attempts < 1 {
		return fmt.Errorf("poll.attempts must be at least 1, got %d", cfg.Poll.Attempts)
	}
	if cfg.Poll.Interval < 0 {
		return fmt.Errorf("poll.interval must not be negative, got %s", cfg.Poll.Interval)
	}

	if cfg.Log != nil {
		if errs := cfg.Log.Validate(); len(errs) > 0 {
			return fmt.Errorf("log: %w", errors.Join(errs...))
		}
	}

	return nil
}
