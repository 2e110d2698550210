package eepromab

import (
	"time"

	"github.com/moffa90/go-eepromab/protocol"
)

// Default poller settings.
const (
	// DefaultPollAttempts is the number of update status queries before
	// WaitForUpdate gives up
	DefaultPollAttempts = 15

	// DefaultPollInterval is the delay between update status queries
	DefaultPollInterval = time.Second
)

// Config holds the client configuration.
type Config struct {
	// ProgressCallback is called during transfers and update waits (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// PacketSize is the maximum payload per packet exchange.
	// Default is protocol.MaxPacketSize.
	PacketSize int

	// PollAttempts bounds the update status queries of WaitForUpdate
	PollAttempts int

	// PollInterval is the delay between update status queries
	PollInterval time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		PacketSize:   protocol.MaxPacketSize,
		PollAttempts: DefaultPollAttempts,
		PollInterval: DefaultPollInterval,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	client := eepromab.New(transport,
//	    eepromab.WithProgressCallback(func(p eepromab.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the client operations.
//
// Example:
//
//	client := eepromab.New(transport, eepromab.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithPacketSize sets the maximum payload per packet exchange.
// The size is clamped to 1..protocol.MaxPacketSize.
//
// Example:
//
//	client := eepromab.New(transport, eepromab.WithPacketSize(64*1024))
func WithPacketSize(size int) Option {
	return func(c *Config) {
		switch {
		case size < 1:
			c.PacketSize = 1
		case size > protocol.MaxPacketSize:
			c.PacketSize = protocol.MaxPacketSize
		default:
			c.PacketSize = size
		}
	}
}

// WithPollAttempts sets how many update status queries WaitForUpdate makes
// before reporting a timeout. Values below 1 are ignored.
func WithPollAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts >= 1 {
			c.PollAttempts = attempts
		}
	}
}

// WithPollInterval sets the delay between update status queries.
// Negative values are ignored.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.PollInterval = interval
		}
	}
}
