package eepromab

import (
	"context"
	"errors"
	"fmt"

	"github.com/moffa90/go-eepromab/mailbox"
	"github.com/moffa90/go-eepromab/protocol"
)

// Client drives the A/B EEPROM firmware interface over a mailbox transport.
//
// Client holds no device state: every query is a fresh round trip and
// nothing is cached between calls. Exchanges are strictly sequential.
// Concurrent use of one Client, or of several clients against the same
// firmware, must be serialised by the caller.
type Client struct {
	transport mailbox.Transport
	config    Config
}

// New creates a new Client with the given transport and options.
//
// Example:
//
//	client := eepromab.New(mailbox.NewDevice(mailbox.DefaultDevicePath, nil),
//	    eepromab.WithProgressCallback(progressFunc),
//	    eepromab.WithPollInterval(500*time.Millisecond),
//	)
func New(transport mailbox.Transport, opts ...Option) *Client {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		transport: transport,
		config:    cfg,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// roundTrip sends msg and validates that the firmware processed it.
// Transport failures and missing response bits map to protocol.ErrFailed.
func (c *Client) roundTrip(ctx context.Context, op string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return &protocol.ProtocolError{Operation: op, Code: protocol.ErrFailed, Err: err}
	}

	if err := c.transport.Exchange(msg); err != nil {
		c.logError("mailbox exchange failed", "operation", op, "error", err)
		return &protocol.ProtocolError{Operation: op, Code: protocol.ErrFailed, Err: err}
	}

	if err := protocol.CheckResponse(msg); err != nil {
		c.logError("mailbox response rejected", "operation", op, "error", err)
		return &protocol.ProtocolError{Operation: op, Code: protocol.ErrFailed, Err: err}
	}

	return nil
}

// fail wraps a codec error for op. Firmware codes are carried as is, any
// other failure becomes protocol.ErrFailed.
func (c *Client) fail(op string, err error) error {
	var code protocol.ErrorCode
	if errors.As(err, &code) {
		c.logDebug("firmware error", "operation", op, "code", fmt.Sprintf("0x%02X", uint32(code)))
		return &protocol.ProtocolError{Operation: op, Code: code}
	}
	return &protocol.ProtocolError{Operation: op, Code: protocol.ErrFailed, Err: err}
}

// reject reports a local policy violation. No exchange has been made.
func (c *Client) reject(op string, code protocol.ErrorCode, format string, args ...interface{}) error {
	return &protocol.ProtocolError{Operation: op, Code: code, Err: fmt.Errorf(format, args...)}
}

// ack performs a set request that returns no data.
func (c *Client) ack(ctx context.Context, op string, msg []byte, tag protocol.Tag) error {
	if err := c.roundTrip(ctx, op, msg); err != nil {
		return err
	}
	if err := protocol.ParseAck(msg, tag); err != nil {
		return c.fail(op, err)
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (c *Client) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
