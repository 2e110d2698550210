// Package mailbox carries A/B EEPROM messages to the VideoCore firmware.
//
// A Transport performs one blocking request/response exchange. The message is
// sent and the firmware response is written back into the same buffer; the
// caller owns the buffer before and after the call. Device is the hardware
// implementation backed by the /dev/vcio character device.
//
// Transports do not validate the response header. Callers check that the
// firmware processed the message with protocol.CheckResponse.
package mailbox

//go:generate mockgen -destination mock_mailbox/mock_transport.go github.com/moffa90/go-eepromab/mailbox Transport

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-eepromab/protocol"
)

// DefaultDevicePath is the VideoCore mailbox character device.
const DefaultDevicePath = "/dev/vcio"

// ErrUnsupported is returned by Device on platforms without /dev/vcio.
var ErrUnsupported = errors.New("mailbox: /dev/vcio is only available on linux")

// Transport exchanges one property message with the firmware.
//
// Exchange blocks until the firmware has answered and overwrites msg with
// the response. Implementations must not retain msg after returning.
type Transport interface {
	Exchange(msg []byte) error
}

// Logger receives debug output from the transport.
// It matches the eepromab.Logger method set.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// TransportError reports a failure to open the device or issue the ioctl.
// It always maps to protocol.ErrFailed.
type TransportError struct {
	// Op is the failed step: "open", "ioctl" or "exchange"
	Op string

	// Path is the device path
	Path string

	// Err is the underlying cause, usually a syscall.Errno
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mailbox %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches protocol.ErrFailed.
func (e *TransportError) Is(target error) bool {
	code, ok := target.(protocol.ErrorCode)
	return ok && code == protocol.ErrFailed
}

// Device is the /dev/vcio transport.
//
// The device is opened for every exchange and closed before Exchange
// returns, on success and on failure. No handle is cached between calls.
type Device struct {
	// Path is the character device, DefaultDevicePath when empty
	Path string

	// Logger receives header fields of every exchange (optional)
	Logger Logger
}

// NewDevice returns a Device for path.
func NewDevice(path string, logger Logger) *Device {
	return &Device{Path: path, Logger: logger}
}

func (d *Device) path() string {
	if d.Path == "" {
		return DefaultDevicePath
	}
	return d.Path
}

func (d *Device) logHeader(stage string, msg []byte) {
	if d.Logger == nil {
		return
	}
	h, err := protocol.ParseHeader(msg)
	if err != nil {
		return
	}
	d.Logger.Debug("mailbox "+stage,
		"path", d.path(),
		"buf_size", h.BufSize,
		"code", fmt.Sprintf("0x%08X", h.Code),
		"tag", fmt.Sprintf("0x%08X", uint32(h.Tag)),
		"tag_buf_size", h.TagBufSize,
		"tag_req_resp_size", fmt.Sprintf("0x%08X", h.TagReqRespSize),
	)
}
