//go:build linux

package mailbox

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctlMboxProperty is _IOWR(100, 0, char *).
const ioctlMboxProperty = 3<<30 | unsafe.Sizeof(uintptr(0))<<16 | 100<<8

// Exchange sends msg to the firmware and waits for the response.
func (d *Device) Exchange(msg []byte) error {
	if len(msg) == 0 {
		return &TransportError{Op: "exchange", Path: d.path(), Err: errors.New("empty message")}
	}

	fd, err := unix.Open(d.path(), unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		if d.Logger != nil {
			d.Logger.Error("cannot open mailbox device", "path", d.path(), "error", err)
		}
		return &TransportError{Op: "open", Path: d.path(), Err: err}
	}
	defer unix.Close(fd)

	d.logHeader("request", msg)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlMboxProperty, uintptr(unsafe.Pointer(&msg[0])))
	if errno != 0 {
		return &TransportError{Op: "ioctl", Path: d.path(), Err: errno}
	}
	d.logHeader("response", msg)

	return nil
}
