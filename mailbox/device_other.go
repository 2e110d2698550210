//go:build !linux

package mailbox

// Exchange always fails: the VideoCore mailbox is only reachable on linux.
func (d *Device) Exchange(msg []byte) error {
	return &TransportError{Op: "open", Path: d.path(), Err: ErrUnsupported}
}
