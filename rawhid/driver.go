package rawhid

import (
	"fmt"
	"time"
)

// Status is a native HID driver return code.
// Values follow libhid's hid_return.
type Status int

const (
	StatusSuccess        Status = 0
	StatusInitFailure    Status = 1
	StatusNotOpen        Status = 4
	StatusFailClose      Status = 5
	StatusDeviceNotFound Status = 7
	StatusFailOpen       Status = 13
	StatusFailClaim      Status = 14
	StatusFailWrite      Status = 19
	StatusFailRead       Status = 20
	StatusTimeout        Status = 21
)

var statusNames = map[Status]string{
	StatusSuccess:        "success",
	StatusInitFailure:    "init failure",
	StatusNotOpen:        "device not open",
	StatusFailClose:      "failed to close device",
	StatusDeviceNotFound: "device not found",
	StatusFailOpen:       "failed to open device",
	StatusFailClaim:      "failed to claim interface",
	StatusFailWrite:      "interrupt write failed",
	StatusFailRead:       "interrupt read failed",
	StatusTimeout:        "timeout",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("unknown status %d", int(s))
}

// Driver is the native HID stack: init / open / close / cleanup and
// interrupt transfers on explicit endpoints, reporting status codes.
type Driver interface {
	Init() Status
	Open(vid, pid uint16, iface int) Status
	InterruptWrite(ep byte, p []byte, timeout time.Duration) Status
	InterruptRead(ep byte, size int, timeout time.Duration) ([]byte, Status)
	Close() Status
	Cleanup()
}

// NewDriver returns the driver registered under name, "libusb" when empty.
func NewDriver(name string) (Driver, error) {
	switch name {
	case "", "libusb":
		return NewLibUSB(), nil
	case "hidapi":
		return NewHIDAPI(), nil
	default:
		return nil, fmt.Errorf("unknown hid driver \"%s\"", name)
	}
}
