package rawhid

import (
	"errors"
	"log"
	"time"

	"github.com/sstallion/go-hid"
)

// HIDAPI drives the board through hidapi (hidraw on linux). Endpoints
// are chosen by the OS: the ep arguments are ignored and every output
// report is sent with report ID 0.
type HIDAPI struct {
	dev *hid.Device
}

func NewHIDAPI() *HIDAPI {
	return &HIDAPI{}
}

func (h *HIDAPI) Init() Status {
	if err := hid.Init(); err != nil {
		log.Println("hidapi: init:", err)
		return StatusInitFailure
	}
	return StatusSuccess
}

func (h *HIDAPI) Open(vid, pid uint16, iface int) Status {
	var path string
	err := hid.Enumerate(vid, pid, func(info *hid.DeviceInfo) error {
		if path == "" && info.InterfaceNbr == iface {
			path = info.Path
		}
		return nil
	})
	if err != nil {
		log.Printf("hidapi: enumerating %04x:%04x: %s", vid, pid, err)
		return StatusFailOpen
	}
	if path == "" {
		return StatusDeviceNotFound
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		return StatusFailOpen
	}
	h.dev = dev
	return StatusSuccess
}

func (h *HIDAPI) InterruptWrite(_ byte, p []byte, _ time.Duration) Status {
	if h.dev == nil {
		return StatusNotOpen
	}
	report := make([]byte, len(p)+1)
	copy(report[1:], p)
	if _, err := h.dev.Write(report); err != nil {
		return StatusFailWrite
	}
	return StatusSuccess
}

func (h *HIDAPI) InterruptRead(_ byte, size int, timeout time.Duration) ([]byte, Status) {
	if h.dev == nil {
		return nil, StatusNotOpen
	}
	buf := make([]byte, size)
	n, err := h.dev.ReadWithTimeout(buf, timeout)
	if errors.Is(err, hid.ErrTimeout) {
		return nil, StatusTimeout
	}
	if err != nil {
		return nil, StatusFailRead
	}
	return buf[:n], StatusSuccess
}

func (h *HIDAPI) Close() Status {
	if h.dev == nil {
		return StatusNotOpen
	}
	err := h.dev.Close()
	h.dev = nil
	if err != nil {
		return StatusFailClose
	}
	return StatusSuccess
}

func (h *HIDAPI) Cleanup() {
	if err := hid.Exit(); err != nil {
		log.Println("hidapi: exit:", err)
	}
}
