package rawhid

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/gousb"
)

// LibUSB drives the board's HID interface through libusb, detaching
// the kernel's usbhid driver and doing raw interrupt transfers.
type LibUSB struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	in   map[byte]*gousb.InEndpoint
	out  map[byte]*gousb.OutEndpoint
}

func NewLibUSB() *LibUSB {
	return &LibUSB{}
}

func (l *LibUSB) Init() Status {
	if l.ctx == nil {
		l.ctx = gousb.NewContext()
	}
	return StatusSuccess
}

func (l *LibUSB) Open(vid, pid uint16, iface int) Status {
	if l.ctx == nil {
		return StatusInitFailure
	}
	devs, err := l.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == vid && uint16(desc.Product) == pid
	})
	if err != nil && len(devs) == 0 {
		log.Printf("libusb: enumerating %04x:%04x: %s", vid, pid, err)
		return StatusFailOpen
	}
	if len(devs) == 0 {
		return StatusDeviceNotFound
	}
	// first match wins
	for _, d := range devs[1:] {
		d.Close()
	}
	dev := devs[0]
	if err = dev.SetAutoDetach(true); err != nil {
		log.Printf("libusb: auto detach: %s", err)
	}

	num, err := dev.ActiveConfigNum()
	if err != nil {
		dev.Close()
		return StatusFailOpen
	}
	cfg, err := dev.Config(num)
	if err != nil {
		dev.Close()
		return StatusFailOpen
	}
	intf, err := cfg.Interface(iface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		return StatusFailClaim
	}
	l.dev, l.cfg, l.intf = dev, cfg, intf
	l.in = make(map[byte]*gousb.InEndpoint)
	l.out = make(map[byte]*gousb.OutEndpoint)
	return StatusSuccess
}

func (l *LibUSB) InterruptWrite(ep byte, p []byte, timeout time.Duration) Status {
	if l.intf == nil {
		return StatusNotOpen
	}
	oe, ok := l.out[ep]
	if !ok {
		var err error
		if oe, err = l.intf.OutEndpoint(int(ep & 0x0f)); err != nil {
			return StatusFailWrite
		}
		l.out[ep] = oe
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := oe.WriteContext(ctx, p)
	return transferStatus(ctx, err, StatusFailWrite)
}

func (l *LibUSB) InterruptRead(ep byte, size int, timeout time.Duration) ([]byte, Status) {
	if l.intf == nil {
		return nil, StatusNotOpen
	}
	ie, ok := l.in[ep]
	if !ok {
		var err error
		if ie, err = l.intf.InEndpoint(int(ep & 0x0f)); err != nil {
			return nil, StatusFailRead
		}
		l.in[ep] = ie
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	buf := make([]byte, size)
	n, err := ie.ReadContext(ctx, buf)
	if st := transferStatus(ctx, err, StatusFailRead); st != StatusSuccess {
		return nil, st
	}
	return buf[:n], StatusSuccess
}

func (l *LibUSB) Close() Status {
	if l.dev == nil {
		return StatusNotOpen
	}
	l.intf.Close()
	l.cfg.Close()
	err := l.dev.Close()
	l.dev, l.cfg, l.intf = nil, nil, nil
	if err != nil {
		return StatusFailClose
	}
	return StatusSuccess
}

func (l *LibUSB) Cleanup() {
	if l.ctx != nil {
		l.ctx.Close()
		l.ctx = nil
	}
}

func transferStatus(ctx context.Context, err error, fail Status) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, gousb.TransferTimedOut),
		errors.Is(err, gousb.ErrorTimeout),
		ctx.Err() == context.DeadlineExceeded:
		return StatusTimeout
	case errors.Is(err, gousb.ErrorNoDevice), errors.Is(err, gousb.TransferNoDevice):
		return StatusDeviceNotFound
	default:
		return fail
	}
}
