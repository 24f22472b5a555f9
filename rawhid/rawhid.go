// Package rawhid implements a chunked USB-HID block transport for the
// gumbi board. Payloads are split in BlockSize interrupt transfers,
// each acknowledged by the native driver before the next one is issued.
//
// A RawHID is single owner: no two calls may be in flight at once.
package rawhid

import (
	"fmt"
	"log"
	"time"

	"github.com/rkjdid/util"
	"github.com/solar3s/gogumbi/gumbi"
)

const (
	ReadEndpoint   byte = 0x81
	WriteEndpoint  byte = 0x02
	Interface           = 0
	BlockSize           = 64
	Timeout             = time.Second * 10
	ConnectRetries      = 3
	// FlushLimit bounds the number of blocks Flush discards.
	FlushLimit = 64
	// FlushTimeout is the per block wait while draining: an idle board
	// shouldn't hold Flush for a full Timeout.
	FlushTimeout = time.Millisecond * 100
)

// ProgressFunc is called after each successful block with
// the cumulative byte count and the requested total.
type ProgressFunc func(done, total int)

type Config struct {
	VendorID      uint16
	ProductID     uint16
	ReadEndpoint  byte
	WriteEndpoint byte
	Interface     int
	BlockSize     int
	Timeout       util.Duration
	Retries       int
	Driver        string // "libusb" or "hidapi"
}

var DefaultConfig = Config{
	ReadEndpoint:  ReadEndpoint,
	WriteEndpoint: WriteEndpoint,
	Interface:     Interface,
	BlockSize:     BlockSize,
	Timeout:       util.Duration(Timeout),
	Retries:       ConnectRetries,
	Driver:        "libusb",
}

// SendError reports a block write that didn't complete.
type SendError struct {
	Status Status
	Sent   int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("hid interrupt write failed after %d bytes, error code: %d (%s)", e.Sent, int(e.Status), e.Status)
}

// ReceiveError reports a block read that failed for another reason than a timeout.
type ReceiveError struct {
	Status   Status
	Received int
}

func (e *ReceiveError) Error() string {
	return fmt.Sprintf("hid interrupt read failed after %d bytes, error code: %d (%s)", e.Received, int(e.Status), e.Status)
}

type RawHID struct {
	// Log receives open / close events when set.
	Log *log.Logger

	drv     Driver
	cfg     Config
	rep     byte
	wep     byte
	pending []byte
	open    bool
}

// New creates a transport over drv. Zero fields of cfg take DefaultConfig values.
func New(drv Driver, cfg Config) *RawHID {
	if cfg.ReadEndpoint == 0 {
		cfg.ReadEndpoint = DefaultConfig.ReadEndpoint
	}
	if cfg.WriteEndpoint == 0 {
		cfg.WriteEndpoint = DefaultConfig.WriteEndpoint
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultConfig.BlockSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultConfig.Retries
	}
	return &RawHID{
		drv: drv,
		cfg: cfg,
		rep: cfg.ReadEndpoint,
		wep: cfg.WriteEndpoint,
	}
}

// Dial creates the driver named in cfg and opens cfg.VendorID:cfg.ProductID.
func Dial(cfg Config) (*RawHID, error) {
	drv, err := NewDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	h := New(drv, cfg)
	if err = h.Open(cfg.VendorID, cfg.ProductID, 0, 0); err != nil {
		return nil, err
	}
	return h, nil
}

// Open initializes the driver and connects to vid:pid, trying up to
// cfg.Retries times. Zero rep / wep keep the configured endpoints.
func (h *RawHID) Open(vid, pid uint16, rep, wep byte) error {
	if rep != 0 {
		h.rep = rep
	}
	if wep != 0 {
		h.wep = wep
	}
	device := fmt.Sprintf("%04x:%04x", vid, pid)

	if st := h.drv.Init(); st != StatusSuccess {
		return &gumbi.ConnectionError{Op: "hid init", Device: device, Status: int(st)}
	}
	var st Status
	for i := 0; i < h.cfg.Retries; i++ {
		st = h.drv.Open(vid, pid, h.cfg.Interface)
		if st == StatusSuccess {
			h.open = true
			h.logf("opened %s (in 0x%02x, out 0x%02x)", device, h.rep, h.wep)
			return nil
		}
		h.logf("open %s attempt %d/%d: %s", device, i+1, h.cfg.Retries, st)
	}
	h.drv.Cleanup()
	return &gumbi.ConnectionError{
		Op:       "hid open",
		Device:   device,
		Status:   int(st),
		NotFound: st == StatusDeviceNotFound,
	}
}

// Send writes packet in BlockSize blocks. A block that doesn't
// complete aborts the call with a *SendError.
func (h *RawHID) Send(packet []byte, timeout time.Duration, cb ProgressFunc) error {
	size := len(packet)
	for tx := 0; tx < size; {
		end := tx + h.cfg.BlockSize
		if end > size {
			end = size
		}
		if st := h.drv.InterruptWrite(h.wep, packet[tx:end], timeout); st != StatusSuccess {
			return &SendError{Status: st, Sent: tx}
		}
		tx = end
		if cb != nil {
			cb(tx, size)
		}
	}
	return nil
}

// Recv reads blocks until count bytes were collected and returns exactly
// count bytes. Bytes received past count are kept for the next call.
// Timeouts and empty blocks are not errors: the block read is retried.
func (h *RawHID) Recv(count int, timeout time.Duration, cb ProgressFunc) ([]byte, error) {
	if count <= 0 {
		return nil, nil
	}
	data := h.pending
	h.pending = nil
	for len(data) < count {
		packet, st := h.drv.InterruptRead(h.rep, h.cfg.BlockSize, timeout)
		switch {
		case st == StatusSuccess && len(packet) > 0:
			data = append(data, packet...)
			if cb != nil {
				cb(len(data), count)
			}
		case st == StatusSuccess, st == StatusTimeout:
			// zero length packet or board latency, try again
		default:
			h.pending = data
			return nil, &ReceiveError{Status: st, Received: len(data)}
		}
	}
	if len(data) > count {
		h.pending = append([]byte(nil), data[count:]...)
		data = data[:count]
	}
	return data, nil
}

// Flush discards pending input: it reads at most FlushLimit blocks and
// stops on the first empty block or non-success status, timeouts included.
func (h *RawHID) Flush() {
	h.pending = nil
	for i := 0; i < FlushLimit; i++ {
		packet, st := h.drv.InterruptRead(h.rep, h.cfg.BlockSize, FlushTimeout)
		if st != StatusSuccess || len(packet) == 0 {
			return
		}
	}
}

// Close releases the interface and the driver. The error only
// reflects the interface close.
func (h *RawHID) Close() error {
	if !h.open {
		return nil
	}
	h.open = false
	h.pending = nil
	st := h.drv.Close()
	h.drv.Cleanup()
	if st != StatusSuccess {
		return &gumbi.ConnectionError{Op: "hid close", Status: int(st)}
	}
	return nil
}

// Read implements gumbi.Transport.
func (h *RawHID) Read(n int) ([]byte, error) {
	if !h.open {
		return nil, gumbi.ErrClosed
	}
	return h.Recv(n, time.Duration(h.cfg.Timeout), nil)
}

// Write implements gumbi.Transport.
func (h *RawHID) Write(p []byte) error {
	if !h.open {
		return gumbi.ErrClosed
	}
	return h.Send(p, time.Duration(h.cfg.Timeout), nil)
}

func (h *RawHID) logf(format string, v ...interface{}) {
	if h.Log != nil {
		h.Log.Printf(format, v...)
	}
}
