package gumbi

import (
	"errors"
	"fmt"
)

var (
	// ErrFaulted is returned by guarded writes after the board answered
	// a NACK or the transport failed. Reset() clears it.
	ErrFaulted = errors.New("session is faulted, reset required")
	// ErrClosed is returned once the transport has been released.
	ErrClosed = errors.New("transport is closed")
	// ErrInvalidMode is returned by SetMode for values outside the known set.
	ErrInvalidMode = errors.New("invalid mode")
)

// EncodingError indicates a value that doesn't fit its packed width.
type EncodingError struct {
	Value int64
	Bits  int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %d as %d-bit unsigned value", e.Value, e.Bits)
}

// PinRangeError indicates a user pin number outside 1..MaxPins.
type PinRangeError struct {
	Pin int
}

func (e *PinRangeError) Error() string {
	return fmt.Sprintf("pin %d is out of range: valid range is 1-%d", e.Pin, MaxPins)
}

// ProtocolError carries the text line the board sends after a NACK.
type ProtocolError struct {
	Text string
}

func (e *ProtocolError) Error() string {
	return e.Text
}

// IsProtocolError returns true if err is or wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// ConnectionError reports a failure to open or release a transport.
// Status holds the native driver code when there is one.
type ConnectionError struct {
	Op       string
	Device   string
	Status   int
	NotFound bool
	Err      error
}

func (e *ConnectionError) Error() string {
	switch {
	case e.NotFound:
		return fmt.Sprintf("%s %s: cannot find device", e.Op, e.Device)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %s", e.Op, e.Device, e.Err)
	default:
		return fmt.Sprintf("%s %s failed with error code: %d", e.Op, e.Device, e.Status)
	}
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
