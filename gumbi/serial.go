package gumbi

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

var ErrNoSerialPortFound = errors.New("didn't find any matching serial port")

var DefaultSerialMode = &serial.Mode{
	BaudRate: DefaultBaud,
	Parity:   serial.NoParity,
	DataBits: 8,
	StopBits: serial.OneStopBit,
}

// DefaultPort returns the usual device name of a USB serial adapter on this platform.
func DefaultPort() string {
	switch runtime.GOOS {
	case "windows":
		return "COM1"
	case "darwin":
		return "/dev/tty.usbserial"
	default:
		return "/dev/ttyUSB0"
	}
}

// SerialConnection is a blocking Transport over a serial port.
// There is no read timeout: callers size reads to known responses.
type SerialConnection struct {
	port io.ReadWriteCloser
	path string
}

// NewSerial wraps an already opened port.
func NewSerial(port io.ReadWriteCloser, name string) *SerialConnection {
	return &SerialConnection{
		port: port,
		path: name,
	}
}

// OpenSerial opens name (DefaultPort() if empty) with mode (DefaultSerialMode if nil).
func OpenSerial(name string, mode *serial.Mode) (*SerialConnection, error) {
	if name == "" {
		name = DefaultPort()
	}
	if mode == nil {
		mode = DefaultSerialMode
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		cerr := &ConnectionError{Op: "open", Device: name, Err: err}
		var perr *serial.PortError
		if errors.As(err, &perr) {
			cerr.Status = int(perr.Code())
			cerr.NotFound = perr.Code() == serial.PortNotFound
		}
		return nil, cerr
	}
	return NewSerial(port, name), nil
}

// Read blocks until n bytes were read.
func (sc *SerialConnection) Read(n int) ([]byte, error) {
	if sc.port == nil {
		return nil, ErrClosed
	}
	buf := make([]byte, n)
	i, err := io.ReadFull(sc.port, buf)
	return buf[:i], err
}

// Write blocks until every byte of p was handed to the driver.
func (sc *SerialConnection) Write(p []byte) error {
	if sc.port == nil {
		return ErrClosed
	}
	for len(p) > 0 {
		i, err := sc.port.Write(p)
		if err != nil {
			return err
		}
		p = p[i:]
	}
	return nil
}

// Close releases the port. Subsequent calls are no-ops.
func (sc *SerialConnection) Close() error {
	if sc.port == nil {
		return nil
	}
	err := sc.port.Close()
	sc.port = nil
	return err
}

// Path returns device name / path of serial port.
func (sc *SerialConnection) Path() string {
	return sc.path
}

// ListPorts returns details of every serial port the OS knows about.
func ListPorts() ([]*enumerator.PortDetails, error) {
	return enumerator.GetDetailedPortsList()
}

// FindSerial opens the first USB serial port matching vid and pid
// (hex strings, case insensitive). An empty vid or pid matches anything.
func FindSerial(vid, pid string, mode *serial.Mode) (*SerialConnection, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	err = ErrNoSerialPortFound
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		if vid != "" && !strings.EqualFold(p.VID, vid) {
			continue
		}
		if pid != "" && !strings.EqualFold(p.PID, pid) {
			continue
		}
		log.Printf("trying \"%s\" (%s:%s %s)...", p.Name, p.VID, p.PID, p.Product)
		var conn *SerialConnection
		conn, err = OpenSerial(p.Name, mode)
		if err == nil {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("find serial %s:%s: %w", vid, pid, err)
}
