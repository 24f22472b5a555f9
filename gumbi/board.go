package gumbi

import (
	"fmt"
	"log"
	"strings"

	"go.bug.st/serial"
)

// State is the session state of a Board.
type State int

const (
	Disconnected State = State(iota)
	Idle         State = State(iota)
	ModeSelected State = State(iota)
	AwaitingAck  State = State(iota)
	Faulted      State = State(iota)
)

// Board is the command / acknowledgement engine over one Transport.
// It owns the transport exclusively and must be closed by the caller,
// failure paths included. A Board is not safe for concurrent use.
type Board struct {
	// Log receives one line per frame when set.
	Log *log.Logger

	conn  Transport
	state State
	mode  Mode
}

// NewBoard takes ownership of t.
func NewBoard(t Transport) *Board {
	b := &Board{conn: t, state: Idle}
	if t == nil {
		b.state = Disconnected
	}
	return b
}

// OpenBoard opens the serial port name with mode and wraps it in a Board.
// Empty name and nil mode take the defaults of OpenSerial.
func OpenBoard(name string, mode *serial.Mode) (*Board, error) {
	conn, err := OpenSerial(name, mode)
	if err != nil {
		return nil, err
	}
	return NewBoard(conn), nil
}

func (b *Board) State() State {
	if b == nil {
		return Disconnected
	}
	return b.state
}

// Mode returns the last mode acknowledged by the board.
func (b *Board) Mode() Mode {
	if b == nil {
		return ModeNop
	}
	return b.mode
}

// Transport returns the underlying transport.
func (b *Board) Transport() Transport {
	return b.conn
}

// Read reads n bytes straight from the transport. A zero n returns
// an empty slice without touching the transport, a negative n reads 1.
func (b *Board) Read(n int) ([]byte, error) {
	if b.state == Disconnected {
		return nil, ErrClosed
	}
	switch {
	case n == 0:
		return []byte{}, nil
	case n < 0:
		n = 1
	}
	return b.conn.Read(n)
}

// ReadText reads a newline-terminated line and strips trailing whitespace.
func (b *Board) ReadText() (string, error) {
	if b.state == Disconnected {
		return "", ErrClosed
	}
	var line []byte
	for {
		c, err := b.conn.Read(1)
		if err != nil {
			return string(line), err
		}
		if len(c) == 0 {
			continue
		}
		line = append(line, c[0])
		if c[0] == '\n' {
			break
		}
	}
	return strings.TrimRight(string(trimCRLF(line)), " \t\r\n"), nil
}

// ReadAck reads one byte. Anything but Ack is a NACK: the board then
// queues an error line, which is returned as a *ProtocolError.
func (b *Board) ReadAck() error {
	res, err := b.Read(1)
	if err != nil {
		b.fault()
		return fmt.Errorf("read ack: %w", err)
	}
	if len(res) == 1 && res[0] == Ack {
		if b.state == AwaitingAck {
			b.settle()
		}
		return nil
	}
	b.fault()
	text, err := b.ReadText()
	if err != nil {
		return fmt.Errorf("read nack text: %w", err)
	}
	b.logf("< NACK %q", text)
	return &ProtocolError{Text: text}
}

// Write sends data then checks for the board's acknowledgement.
func (b *Board) Write(data []byte) error {
	switch b.state {
	case Disconnected:
		return ErrClosed
	case Faulted:
		return ErrFaulted
	}
	return b.write(data)
}

func (b *Board) write(data []byte) error {
	b.state = AwaitingAck
	b.logf("> % x", data)
	if err := b.conn.Write(data); err != nil {
		b.fault()
		return fmt.Errorf("write: %w", err)
	}
	return b.ReadAck()
}

// SetMode puts the board in mode m.
func (b *Board) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, m)
	}
	switch b.state {
	case Disconnected:
		return ErrClosed
	case Faulted:
		return ErrFaulted
	}
	return b.setMode(m)
}

func (b *Board) setMode(m Mode) error {
	frame, err := PackByte(int(m))
	if err != nil {
		return err
	}
	if err = b.write(frame); err != nil {
		return err
	}
	b.mode = m
	b.state = ModeSelected
	return nil
}

// Reset drives the board back to idle: one unacknowledged Exit byte,
// then ResetLen Nop mode selections. It is the only way out of Faulted.
func (b *Board) Reset() error {
	if b.state == Disconnected {
		return ErrClosed
	}
	b.logf("> reset")
	exit, _ := PackByte(int(OpExit))
	if err := b.conn.Write(exit); err != nil {
		b.fault()
		return fmt.Errorf("reset: write exit: %w", err)
	}
	for i := 0; i < ResetLen; i++ {
		if err := b.setMode(ModeNop); err != nil {
			return fmt.Errorf("reset: nop %d/%d: %w", i+1, ResetLen, err)
		}
	}
	b.mode = ModeNop
	b.state = Idle
	return nil
}

// Close releases the transport. The Board is unusable afterwards.
func (b *Board) Close() error {
	if b.state == Disconnected {
		return nil
	}
	b.state = Disconnected
	return b.conn.Close()
}

func (b *Board) fault() {
	b.state = Faulted
}

// settle returns to the resting state after an acknowledged exchange.
func (b *Board) settle() {
	if b.mode == ModeNop {
		b.state = Idle
	} else {
		b.state = ModeSelected
	}
}

func (b *Board) logf(format string, v ...interface{}) {
	if b.Log != nil {
		b.Log.Printf(format, v...)
	}
}
