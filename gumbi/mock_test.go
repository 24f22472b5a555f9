package gumbi

import (
	"bytes"
	"errors"
	"io"
)

// mockTransport simulates a board: reads are served from a scripted
// byte queue, writes are recorded frame by frame.
type mockTransport struct {
	rx       *bytes.Buffer
	frames   [][]byte
	reads    int
	readErr  error
	writeErr error
	closed   bool
	// onWrite, when set, is called with each frame and may queue responses.
	onWrite func(m *mockTransport, p []byte)
}

func newMockTransport(responses ...byte) *mockTransport {
	return &mockTransport{rx: bytes.NewBuffer(responses)}
}

func (m *mockTransport) queue(b ...byte) {
	m.rx.Write(b)
}

func (m *mockTransport) queueText(s string) {
	m.rx.WriteString(s)
}

func (m *mockTransport) Read(n int) ([]byte, error) {
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	buf := make([]byte, n)
	i, err := io.ReadFull(m.rx, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return buf[:i], err
}

func (m *mockTransport) Write(p []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.frames = append(m.frames, append([]byte(nil), p...))
	if m.onWrite != nil {
		m.onWrite(m, p)
	}
	return nil
}

func (m *mockTransport) Close() error {
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	return nil
}

// written returns every byte written, frames concatenated.
func (m *mockTransport) written() []byte {
	return bytes.Join(m.frames, nil)
}

// ackEveryFrame answers each written frame with an Ack.
func ackEveryFrame(m *mockTransport, _ []byte) {
	m.queue(Ack)
}
