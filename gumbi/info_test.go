package gumbi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPIO(t *testing.T) {
	m := newMockTransport()
	m.onWrite = ackEveryFrame
	b := NewBoard(m)

	g, err := OpenGPIO(b)
	require.NoError(t, err)
	require.Equal(t, ModeGPIO, b.Mode())

	require.NoError(t, g.PinHigh(3))
	require.NoError(t, g.PinLow(128))
	require.NoError(t, g.Exit())

	assert.Equal(t, [][]byte{
		{byte(ModeGPIO)},
		{byte(OpPinHigh), 2},
		{byte(OpPinLow), 127},
		{byte(OpExit), 0},
	}, m.frames)
}

func TestGPIO_ReadPin(t *testing.T) {
	m := newMockTransport(Ack, Ack, 1)
	b := NewBoard(m)

	g, err := OpenGPIO(b)
	require.NoError(t, err)
	v, err := g.ReadPin(3)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, []byte{byte(OpRead), 2}, m.frames[1])
}

func TestGPIO_PinRange(t *testing.T) {
	m := newMockTransport(Ack)
	b := NewBoard(m)
	g, err := OpenGPIO(b)
	require.NoError(t, err)

	var perr *PinRangeError
	assert.ErrorAs(t, g.PinHigh(0), &perr)
	assert.ErrorAs(t, g.PinLow(129), &perr)
	_, err = g.ReadPin(129)
	assert.ErrorAs(t, err, &perr)
	assert.Len(t, m.frames, 1, "nothing sent for invalid pins")
	assert.Equal(t, ModeSelected, b.State())
}

func TestInfo(t *testing.T) {
	m := newMockTransport(Ack)
	m.queueText("Gumbi board\r\nVersion 0.1\nA\n")
	b := NewBoard(m)

	lines, err := Info(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gumbi board", "Version 0.1"}, lines)
	assert.Equal(t, []byte{byte(ModeInfo)}, m.written())
}

func TestIdentify(t *testing.T) {
	m := newMockTransport(Ack)
	m.queueText("GUMBI\n")
	b := NewBoard(m)

	id, err := Identify(b)
	require.NoError(t, err)
	assert.Equal(t, "GUMBI", id)
	assert.Equal(t, []byte{byte(ModeID)}, m.written())
}

func TestPing(t *testing.T) {
	m := newMockTransport(Ack, Ack)
	b := NewBoard(m)
	require.NoError(t, Ping(b))
	assert.Equal(t, []byte{byte(ModePing)}, m.written())

	m = newMockTransport(Ack, Nack)
	m.queueText("no pong\n")
	b = NewBoard(m)
	err := Ping(b)
	assert.EqualError(t, err, "no pong")
	assert.Equal(t, Faulted, b.State())
}

func TestSpeedTest(t *testing.T) {
	m := newMockTransport(Ack, Ack)
	m.queue(make([]byte, 16)...)
	b := NewBoard(m)

	d, err := SpeedTest(b, 16)
	require.NoError(t, err)
	assert.True(t, d >= 0)
	assert.Equal(t, [][]byte{{byte(ModeSpeed)}, {16, 0, 0, 0}}, m.frames)

	_, err = SpeedTest(b, -1)
	var eerr *EncodingError
	assert.ErrorAs(t, err, &eerr)
}

func TestSpeedTest_Zero(t *testing.T) {
	m := newMockTransport(Ack, Ack, 0x55)
	b := NewBoard(m)

	_, err := SpeedTest(b, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{byte(ModeSpeed)}, {0, 0, 0, 0}}, m.frames)
	assert.Equal(t, 2, m.reads, "only the two acks are read")
	assert.Equal(t, 1, m.rx.Len(), "stray byte left alone")
}

func TestSpeedTest_Short(t *testing.T) {
	m := newMockTransport(Ack, Ack, 1, 2)
	b := NewBoard(m)
	_, err := SpeedTest(b, 4)
	assert.Error(t, err)
}

func TestExec(t *testing.T) {
	n := 0
	step := func(Session) error {
		n++
		return nil
	}
	require.NoError(t, Exec(nil, 2, step))
	assert.Equal(t, 2, n)

	n = 0
	require.NoError(t, Exec(nil, 0, step))
	assert.Equal(t, 1, n)

	boom := errors.New("boom")
	n = 0
	err := Exec(nil, 3, func(Session) error {
		n++
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
}
