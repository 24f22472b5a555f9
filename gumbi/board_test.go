package gumbi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_WriteAck(t *testing.T) {
	m := newMockTransport(Ack)
	b := NewBoard(m)
	require.Equal(t, Idle, b.State())

	require.NoError(t, b.Write([]byte{1, 2, 3}))
	assert.Equal(t, [][]byte{{1, 2, 3}}, m.frames)
	assert.Equal(t, 1, m.reads, "no further reads after ack")
	assert.Equal(t, Idle, b.State())
}

func TestBoard_WriteNack(t *testing.T) {
	m := newMockTransport(Nack)
	m.queueText("ERR: bad command\n")
	b := NewBoard(m)

	err := b.Write([]byte{42})
	require.Error(t, err)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ERR: bad command", perr.Error())
	assert.True(t, IsProtocolError(err))
	assert.Equal(t, Faulted, b.State())

	// faulted is terminal until reset
	err = b.Write([]byte{1})
	assert.ErrorIs(t, err, ErrFaulted)
	err = b.SetMode(ModeGPIO)
	assert.ErrorIs(t, err, ErrFaulted)
	assert.Len(t, m.frames, 1)
}

func TestBoard_WriteError(t *testing.T) {
	m := newMockTransport()
	m.writeErr = errors.New("unplugged")
	b := NewBoard(m)

	err := b.Write([]byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unplugged")
	assert.Equal(t, Faulted, b.State())
}

func TestBoard_ReadAckError(t *testing.T) {
	m := newMockTransport()
	b := NewBoard(m)
	err := b.Write([]byte{1})
	require.Error(t, err)
	assert.False(t, IsProtocolError(err))
	assert.Equal(t, Faulted, b.State())
}

func TestBoard_ReadText(t *testing.T) {
	m := newMockTransport()
	m.queueText("gumbi v1.0  \r\nnext\n")
	b := NewBoard(m)

	s, err := b.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "gumbi v1.0", s)
	s, err = b.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "next", s)
}

func TestBoard_Read(t *testing.T) {
	m := newMockTransport(7, 8, 9)
	b := NewBoard(m)

	res, err := b.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, res)
	assert.Equal(t, 0, m.reads, "zero length never reaches the transport")

	res, err = b.Read(-1)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, res, "negative defaults to 1 byte")
	res, err = b.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 9}, res)
}

func TestBoard_NilAccessors(t *testing.T) {
	var b *Board
	assert.Equal(t, Disconnected, b.State())
	assert.Equal(t, ModeNop, b.Mode())
}

func TestBoard_SetMode(t *testing.T) {
	m := newMockTransport(Ack)
	b := NewBoard(m)

	require.NoError(t, b.SetMode(ModeGPIO))
	assert.Equal(t, []byte{byte(ModeGPIO)}, m.written())
	assert.Equal(t, ModeSelected, b.State())
	assert.Equal(t, ModeGPIO, b.Mode())

	err := b.SetMode(Mode(10))
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Len(t, m.frames, 1)
}

func TestBoard_SetModeNack(t *testing.T) {
	m := newMockTransport(Nack)
	m.queueText("unknown mode\n")
	b := NewBoard(m)

	err := b.SetMode(ModeSPIFlash)
	require.Error(t, err)
	assert.EqualError(t, err, "unknown mode")
	assert.Equal(t, Faulted, b.State())
	assert.Equal(t, ModeNop, b.Mode(), "mode unchanged on nack")
}

func TestBoard_Reset(t *testing.T) {
	m := newMockTransport(Nack)
	m.queueText("bad\n")
	b := NewBoard(m)
	require.Error(t, b.Write([]byte{0xff}))
	require.Equal(t, Faulted, b.State())

	m.frames = nil
	m.reads = 0
	m.onWrite = func(m *mockTransport, p []byte) {
		// the exit byte isn't acknowledged
		if len(m.frames) > 1 {
			m.queue(Ack)
		}
	}
	require.NoError(t, b.Reset())

	require.Len(t, m.frames, 1+ResetLen)
	assert.Equal(t, []byte{byte(OpExit)}, m.frames[0])
	for i, f := range m.frames[1:] {
		require.Equalf(t, []byte{byte(ModeNop)}, f, "frame %d", i+1)
	}
	assert.Equal(t, ResetLen, m.reads, "one ack consumed per nop")
	assert.Equal(t, Idle, b.State())
	assert.Equal(t, ModeNop, b.Mode())

	// usable again
	m.onWrite = ackEveryFrame
	assert.NoError(t, b.SetMode(ModePing))
}

func TestBoard_ResetFailure(t *testing.T) {
	m := newMockTransport()
	count := 0
	m.onWrite = func(m *mockTransport, p []byte) {
		count++
		switch {
		case count == 1:
		case count < 5:
			m.queue(Ack)
		default:
			m.queue(Nack)
			m.queueText("stuck\n")
		}
	}
	b := NewBoard(m)

	err := b.Reset()
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "nop 4/1024")
	assert.Equal(t, Faulted, b.State())
	assert.Len(t, m.frames, 5)
}

func TestBoard_Close(t *testing.T) {
	m := newMockTransport()
	b := NewBoard(m)
	require.NoError(t, b.Close())
	assert.True(t, m.closed)
	assert.Equal(t, Disconnected, b.State())
	assert.NoError(t, b.Close(), "second close is a no-op")

	assert.ErrorIs(t, b.Write([]byte{1}), ErrClosed)
	assert.ErrorIs(t, b.Reset(), ErrClosed)
	_, err := b.Read(1)
	assert.ErrorIs(t, err, ErrClosed)
}
