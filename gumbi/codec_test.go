package gumbi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackByte(t *testing.T) {
	for v := 0; v <= 255; v++ {
		b, err := PackByte(v)
		require.NoError(t, err)
		require.Len(t, b, 1)
		got, err := UnpackByte(b)
		require.NoError(t, err)
		require.Equal(t, v, int(got))
	}

	for _, v := range []int{-1, 256, 1000} {
		_, err := PackByte(v)
		var eerr *EncodingError
		require.ErrorAs(t, err, &eerr, "value %d", v)
		assert.Equal(t, 8, eerr.Bits)
		assert.Equal(t, int64(v), eerr.Value)
	}
}

func TestPack32(t *testing.T) {
	for _, v := range []int64{0, 1, 0xff, 0x1234, 0xdeadbeef, math.MaxUint32} {
		b, err := Pack32(v)
		require.NoError(t, err)
		require.Len(t, b, 4)
		got, err := Unpack32(b)
		require.NoError(t, err)
		assert.Equal(t, uint32(v), got)
	}

	b, err := Pack32(0x01020304)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b, "little-endian")

	for _, v := range []int64{-1, math.MaxUint32 + 1} {
		_, err = Pack32(v)
		var eerr *EncodingError
		require.ErrorAs(t, err, &eerr)
		assert.Equal(t, 32, eerr.Bits)
	}
}

func TestPack16(t *testing.T) {
	for _, v := range []int64{0, 1, 0xff, 0x1234, math.MaxUint16} {
		b, err := Pack16(v)
		require.NoError(t, err)
		require.Len(t, b, 2)
		got, err := Unpack16(b)
		require.NoError(t, err)
		assert.Equal(t, uint16(v), got)
	}

	b, err := Pack16(0xabcd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xcd, 0xab}, b)

	_, err = Pack16(math.MaxUint16 + 1)
	var eerr *EncodingError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, 16, eerr.Bits)
}

func TestPackBytes(t *testing.T) {
	b, err := PackBytes(int(OpPinHigh), 2, 255, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 2, 255, 0}, b)

	b, err = PackBytes()
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = PackBytes(1, 2, 300)
	var eerr *EncodingError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, int64(300), eerr.Value)
}

func TestUnpackShort(t *testing.T) {
	_, err := Unpack32([]byte{1, 2, 3})
	assert.Error(t, err)
	_, err = Unpack16([]byte{1})
	assert.Error(t, err)
	_, err = UnpackByte(nil)
	assert.Error(t, err)
}

func TestOrdinal(t *testing.T) {
	v, err := Ordinal([]byte{0xbf})
	require.NoError(t, err)
	assert.Equal(t, 0xbf, v)
}

func TestPin2Real(t *testing.T) {
	for p := 1; p <= MaxPins; p++ {
		got, err := Pin2Real(p)
		require.NoError(t, err)
		require.Equal(t, byte(p-1), got)
	}
	for _, p := range []int{0, MaxPins + 1, -3} {
		_, err := Pin2Real(p)
		var perr *PinRangeError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, p, perr.Pin)
	}
}
