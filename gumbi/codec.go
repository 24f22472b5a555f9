package gumbi

import (
	"encoding/binary"
	"math"
)

// Pack32 packs v as a 4-byte little-endian unsigned value.
func Pack32(v int64) ([]byte, error) {
	if v < 0 || v > math.MaxUint32 {
		return nil, &EncodingError{Value: v, Bits: 32}
	}
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b, nil
}

// Pack16 packs v as a 2-byte little-endian unsigned value.
func Pack16(v int64) ([]byte, error) {
	if v < 0 || v > math.MaxUint16 {
		return nil, &EncodingError{Value: v, Bits: 16}
	}
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b, nil
}

// PackByte packs v as a single byte.
func PackByte(v int) ([]byte, error) {
	if v < 0 || v > math.MaxUint8 {
		return nil, &EncodingError{Value: int64(v), Bits: 8}
	}
	return []byte{byte(v)}, nil
}

// PackBytes packs every value of vs as a byte, preserving order.
func PackBytes(vs ...int) ([]byte, error) {
	out := make([]byte, 0, len(vs))
	for _, v := range vs {
		b, err := PackByte(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func Unpack32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, &EncodingError{Value: int64(len(b)), Bits: 32}
	}
	return binary.LittleEndian.Uint32(b), nil
}

func Unpack16(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, &EncodingError{Value: int64(len(b)), Bits: 16}
	}
	return binary.LittleEndian.Uint16(b), nil
}

func UnpackByte(b []byte) (byte, error) {
	if len(b) < 1 {
		return 0, &EncodingError{Value: 0, Bits: 8}
	}
	return b[0], nil
}

// Ordinal interprets the first byte of a response as a value in 0..255,
// as returned by vendor / product ID reads.
func Ordinal(b []byte) (int, error) {
	v, err := UnpackByte(b)
	return int(v), err
}

// Pin2Real converts a user pin number (index 1) to a board pin number (index 0).
func Pin2Real(pin int) (byte, error) {
	if pin < 1 || pin > MaxPins {
		return 0, &PinRangeError{Pin: pin}
	}
	return byte(pin - 1), nil
}
