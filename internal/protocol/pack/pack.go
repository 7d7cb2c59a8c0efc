// Package pack carries opaque bytes inside int64 vector fields.
//
// Layout: the first element is the unpadded byte length L, followed by
// ceil(L/8) little-endian chunks of the zero-padded input.
package pack

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const chunkLen = 8

var ErrInvalidPacked = errors.New("pack: invalid packed sequence")

// Int64s packs b into 1+ceil(len(b)/8) signed 64-bit integers.
func Int64s(b []byte) []int64 {
	padding := (chunkLen - len(b)%chunkLen) % chunkLen
	buf := make([]byte, len(b)+padding)
	copy(buf, b)

	out := make([]int64, 1, 1+len(buf)/chunkLen)
	out[0] = int64(len(b))
	for i := 0; i < len(buf); i += chunkLen {
		out = append(out, int64(binary.LittleEndian.Uint64(buf[i:i+chunkLen])))
	}
	return out
}

// String packs the UTF-8 bytes of s.
func String(s string) []int64 {
	return Int64s([]byte(s))
}

// Unpack reverses Int64s.
func Unpack(v []int64) ([]byte, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: missing length", ErrInvalidPacked)
	}
	n := v[0]
	chunks := v[1:]
	if n < 0 || n > int64(len(chunks))*chunkLen || int64(len(chunks)) != (n+chunkLen-1)/chunkLen {
		return nil, fmt.Errorf("%w: length %d does not match %d chunks", ErrInvalidPacked, n, len(chunks))
	}
	buf := make([]byte, len(chunks)*chunkLen)
	for i, c := range chunks {
		binary.LittleEndian.PutUint64(buf[i*chunkLen:], uint64(c))
	}
	return buf[:n], nil
}
