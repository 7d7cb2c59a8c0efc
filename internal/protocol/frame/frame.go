package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PrefixLen is the size of the big-endian body length that starts every frame.
const PrefixLen = 4

var (
	ErrConnectionClosed = errors.New("frame: connection closed before length prefix")
	ErrTruncatedMessage = errors.New("frame: stream ended inside message body")
)

// Encode returns body prefixed with its 4-byte big-endian length.
// No maximum size is enforced here; callers bound their payloads.
func Encode(body []byte) []byte {
	buf := make([]byte, PrefixLen+len(body))
	binary.BigEndian.PutUint32(buf[:PrefixLen], uint32(len(body)))
	copy(buf[PrefixLen:], body)
	return buf
}

// WriteFrame writes one complete frame to w in a single call.
func WriteFrame(w io.Writer, body []byte) error {
	_, err := w.Write(Encode(body))
	return err
}

// ReadFrame blocks until one frame body has been read from r.
//
// A stream that ends before the prefix is complete yields ErrConnectionClosed.
// A stream that ends inside the body yields ErrTruncatedMessage; the partial
// body is dropped and the stream must be treated as desynchronized.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrConnectionClosed
		}
		return nil, err
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n == 0 {
		return []byte{}, nil
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedMessage
		}
		return nil, fmt.Errorf("%w: %v", ErrTruncatedMessage, err)
	}
	return body, nil
}
