package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	body := []byte{0x08, 0x02}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, body); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if got := buf.Bytes()[:PrefixLen]; !bytes.Equal(got, []byte{0, 0, 0, 2}) {
		t.Fatalf("prefix mismatch: %x", got)
	}
	out, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(out, body) {
		t.Fatalf("body mismatch: got=%x want=%x", out, body)
	}
}

func TestEncodeLengthIsBigEndian(t *testing.T) {
	body := make([]byte, 0x0102)
	out := Encode(body)
	if !bytes.Equal(out[:PrefixLen], []byte{0x00, 0x00, 0x01, 0x02}) {
		t.Fatalf("unexpected prefix: %x", out[:PrefixLen])
	}
	if len(out) != PrefixLen+len(body) {
		t.Fatalf("unexpected frame length: %d", len(out))
	}
}

func TestReadFrameZeroLength(t *testing.T) {
	out, err := ReadFrame(bytes.NewReader([]byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(out))
	}
}

func TestReadFrameShortPrefixIsConnectionClosed(t *testing.T) {
	for _, in := range [][]byte{nil, {0}, {0, 0, 1}} {
		_, err := ReadFrame(bytes.NewReader(in))
		if !errors.Is(err, ErrConnectionClosed) {
			t.Fatalf("input %x: expected ErrConnectionClosed, got %v", in, err)
		}
	}
}

func TestReadFrameShortBodyIsTruncated(t *testing.T) {
	in := []byte{0, 0, 0, 5, 'a', 'b'}
	_, err := ReadFrame(bytes.NewReader(in))
	if !errors.Is(err, ErrTruncatedMessage) {
		t.Fatalf("expected ErrTruncatedMessage, got %v", err)
	}
}

func TestReadFrameReassemblesPartialReads(t *testing.T) {
	framed := Encode([]byte("partial reads"))
	r := io.MultiReader(
		bytes.NewReader(framed[:2]),
		bytes.NewReader(framed[2:7]),
		bytes.NewReader(framed[7:]),
	)
	out, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if string(out) != "partial reads" {
		t.Fatalf("body mismatch: %q", out)
	}
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReadFramePassesThroughPrefixReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadFrame(failingReader{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying error, got %v", err)
	}
}

func TestReadFrameBodyReadErrorIsTruncated(t *testing.T) {
	boom := errors.New("reset")
	r := io.MultiReader(bytes.NewReader([]byte{0, 0, 0, 3, 'x'}), failingReader{err: boom})
	_, err := ReadFrame(r)
	if !errors.Is(err, ErrTruncatedMessage) {
		t.Fatalf("expected ErrTruncatedMessage, got %v", err)
	}
}
