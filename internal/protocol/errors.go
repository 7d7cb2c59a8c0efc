package protocol

import (
	"errors"

	"github.com/danmuck/vhalctl/internal/protocol/frame"
)

var (
	ErrConnectionClosed = frame.ErrConnectionClosed
	ErrTruncatedMessage = frame.ErrTruncatedMessage
	ErrMalformedMessage = errors.New("protocol: malformed message body")
	ErrNilMessage       = errors.New("protocol: nil message")
)
