package session

import (
	"errors"
	"fmt"

	"github.com/danmuck/vhalctl/internal/protocol"
)

var (
	ErrSessionNotReady    = errors.New("session: not bootstrapped")
	ErrUnexpectedResponse = errors.New("session: unexpected response")
	ErrRemoteStatus       = errors.New("session: remote reported failure")
)

// RemoteStatusError carries a non-OK status from a response message.
type RemoteStatusError struct {
	Type   protocol.MsgType
	Status protocol.Status
}

func (e RemoteStatusError) Error() string {
	return fmt.Sprintf("session: %s returned %s", e.Type, e.Status)
}

func (e RemoteStatusError) Is(target error) bool {
	return target == ErrRemoteStatus
}
