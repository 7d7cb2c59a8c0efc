package value

import (
	"errors"
	"fmt"

	"github.com/danmuck/vhalctl/internal/protocol"
)

var (
	ErrUnknownValueType = errors.New("value: unknown value type")
	ErrTypeMismatch     = errors.New("value: type mismatch")
	ErrOutOfRange       = errors.New("value: out of range")
)

// UnknownValueTypeError carries a value type outside the known set.
type UnknownValueTypeError struct {
	Type protocol.ValueType
}

func (e UnknownValueTypeError) Error() string {
	return fmt.Sprintf("value: unknown value type 0x%x", uint32(e.Type))
}

func (e UnknownValueTypeError) Is(target error) bool {
	return target == ErrUnknownValueType
}

func mismatch(t protocol.ValueType, raw any) error {
	return fmt.Errorf("%w: %s does not accept %T", ErrTypeMismatch, t, raw)
}
