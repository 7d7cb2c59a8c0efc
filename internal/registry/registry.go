package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danmuck/vhalctl/internal/protocol"
)

var ErrUnknownProperty = errors.New("registry: unknown property")

// UnknownPropertyError reports a lookup for a property missing from the
// most recently loaded config set.
type UnknownPropertyError struct {
	Prop uint32
}

func (e UnknownPropertyError) Error() string {
	return fmt.Sprintf("registry: unknown property 0x%08x", e.Prop)
}

func (e UnknownPropertyError) Is(target error) bool {
	return target == ErrUnknownProperty
}

// Entry is one property id and its declared value type.
type Entry struct {
	Prop      uint32
	ValueType protocol.ValueType
}

// Registry maps property ids to value types. It has no default type: every
// lookup is either a hit or an UnknownPropertyError.
type Registry struct {
	mu    sync.RWMutex
	types map[uint32]protocol.ValueType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{types: make(map[uint32]protocol.ValueType)}
}

// Load replaces every entry with configs. Later duplicates win.
func (r *Registry) Load(configs []protocol.PropConfig) {
	next := make(map[uint32]protocol.ValueType, len(configs))
	for _, cfg := range configs {
		next[cfg.Prop] = cfg.ValueType
	}
	r.mu.Lock()
	r.types = next
	r.mu.Unlock()
}

// Lookup returns the value type declared for prop.
func (r *Registry) Lookup(prop uint32) (protocol.ValueType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[prop]
	if !ok {
		return 0, UnknownPropertyError{Prop: prop}
	}
	return t, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// List returns all entries ordered by property id.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	list := make([]Entry, 0, len(r.types))
	for prop, t := range r.types {
		list = append(list, Entry{Prop: prop, ValueType: t})
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Prop < list[j].Prop
	})
	return list
}
