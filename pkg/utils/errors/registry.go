package errors

import (
	"fmt"
	"sync"
)

var registry = struct {
	sync.RWMutex
	codes map[int]*Errno
}{codes: map[int]*Errno{}}

// Register records e and returns it. Registering a code twice panics, so
// duplicates surface at init time.
func Register(e *Errno) *Errno {
	registry.Lock()
	defer registry.Unlock()

	if prev, dup := registry.codes[e.Code]; dup {
		panic(fmt.Sprintf("errno %d registered twice (%q, %q)", e.Code, prev.MessageEN, e.MessageEN))
	}
	registry.codes[e.Code] = e
	return e
}

// Lookup finds a registered Errno by code.
func Lookup(code int) (*Errno, bool) {
	registry.RLock()
	e, ok := registry.codes[code]
	registry.RUnlock()
	return e, ok
}

// RegistrySize returns how many codes are registered.
func RegistrySize() int {
	registry.RLock()
	defer registry.RUnlock()
	return len(registry.codes)
}
