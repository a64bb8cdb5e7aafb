package errors

import (
	"fmt"
	"sync"
)

type registry struct {
	mu       sync.RWMutex
	codes    map[int]*Errno
	services map[int]string
}

var defaultRegistry = &registry{
	codes:    make(map[int]*Errno),
	services: make(map[int]string),
}

func (r *registry) add(e *Errno) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.codes[e.Code]; ok {
		return fmt.Errorf("errno code %d already registered: %s", e.Code, existing.MessageEN)
	}
	r.codes[e.Code] = e
	return nil
}

// Lookup returns the Errno registered under code.
func Lookup(code int) (*Errno, bool) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	e, ok := defaultRegistry.codes[code]
	return e, ok
}

// RegisterService names a service code. Registering the same pair twice is a
// no-op; claiming a code owned by another name panics.
func RegisterService(code int, name string) {
	r := defaultRegistry
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.services[code]; ok && owner != name {
		panic(fmt.Sprintf("service code %d is owned by %q, not %q", code, owner, name))
	}
	r.services[code] = name
}

// GetServiceName returns the name registered for a service code.
func GetServiceName(code int) (string, bool) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	name, ok := defaultRegistry.services[code]
	return name, ok
}
