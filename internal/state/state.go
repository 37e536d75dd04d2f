// Package state holds the client's shared application state: the session
// user and the theme mode. Both holders are created once at the root and
// passed to whatever needs them; observers register with Subscribe and
// release with the returned func.
package state

import (
	"sync"
)

// Persister is the storage the holders write through to.
// *store.Store satisfies it.
type Persister interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

// observers is a registry of callbacks keyed by subscription id.
type observers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (o *observers[T]) add(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers[T]) notify(v T) {
	o.mu.Lock()
	fns := make([]func(T), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (o *observers[T]) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.fns)
}
