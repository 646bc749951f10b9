package history

import (
	"reflect"
	"sync"

	"go-decimal-calculator/internal/calculation"
)

// Observers is an ordered registry. The zero value is ready to use.
// Registration may happen concurrently with Notify; delivery itself is
// synchronous on the notifying goroutine.
type Observers struct {
	mu   sync.RWMutex
	list []Observer
}

func (o *Observers) Add(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, obs)
}

// Remove drops the first registration of obs and reports whether one was
// found. Observers of a non-comparable type, such as func adapters, can be
// registered but never removed.
func (o *Observers) Remove(obs Observer) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, cur := range o.list {
		if sameObserver(cur, obs) {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return true
		}
	}
	return false
}

func (o *Observers) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.list)
}

// Notify calls every observer in registration order and returns the first
// error, skipping the observers after it. Observers registered during a
// Notify are not called by it.
func (o *Observers) Notify(c *calculation.Calculation) error {
	o.mu.RLock()
	list := o.list
	o.mu.RUnlock()

	for _, obs := range list {
		if err := obs.Update(c); err != nil {
			return err
		}
	}
	return nil
}

// sameObserver is == without the runtime panic on non-comparable types.
func sameObserver(a, b Observer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || tb == nil {
		return ta == tb
	}
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
