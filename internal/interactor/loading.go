package interactor

import (
	"sync"

	"github.com/anselmoalexandre/tivi/internal/observe"
)

// LoadingCounter tracks overlapping units of background work and exposes a
// single observable "anything loading" flag.
type LoadingCounter struct {
	mu      sync.Mutex
	count   int
	loading *observe.Value[bool]
}

func NewLoadingCounter() *LoadingCounter {
	return &LoadingCounter{loading: observe.NewValueOf(false)}
}

// AddLoader marks one unit of work as started.
func (l *LoadingCounter) AddLoader() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	if l.count == 1 {
		l.loading.Set(true)
	}
}

// RemoveLoader marks one unit of work as finished.
func (l *LoadingCounter) RemoveLoader() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return
	}
	l.count--
	if l.count == 0 {
		l.loading.Set(false)
	}
}

// Observable returns the loading flag, true while any loader is active.
func (l *LoadingCounter) Observable() *observe.Value[bool] {
	return l.loading
}
