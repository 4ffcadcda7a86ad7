package watch

import (
	"sync"
	"time"
)

// Debouncer delays a path until no event has been seen for it during the quiet window.
// Each path has its own timer; emit is called from the timer goroutine.
type Debouncer struct {
	window time.Duration
	emit   func(path string)

	mu      sync.Mutex
	pending map[string]*pendingPath
	stopped bool
}

type pendingPath struct {
	timer *time.Timer
}

func NewDebouncer(window time.Duration, emit func(path string)) *Debouncer {
	return &Debouncer{
		window:  window,
		emit:    emit,
		pending: make(map[string]*pendingPath),
	}
}

// Trigger (re)starts the quiet window of path.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	p := &pendingPath{}
	p.timer = time.AfterFunc(d.window, func() { d.fire(path, p) })
	d.pending[path] = p
}

func (d *Debouncer) fire(path string, p *pendingPath) {
	d.mu.Lock()
	if d.stopped || d.pending[path] != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()
	d.emit(path)
}

// Pending returns the number of paths still inside their quiet window.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels all pending timers. Triggers after Stop are dropped.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}
