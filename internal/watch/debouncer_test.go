package watch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitLog struct {
	mu    sync.Mutex
	paths []string
}

func (e *emitLog) emit(p string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, p)
}

func (e *emitLog) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.paths...)
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	var log emitLog
	d := NewDebouncer(50*time.Millisecond, log.emit)
	defer d.Stop()

	for range 10 {
		d.Trigger("a.md")
		time.Sleep(5 * time.Millisecond)
	}
	d.Trigger("b.md")

	require.Eventually(t, func() bool { return len(log.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"a.md", "b.md"}, log.snapshot())
	assert.Zero(t, d.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, log.snapshot(), 2, "no duplicate emits")
}

func TestDebouncerWaitsForQuietWindow(t *testing.T) {
	var log emitLog
	d := NewDebouncer(200*time.Millisecond, log.emit)
	defer d.Stop()

	d.Trigger("a.md")
	time.Sleep(100 * time.Millisecond)
	d.Trigger("a.md")
	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, log.snapshot(), "timer must restart on every event")
	assert.Equal(t, 1, d.Pending())

	require.Eventually(t, func() bool { return len(log.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestDebouncerStopDropsPending(t *testing.T) {
	var log emitLog
	d := NewDebouncer(30*time.Millisecond, log.emit)

	d.Trigger("a.md")
	d.Stop()
	d.Trigger("b.md")

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, log.snapshot())
	assert.Zero(t, d.Pending())
}

func TestIgnoredName(t *testing.T) {
	cases := map[string]bool{
		"/c/page.md":      false,
		"/c/_frame.html":  false,
		"/c/.page.md.swp": true,
		"/c/page.md~":     true,
		"/c/#page.md#":    true,
		"/c/.#page.md":    true,
		"/c/Thumbs.db":    true,
		"/c/4913.tmp":     true,
		"/c/notes.swx":    true,
		"/c/.htaccess":    false,
		"/c/.nojekyll":    false,
		"/c/.well-known":  false,
		"/c/#":            false,
	}
	for path, want := range cases {
		assert.Equal(t, want, ignoredName(path), path)
	}
}
