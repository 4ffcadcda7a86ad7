package helpers

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/ssite/internal/metrics"
)

// RecorderSpy is a metrics.Recorder that counts calls for assertions.
type RecorderSpy struct {
	mu           sync.Mutex
	Files        map[metrics.FileOutcome]int
	Builds       map[metrics.BuildOutcome]int
	Durations    int
	StaleRemoved int
	WatchEvents  map[metrics.WatchAction]int
	Runners      map[metrics.RunnerResult]int
}

func NewRecorderSpy() *RecorderSpy {
	return &RecorderSpy{
		Files:       map[metrics.FileOutcome]int{},
		Builds:      map[metrics.BuildOutcome]int{},
		WatchEvents: map[metrics.WatchAction]int{},
		Runners:     map[metrics.RunnerResult]int{},
	}
}

func (r *RecorderSpy) IncFile(o metrics.FileOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files[o]++
}

func (r *RecorderSpy) ObserveBuildDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Durations++
}

func (r *RecorderSpy) IncBuildOutcome(o metrics.BuildOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Builds[o]++
}

func (r *RecorderSpy) IncStaleRemoved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StaleRemoved++
}

func (r *RecorderSpy) IncWatchEvent(a metrics.WatchAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.WatchEvents[a]++
}

func (r *RecorderSpy) IncRunner(res metrics.RunnerResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Runners[res]++
}

// RunnerCount returns the number of runner exits recorded with res.
func (r *RecorderSpy) RunnerCount(res metrics.RunnerResult) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Runners[res]
}
