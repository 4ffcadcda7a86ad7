package build

import (
	"slices"
	"time"
)

// Status represents the outcome of a build execution.
type Status string

const (
	// StatusSuccess indicates every file was processed.
	StatusSuccess Status = "success"

	// StatusWarning indicates the build completed but some files failed to render or write.
	StatusWarning Status = "warning"

	// StatusCanceled indicates the context was canceled between files.
	StatusCanceled Status = "canceled"
)

// Result contains the outcome of one full build.
type Result struct {
	ID        string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Rendered int
	Copied   int
	Failed   int
	Removed  int

	// Destinations holds every output path the build produced or kept.
	Destinations DestinationSet
}

// DestinationSet is the set of output paths produced by one full build.
type DestinationSet map[string]struct{}

func (s DestinationSet) Add(path string) { s[path] = struct{}{} }

func (s DestinationSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Sorted returns the paths in lexical order.
func (s DestinationSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
