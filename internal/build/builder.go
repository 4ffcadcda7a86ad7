package build

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ssite/internal/compose"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/metrics"
	"git.home.luguber.info/inful/ssite/internal/processor"
	"git.home.luguber.info/inful/ssite/internal/site"
)

// Builder performs full builds of one site.
type Builder struct {
	site     *site.Site
	composer *compose.Composer
	recorder metrics.Recorder
}

func New(s *site.Site, composer *compose.Composer) *Builder {
	if composer == nil {
		composer = compose.NewComposer(nil)
	}
	return &Builder{site: s, composer: composer, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder (for the dev metrics endpoint and tests).
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// Build processes every content file and then cleans the dist dir. Per-file failures are
// logged and counted; the returned error is non-nil only when ctx is canceled.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		ID:           uuid.NewString(),
		StartTime:    start,
		Destinations: DestinationSet{},
	}
	log := slog.Default().With(logfields.BuildID(result.ID))
	log.Info("Starting build", logfields.Path(b.site.Rel(b.site.ContentDir())))

	for _, src := range b.site.ContentEntries() {
		if err := ctx.Err(); err != nil {
			return b.finish(log, result, StatusCanceled), err
		}
		fp, ok := processor.New(b.site, src, b.composer)
		if !ok {
			continue
		}
		outcome, err := fp.WithLogger(log).Process(ctx)
		if err != nil {
			log.Error("Failed to process file", logfields.Src(b.site.Rel(src)), logfields.Error(err))
			result.Failed++
			b.recorder.IncFile(metrics.FileFailed)
			continue
		}
		b.recorder.IncFile(metrics.FileOutcome(outcome))
		switch outcome {
		case processor.Rendered:
			result.Rendered++
		case processor.Copied:
			result.Copied++
		case processor.Failed:
			result.Failed++
		}
		// A failed render keeps its previous output.
		if outcome != processor.Removed {
			result.Destinations.Add(fp.Dst)
		}
	}

	removed, err := b.Clean(result.Destinations)
	result.Removed = removed
	if err != nil {
		log.Error("Failed to clean dist dir", logfields.Error(err))
	}

	status := StatusSuccess
	if result.Failed > 0 || err != nil {
		status = StatusWarning
	}
	return b.finish(log, result, status), nil
}

func (b *Builder) finish(log *slog.Logger, result *Result, status Status) *Result {
	result.Status = status
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	b.recorder.ObserveBuildDuration(result.Duration)
	b.recorder.IncBuildOutcome(metrics.BuildOutcome(status))

	log.Info("Build finished",
		slog.String("status", string(status)),
		slog.Int("rendered", result.Rendered),
		slog.Int("copied", result.Copied),
		slog.Int("failed", result.Failed),
		slog.Int("removed", result.Removed),
		logfields.Duration(result.Duration))
	return result
}

// Clean removes every file below the dist dir that is not in keep, then prunes
// directories left empty. The dist dir itself is kept. It returns the number of files
// removed and the first removal error.
func (b *Builder) Clean(keep DestinationSet) (int, error) {
	distDir := b.site.DistDir()
	files, dirs := b.site.DistEntries()
	var stale []string
	for _, path := range files {
		if !keep.Has(path) {
			stale = append(stale, path)
		}
	}

	var firstErr error
	removed := 0
	for _, path := range stale {
		if err := processor.RemoveFileAndEmptyParent(path, distDir); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
		b.recorder.IncStaleRemoved()
		slog.Info("Removed stale output", logfields.Dst(b.site.Rel(path)))
	}

	// Deepest first so a chain of empty directories collapses in one pass.
	slices.SortFunc(dirs, func(a, c string) int { return len(c) - len(a) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		_ = os.Remove(dir)
	}
	return removed, firstErr
}
