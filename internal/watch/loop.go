// Package watch keeps the dist dir in sync with the content dir while the dev command runs.
//
// Filesystem notifications are only hints. Each settled path is reconciled against the
// current state of the disk: a path that exists is (re)processed and a path that is gone
// has its output removed, whatever event announced it.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/ssite/internal/build"
	"git.home.luguber.info/inful/ssite/internal/compose"
	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/metrics"
	"git.home.luguber.info/inful/ssite/internal/processor"
	"git.home.luguber.info/inful/ssite/internal/site"
	"git.home.luguber.info/inful/ssite/internal/source"
)

const (
	DefaultDebounce  = 2 * time.Second
	DefaultQueueSize = 256
)

// Request is one unit of work for the loop: a settled path or a full build.
type Request struct {
	Path      string
	FullBuild bool
}

type Options struct {
	Debounce  time.Duration
	QueueSize int
	Recorder  metrics.Recorder
}

// Loop owns every write to the dist dir while it runs. Requests from the debouncer and
// from Enqueue are handled one at a time in arrival order.
type Loop struct {
	site     *site.Site
	composer *compose.Composer
	builder  *build.Builder
	recorder metrics.Recorder
	debounce time.Duration

	queue     chan Request
	done      chan struct{}
	ready     chan struct{}
	readyOnce sync.Once
	doneOnce  sync.Once
}

func New(s *site.Site, builder *build.Builder, composer *compose.Composer, opts Options) *Loop {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if composer == nil {
		composer = compose.NewComposer(nil)
	}
	if builder == nil {
		builder = build.New(s, composer)
	}
	return &Loop{
		site:     s,
		composer: composer,
		builder:  builder,
		recorder: opts.Recorder,
		debounce: opts.Debounce,
		queue:    make(chan Request, opts.QueueSize),
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the content dir is being watched.
func (l *Loop) Ready() <-chan struct{} { return l.ready }

// Enqueue submits a request to the loop. It blocks while the queue is full and returns
// false once the loop has stopped.
func (l *Loop) Enqueue(req Request) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- req:
		return true
	case <-l.done:
		return false
	}
}

// Run watches the content dir until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.doneOnce.Do(func() { close(l.done) })

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return foundationerrors.WatchError("failed to create file watcher").WithCause(err).Fatal().Build()
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(l.site.ContentDir()); err != nil {
		return foundationerrors.WatchError("failed to watch content dir").
			WithContext("path", l.site.ContentDir()).WithCause(err).Fatal().Build()
	}
	l.addDirsRecursive(watcher, l.site.ContentDir())

	debouncer := NewDebouncer(l.debounce, func(path string) {
		l.Enqueue(Request{Path: path})
	})
	defer debouncer.Stop()

	go l.forwardEvents(ctx, watcher, debouncer)

	l.readyOnce.Do(func() { close(l.ready) })
	slog.Info("Watching content dir",
		logfields.Path(l.site.Rel(l.site.ContentDir())),
		slog.Duration("debounce", l.debounce))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch loop stopped")
			return nil
		case req := <-l.queue:
			if req.FullBuild {
				l.recorder.IncWatchEvent(metrics.WatchFullBuild)
				if _, err := l.builder.Build(ctx); err != nil && ctx.Err() == nil {
					slog.Error("Full build failed", logfields.Error(err))
				}
				continue
			}
			l.Handle(ctx, req.Path)
		}
	}
}

// forwardEvents feeds notifications into the debouncer. New directories are watched
// right away so files created inside them are not missed.
func (l *Loop) forwardEvents(ctx context.Context, w *fsnotify.Watcher, d *Debouncer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if site.Within(ev.Name, l.site.DistDir()) || ignoredName(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					l.addDirsRecursive(w, ev.Name)
				}
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
			d.Trigger(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				slog.Warn("Watch event queue overflowed; some changes may be missed", logfields.Error(err))
				continue
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (l *Loop) addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if site.Within(path, l.site.DistDir()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// Handle reconciles the output of one settled path with the current disk state.
func (l *Loop) Handle(ctx context.Context, path string) {
	switch {
	case site.Within(path, l.site.DistDir()),
		!site.Within(path, l.site.ContentDir()),
		!l.site.ValidContentPath(path),
		ignoredName(path):
		l.recorder.IncWatchEvent(metrics.WatchIgnore)
		return
	}

	if st, err := os.Stat(path); err == nil && st.IsDir() {
		l.recorder.IncWatchEvent(metrics.WatchDirAdded)
		for _, f := range l.site.FilesUnder(path) {
			l.process(ctx, f)
		}
		return
	}

	if source.IsFrameName(path) {
		l.recorder.IncWatchEvent(metrics.WatchCascade)
		l.cascade(ctx, path)
		return
	}

	l.recorder.IncWatchEvent(metrics.WatchProcess)
	l.process(ctx, path)
}

// cascade re-renders every page below the frame's directory. A frame only affects
// descendants, and only renderable files read frames.
func (l *Loop) cascade(ctx context.Context, frame string) {
	slog.Info("Frame changed; re-rendering subtree", logfields.Frame(l.site.Rel(frame)))
	for _, f := range l.site.FilesUnder(filepath.Dir(frame)) {
		if source.Classify(f).IsRenderable() {
			l.process(ctx, f)
		}
	}
}

func (l *Loop) process(ctx context.Context, path string) {
	fp, ok := processor.New(l.site, path, l.composer)
	if !ok {
		return
	}
	outcome, err := fp.Process(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("Failed to process file",
				logfields.Src(l.site.Rel(path)),
				slog.String("category", string(foundationerrors.GetCategory(err))),
				logfields.Error(err))
			l.recorder.IncFile(metrics.FileFailed)
		}
		return
	}
	l.recorder.IncFile(metrics.FileOutcome(outcome))
}
