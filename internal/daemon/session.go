// Package daemon runs the dev session: build-only runners, dev runners in the background,
// an initial full build, then the watch loop until the context is canceled. A periodic
// resync and a metrics endpoint are optional.
package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/ssite/internal/build"
	"git.home.luguber.info/inful/ssite/internal/compose"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/markdown"
	"git.home.luguber.info/inful/ssite/internal/metrics"
	"git.home.luguber.info/inful/ssite/internal/runner"
	"git.home.luguber.info/inful/ssite/internal/site"
	"git.home.luguber.info/inful/ssite/internal/watch"
)

type Options struct {
	Debounce    time.Duration
	Resync      time.Duration // 0 disables the periodic full build
	MetricsAddr string        // empty disables the metrics endpoint

	// Runner process output; defaults to the session's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Session is one dev run over a site.
type Session struct {
	site     *site.Site
	opts     Options
	registry *prom.Registry
	recorder metrics.Recorder
	executor *runner.Executor
	builder  *build.Builder
	loop     *watch.Loop
}

func NewSession(s *site.Site, opts Options) *Session {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	d := &Session{site: s, opts: opts, recorder: metrics.NoopRecorder{}}
	if opts.MetricsAddr != "" {
		d.registry = newRegistry()
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	composer := compose.NewComposer(markdown.NewRenderer())
	d.executor = runner.NewExecutor(s.RootDir()).WithOutput(opts.Stdout, opts.Stderr).WithRecorder(d.recorder)
	d.builder = build.New(s, composer).WithRecorder(d.recorder)
	d.loop = watch.New(s, d.builder, composer, watch.Options{Debounce: opts.Debounce, Recorder: d.recorder})
	return d
}

// Ready is closed once the watch loop is watching the content dir.
func (d *Session) Ready() <-chan struct{} { return d.loop.Ready() }

// Run blocks until ctx is canceled or the watch loop fails to start. Dev runners are
// stopped and waited for before it returns.
func (d *Session) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	if d.opts.MetricsAddr != "" {
		ms, err := startMetricsServer(d.opts.MetricsAddr, d.registry)
		if err != nil {
			cancel()
			return err
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := ms.Stop(shutdownCtx); err != nil {
				slog.Warn("Metrics server shutdown error", logfields.Error(err))
			}
		}()
	}

	runners := d.site.Runners()
	if err := d.executor.RunBuildOnly(runCtx, runners); err != nil {
		slog.Warn("Some build runners failed", logfields.Error(err))
	}
	devRunners := d.executor.StartDev(runCtx, runners)
	defer func() {
		cancel()
		devRunners.Wait()
	}()

	if _, err := d.builder.Build(runCtx); err != nil {
		// Build only fails when canceled, which is a normal shutdown here.
		return nil
	}

	if d.opts.Resync > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleResync(d.opts.Resync, d.loop); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
		slog.Info("Periodic resync enabled", slog.Duration("interval", d.opts.Resync))
	}

	return d.loop.Run(runCtx)
}
