// Package runner executes the external tools declared in the site configuration.
//
// Build mode runs each runner to completion, one after the other, in declaration order.
// Dev mode starts every dev runner with its watch arguments in its own goroutine and
// keeps it running until the session context is canceled.
package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/ssite/internal/config"
	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/metrics"
)

const waitDelay = 3 * time.Second

// Executor spawns runner processes relative to a site root.
type Executor struct {
	rootDir  string
	stdout   io.Writer
	stderr   io.Writer
	recorder metrics.Recorder
}

func NewExecutor(rootDir string) *Executor {
	return &Executor{
		rootDir:  rootDir,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		recorder: metrics.NoopRecorder{},
	}
}

// WithOutput redirects the processes' standard streams.
func (e *Executor) WithOutput(stdout, stderr io.Writer) *Executor {
	e.stdout, e.stderr = stdout, stderr
	return e
}

func (e *Executor) WithRecorder(r metrics.Recorder) *Executor {
	if r != nil {
		e.recorder = r
	}
	return e
}

// RunBuild runs the runners that participate in build mode, sequentially. A failing runner
// is logged and does not stop the others; all failures are returned joined.
func (e *Executor) RunBuild(ctx context.Context, runners []config.Runner) error {
	var errs []error
	for _, r := range runners {
		if !r.Runs(config.RunModeBuild) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.run(ctx, r, r.Args); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunBuildOnly runs, sequentially, the build runners that have no dev mode. The dev
// command uses it before starting the dev runners.
func (e *Executor) RunBuildOnly(ctx context.Context, runners []config.Runner) error {
	var only []config.Runner
	for _, r := range runners {
		if !r.Runs(config.RunModeDev) {
			only = append(only, r)
		}
	}
	return e.RunBuild(ctx, only)
}

// Session tracks the dev runner goroutines.
type Session struct {
	wg sync.WaitGroup
}

// Wait blocks until every dev runner has exited.
func (s *Session) Wait() { s.wg.Wait() }

// StartDev starts every dev runner with its watch arguments. The processes are killed
// when ctx is canceled.
func (e *Executor) StartDev(ctx context.Context, runners []config.Runner) *Session {
	sess := &Session{}
	for _, r := range runners {
		if !r.Runs(config.RunModeDev) {
			continue
		}
		sess.wg.Add(1)
		go func(r config.Runner) {
			defer sess.wg.Done()
			if err := e.run(ctx, r, r.WatchArgs); err != nil && ctx.Err() != nil {
				slog.Info("Runner stopped", logfields.Runner(r.Name))
			}
		}(r)
	}
	return sess
}

// Dir returns the working directory of r.
func (e *Executor) Dir(r config.Runner) string {
	switch {
	case r.Cwd == "":
		return e.rootDir
	case filepath.IsAbs(r.Cwd):
		return r.Cwd
	default:
		return filepath.Join(e.rootDir, r.Cwd)
	}
}

func (e *Executor) run(ctx context.Context, r config.Runner, args []string) error {
	log := slog.Default().With(logfields.Runner(r.Name))

	// #nosec G204 - commands come from the site's own configuration
	cmd := exec.CommandContext(ctx, r.Cmd, args...)
	cmd.Dir = e.Dir(r)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	// Grandchildren may keep the output pipes open after the runner is killed.
	cmd.WaitDelay = waitDelay

	log.Info("Starting runner", slog.String("cmd", r.Cmd), slog.Any("args", args), logfields.Path(cmd.Dir))
	start := time.Now()
	if err := cmd.Start(); err != nil {
		e.recorder.IncRunner(metrics.RunnerSpawnFail)
		log.Error("Failed to start runner", logfields.Error(err))
		return foundationerrors.RunnerError("failed to start runner").
			WithContext("runner", r.Name).WithCause(err).Build()
	}
	if err := cmd.Wait(); err != nil {
		e.recorder.IncRunner(metrics.RunnerFailed)
		if ctx.Err() == nil {
			log.Error("Runner failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		}
		return foundationerrors.RunnerError("runner failed").
			WithContext("runner", r.Name).WithCause(err).Build()
	}
	e.recorder.IncRunner(metrics.RunnerSucceeded)
	log.Info("Runner finished", logfields.Duration(time.Since(start)))
	return nil
}
