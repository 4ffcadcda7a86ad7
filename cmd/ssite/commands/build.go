package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/ssite/internal/build"
	"git.home.luguber.info/inful/ssite/internal/compose"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/markdown"
	"git.home.luguber.info/inful/ssite/internal/runner"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := loadSite(root)
	if err != nil {
		return err
	}

	if err := runner.NewExecutor(s.RootDir()).RunBuild(ctx, s.Runners()); err != nil {
		slog.Warn("Some build runners failed", logfields.Error(err))
	}

	res, err := build.New(s, compose.NewComposer(markdown.NewRenderer())).Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Built %s: %d rendered, %d copied, %d removed, %d failed\n",
		s.Rel(s.DistDir()), res.Rendered, res.Copied, res.Removed, res.Failed)
	return nil
}
