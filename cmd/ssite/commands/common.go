package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ssite/internal/config"
	"git.home.luguber.info/inful/ssite/internal/site"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Dir     string           `short:"d" help:"Site root directory containing ssite.toml" default:"."`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"1" help:"Run build runners, then build the site into the dist dir"`
	Dev   DevCmd   `cmd:"" help:"Build the site, then rebuild changed files while watching the content dir"`
	Init  InitCmd  `cmd:"" help:"Write an example ssite.toml and content dir"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadSite reads the configuration under the root dir.
func loadSite(root *CLI) (*site.Site, error) {
	cfg, err := config.Load(root.Dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded configuration",
		slog.String("file", cfg.File),
		slog.String("content_dir", cfg.ContentDir),
		slog.String("dist_dir", cfg.DistDir),
		slog.Int("runners", len(cfg.Runners)))
	return site.New(cfg), nil
}
