package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/ssite/internal/daemon"
	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
)

// DevCmd implements the 'dev' command.
type DevCmd struct {
	Debounce    time.Duration `help:"Quiet window before a changed path is processed" default:"2s"`
	Resync      time.Duration `help:"Interval of a full rebuild that repairs missed events (0 disables)" default:"0s"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
}

func (d *DevCmd) Run(_ *Global, root *CLI) error {
	if d.Debounce <= 0 {
		return foundationerrors.ValidationError("debounce must be > 0").
			WithContext("debounce", d.Debounce.String()).Build()
	}
	if d.Resync < 0 {
		return foundationerrors.ValidationError("resync must be >= 0").
			WithContext("resync", d.Resync.String()).Build()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := loadSite(root)
	if err != nil {
		return err
	}
	return daemon.NewSession(s, d.options()).Run(ctx)
}

func (d *DevCmd) options() daemon.Options {
	return daemon.Options{
		Debounce:    d.Debounce,
		Resync:      d.Resync,
		MetricsAddr: d.MetricsAddr,
	}
}
