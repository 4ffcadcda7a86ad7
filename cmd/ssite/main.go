package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ssite/cmd/ssite/commands"
	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("ssite"),
		kong.Description("Static site builder: markdown and HTML content wrapped in layout frames."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
