// cmd/folio/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"folio/internal/logfields"
)

var version = "dev"

// CLI is the command tree and its global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file." default:"site.yaml"`
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Build BuildCmd `cmd:"" help:"Build the site into the output directory."`
	Watch WatchCmd `cmd:"" help:"Build the site, then rebuild whenever sources change."`
	Serve ServeCmd `cmd:"" help:"Build, watch and preview the site with live reload."`
	New   NewCmd   `cmd:"" help:"Create a new site or post."`
}

// AfterApply runs after flag parsing and installs the default logger.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("folio"),
		kong.Description("A static site generator for folders of documents."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(&cli); err != nil {
		slog.Error("Command failed", logfields.Error(err))
		stop()
		os.Exit(1)
	}
}
