package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/S1riyS/tfs/internal/config"
	"github.com/S1riyS/tfs/pkg/logging"
)

type Globals struct {
	Config   string `help:"Path to the YAML config file." default:"configs/config.yaml" type:"path"`
	LogLevel string `help:"Override the logging level (debug|info|warn|error)."`
}

type CLI struct {
	Globals

	Serve ServeCmd `cmd:"" default:"1" help:"Run the HTTP API server."`
	Cp    CpCmd    `cmd:"" help:"Import a host file into a fresh filesystem and print what was stored."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("tfs"),
		kong.Description("In-memory virtual file system."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}

// setup loads the config (falling back to defaults when the file is
// missing) and returns a root context carrying the process logger.
func (g *Globals) setup() (*config.Config, context.Context, *slog.Logger) {
	var cfg *config.Config
	if _, err := os.Stat(g.Config); err == nil {
		cfg = config.MustLoad(g.Config)
	} else {
		cfg, err = config.Defaults()
		if err != nil {
			panic(err)
		}
	}
	if g.LogLevel != "" {
		cfg.App.LogLevel = g.LogLevel
	}

	logger := logging.New(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat == "pretty")

	ctx := logging.MakeContextWithLogger(context.Background(), logger)
	return cfg, ctx, logger
}
