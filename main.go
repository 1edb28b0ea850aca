package main

import (
	"log/slog"
	"os"
	"time"

	"okpal/generate"
	"okpal/inspect"
	"okpal/parallel"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

type cli struct {
	LogLevel slog.Level      `help:"Log level (debug, info, warn, error)" default:"info"`
	NoColor  bool            `help:"Disable colored log output" default:"false"`
	Workers  int             `help:"Number of worker goroutines, 0 for one per CPU" default:"0"`
	Config   kong.ConfigFlag `help:"Load flag defaults from a JSON file"`

	Generate generate.CLICmd `cmd:"" help:"Build a palette of perceptually distinct colors"`
	Inspect  inspect.CLICmd  `cmd:"" help:"Examine single colors"`
}

func newLogger(w *os.File, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor || !(isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())),
	}))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("okpal"),
		kong.Description("Generate palettes of colors that stay distinguishable, measured in Oklab."),
		kong.UsageOnError(),
		kong.DefaultEnvars("OKPAL"),
		kong.Configuration(kong.JSON, "~/.config/okpal.json", "okpal.json"),
	)

	logger := newLogger(os.Stderr, c.LogLevel, c.NoColor)
	slog.SetDefault(logger)

	workers := parallel.Workers(c.Workers)
	logger.Debug("running", "command", kctx.Command(), "workers", workers)
	if err := kctx.Run(logger, workers); err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
