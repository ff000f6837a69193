package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config   string `short:"c" type:"path" help:"Path to the hubctl YAML config file."`
	LogLevel string `name:"log-level" help:"Override the configured log level."`
	Date     string `help:"Dashboard date (YYYY-MM-DD). Defaults to the configured date or today."`

	Serve        serveCmd        `cmd:"" help:"Serve the hub dashboard over HTTP."`
	Summary      summaryCmd      `cmd:"" help:"Print visit, feedback and control tower totals."`
	Attention    attentionCmd    `cmd:"" help:"List home test drives that need dispatch now."`
	Productivity productivityCmd `cmd:"" help:"Print RM utilization, lowest first."`
	Manifest     manifestCmd     `cmd:"" help:"Manage widget manifests."`
}

// runContext is handed to every command's Run method.
type runContext struct {
	ctx    context.Context
	out    io.Writer
	global *cli
}

func (r *runContext) app() (*app, error) {
	cfg, err := loadConfig(r.global.Config)
	if err != nil {
		return nil, err
	}
	if r.global.LogLevel != "" {
		cfg.Log.Level = r.global.LogLevel
	}
	logger := newLogger(os.Stderr, cfg.Log)
	return newApp(r.ctx, cfg, logger)
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("hubctl"),
		kong.Description("Hub summary dashboard: serve it or print its views."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&runContext{ctx: context.Background(), out: os.Stdout, global: &root})
	ctx.FatalIfErrorf(err)
}
