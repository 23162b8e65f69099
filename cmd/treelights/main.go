package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/coreman2200/treelights/internal/config"
)

const (
	flagConfig   = "config"
	flagCoords   = "coords"
	flagEffect   = "effect"
	flagDuration = "duration"
	flagLogLevel = "log-level"
	flagCount    = "count"
	flagPort     = "port"
	flagWrite    = "write-default"
	flagSeconds  = "seconds"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	runFlags := []cli.Flag{
		&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "path to config.yaml (defaults when omitted)"},
		&cli.StringFlag{Name: flagCoords, Usage: "CSV of x,y,z per LED in index order"},
		&cli.StringFlag{Name: flagEffect, Aliases: []string{"e"}, Usage: "run one effect and turn auto-cycling off"},
		&cli.Float64Flag{Name: flagDuration, Aliases: []string{"d"}, Usage: "seconds to run; omit to run until interrupted"},
		&cli.StringFlag{Name: flagLogLevel, Usage: "trace | debug | info | warn | error"},
	}
	return &cli.App{
		Name:   "treelights",
		Usage:  "drive a 3D-mapped LED Christmas tree",
		Flags:  runFlags,
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "render effects and stream them to the tree",
				Flags:  runFlags,
				Action: runAction,
			},
			{
				Name:   "effects",
				Usage:  "list available effects",
				Action: effectsAction,
			},
			{
				Name:      "coords",
				Usage:     "load a coordinate file and print its geometry",
				ArgsUsage: "[PATH]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagCoords, Usage: "CSV of x,y,z per LED"},
					&cli.IntFlag{Name: flagCount, Usage: "expected LED count"},
				},
				Action: coordsAction,
			},
			{
				Name:  "listen",
				Usage: "receive DDP frames and log them",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagPort, Value: 4048, Usage: "UDP port"},
					&cli.StringFlag{Name: flagLogLevel, Usage: "log level"},
				},
				Action: listenAction,
			},
			{
				Name:  "schedule",
				Usage: "print when the auto-cycle playlist switches and crossfades",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "path to config.yaml"},
					&cli.Float64Flag{Name: flagSeconds, Usage: "simulated seconds (default: one full cycle)"},
				},
				Action: scheduleAction,
			},
			{
				Name:      "config",
				Usage:     "print effective configuration values",
				ArgsUsage: "[KEY]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "path to config.yaml"},
					&cli.StringFlag{Name: flagWrite, Usage: "write the default configuration to PATH and exit"},
				},
				Action: configAction,
			},
		},
	}
}

// loadConfig returns defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(out io.Writer, l config.Logging) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), &config.Error{Key: "logging.level", Msg: err.Error()}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	var w io.Writer = out
	if l.Format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func exitErr(err error) error {
	return cli.Exit(err.Error(), 1)
}
