package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/daqforge/serialmail-logger/internal/ingest"
	"github.com/daqforge/serialmail-logger/internal/sink"
)

var runCmd = cli.Command{
	Name:   "run",
	Usage:  "capture SerialMail frames from a serial port and persist them",
	Action: RunLogger,

	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "serial-path",
			Value: "/dev/ttyUSB0",
			Usage: "Serial device the instrument is attached to",
		},
		&cli.IntFlag{
			Name:  "serial-baud",
			Value: 115200,
			Usage: "Baud rate of the serial connection",
		},
		&cli.DurationFlag{
			Name:  "read-timeout",
			Value: 100 * time.Millisecond,
			Usage: "Upper bound on a single blocking serial read",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Value: ".",
			Usage: "Directory rotated output files are written to",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "json",
			Usage: "Output format: json, csv, or sqlite",
		},
		&cli.DurationFlag{
			Name:  "rotate-interval",
			Value: sink.DefaultRotateInterval,
			Usage: "How long an output file stays active before rotation",
		},
		&cli.DurationFlag{
			Name:  "stats-interval",
			Usage: "Interval between ingest statistics log lines (0 disables)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Optional YAML config file; explicit flags take precedence",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress per-record console output",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "INFO",
			Usage: "Log level: DEBUG, INFO, WARN, or ERROR",
		},
	},
}

func RunLogger(ctx context.Context, cmd *cli.Command) error {
	options, err := ingest.GetOptions(cmd)
	if err != nil {
		return fmt.Errorf("failed to get logger options: %v", err)
	}

	slog.SetLogLoggerLevel(options.SlogLevel())

	ing, err := ingest.New(options)
	if err != nil {
		return fmt.Errorf("failed to construct ingestor: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	return ing.Run(ctx, sigCh)
}

func main() {
	if err := runCmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
