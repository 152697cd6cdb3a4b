package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/daqforge/serialmail-logger/internal/sink"
)

// Options collects everything the ingest loop needs for one run.
type Options struct {
	SerialPath  string
	SerialBaud  int
	ReadTimeout time.Duration

	OutputDir      string
	Format         string
	RotateInterval time.Duration

	StatsInterval time.Duration
	Quiet         bool
	LogLevel      string
}

// fileConfig is the YAML shape of --config. Only fields the operator left at
// their flag defaults are taken from the file; explicit flags win.
type fileConfig struct {
	Serial struct {
		Path        string        `yaml:"path"`
		Baud        int           `yaml:"baud"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"serial"`
	Output struct {
		Dir            string        `yaml:"dir"`
		Format         string        `yaml:"format"`
		RotateInterval time.Duration `yaml:"rotate_interval"`
	} `yaml:"output"`
	Log struct {
		Level         string        `yaml:"level"`
		StatsInterval time.Duration `yaml:"stats_interval"`
		Quiet         bool          `yaml:"quiet"`
	} `yaml:"log"`
}

// GetOptions materializes Options from the CLI command, merging in an
// optional YAML config file.
func GetOptions(cmd *cli.Command) (*Options, error) {
	options := &Options{
		SerialPath:     cmd.String("serial-path"),
		SerialBaud:     cmd.Int("serial-baud"),
		ReadTimeout:    cmd.Duration("read-timeout"),
		OutputDir:      cmd.String("output-dir"),
		Format:         cmd.String("format"),
		RotateInterval: cmd.Duration("rotate-interval"),
		StatsInterval:  cmd.Duration("stats-interval"),
		Quiet:          cmd.Bool("quiet"),
		LogLevel:       cmd.String("log-level"),
	}

	if path := cmd.String("config"); path != "" {
		if err := applyConfigFile(path, cmd, options); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func applyConfigFile(path string, cmd *cli.Command, options *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	if !cmd.IsSet("serial-path") && cfg.Serial.Path != "" {
		options.SerialPath = cfg.Serial.Path
	}
	if !cmd.IsSet("serial-baud") && cfg.Serial.Baud != 0 {
		options.SerialBaud = cfg.Serial.Baud
	}
	if !cmd.IsSet("read-timeout") && cfg.Serial.ReadTimeout != 0 {
		options.ReadTimeout = cfg.Serial.ReadTimeout
	}
	if !cmd.IsSet("output-dir") && cfg.Output.Dir != "" {
		options.OutputDir = cfg.Output.Dir
	}
	if !cmd.IsSet("format") && cfg.Output.Format != "" {
		options.Format = cfg.Output.Format
	}
	if !cmd.IsSet("rotate-interval") && cfg.Output.RotateInterval != 0 {
		options.RotateInterval = cfg.Output.RotateInterval
	}
	if !cmd.IsSet("log-level") && cfg.Log.Level != "" {
		options.LogLevel = cfg.Log.Level
	}
	if !cmd.IsSet("stats-interval") && cfg.Log.StatsInterval != 0 {
		options.StatsInterval = cfg.Log.StatsInterval
	}
	if !cmd.IsSet("quiet") && cfg.Log.Quiet {
		options.Quiet = true
	}
	return nil
}

// Validate rejects option combinations the loop cannot run with.
func (o *Options) Validate() error {
	if o.SerialPath == "" {
		return ErrSerialPathNotSet
	}
	if o.SerialBaud <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaudRate, o.SerialBaud)
	}
	if o.ReadTimeout <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidReadTimeout, o.ReadTimeout)
	}
	switch sink.Format(o.Format) {
	case sink.FormatJSON, sink.FormatCSV, sink.FormatSQLite:
	default:
		return fmt.Errorf("%w: %q", sink.ErrUnknownFormat, o.Format)
	}
	if _, ok := logLevels[o.LogLevel]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, o.LogLevel)
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

// SlogLevel maps the configured level name; Validate has already rejected
// unknown names.
func (o *Options) SlogLevel() slog.Level {
	return logLevels[o.LogLevel]
}
