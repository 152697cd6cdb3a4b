// Package sink persists decoded measurement records. Three strategies are
// available, selected once per run: a growing JSON array file, an
// append-only CSV file, and a SQLite database. The file strategies rotate to
// a fresh file on a wall-clock deadline; rotation never truncates or deletes
// prior output.
package sink

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/daqforge/serialmail-logger/internal/adc"
)

// Format selects the persistence strategy.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// DefaultRotateInterval is how long a rotated output file stays active.
const DefaultRotateInterval = 12 * time.Hour

var (
	ErrUnknownFormat    = errors.New("sink: unknown output format")
	ErrChannelMismatch  = errors.New("sink: channel sample counts differ")
	ErrNoOutputDir      = errors.New("sink: output directory not set")
	ErrNoActiveDatabase = errors.New("sink: database not open")
)

// Record is one decoded and converted message: the sending node and the
// converted readings of both analog channels, in wire order. A record is
// owned by the pipeline invocation that produced it and is not retained by
// the sink after Write returns.
type Record struct {
	Node byte
	Ch0  []adc.Reading
	Ch1  []adc.Reading
}

// Sink appends records to durable storage. Implementations are not safe for
// concurrent use; the ingest loop is the single writer, which also keeps the
// rotation and timestamp state single-writer as required.
type Sink interface {
	// Write persists one record. Failures affect only that record;
	// the caller logs and keeps draining the stream.
	Write(rec *Record) error
	Close() error
}

// Config carries the sink selection and shared settings.
type Config struct {
	Format         Format
	OutputDir      string
	RotateInterval time.Duration

	// InstanceID tags the SQLite session row; ignored by file sinks.
	InstanceID string
}

// New builds the sink for cfg.Format.
func New(cfg Config) (Sink, error) {
	if cfg.OutputDir == "" {
		return nil, ErrNoOutputDir
	}
	if cfg.RotateInterval <= 0 {
		cfg.RotateInterval = DefaultRotateInterval
	}

	switch cfg.Format {
	case FormatJSON:
		return NewJSON(cfg.OutputDir, cfg.RotateInterval), nil
	case FormatCSV:
		return NewCSV(cfg.OutputDir, cfg.RotateInterval), nil
	case FormatSQLite:
		return NewSQLite(filepath.Join(cfg.OutputDir, "serialmail.db"), cfg.InstanceID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}
}

// fileStampLayout names rotated files, e.g. P3_20260828T101500.csv.
const fileStampLayout = "20060102T150405"

// rotation tracks the active output path and the deadlines that drive file
// turnover and CSV timestamp interpolation. The state is explicit rather
// than package-global so each sink instance owns exactly one copy.
type rotation struct {
	path     string
	deadline time.Time

	// lastTimestep is the wall-clock recorded after the previous CSV
	// batch; row timestamps interpolate forward from it.
	lastTimestep time.Time
}

// activePath returns the current output file, deriving a fresh
// P<node>_<timestamp> name on first use and whenever now has reached the
// rotation deadline.
func (r *rotation) activePath(dir string, node byte, ext string, interval time.Duration, now time.Time) string {
	if r.path == "" || !now.Before(r.deadline) {
		name := fmt.Sprintf("P%d_%s.%s", node, now.Format(fileStampLayout), ext)
		r.path = filepath.Join(dir, name)
		r.deadline = now.Add(interval)
	}
	return r.path
}

// measurementField reproduces the historical JSON shape: a bare integer when
// the channel carried exactly one sample, otherwise the list of
// measurements. Existing consumers depend on it.
func measurementField(readings []adc.Reading) any {
	if len(readings) == 1 {
		return readings[0].Measurement
	}
	ms := make([]uint32, len(readings))
	for i, r := range readings {
		ms[i] = r.Measurement
	}
	return ms
}

func voltages(readings []adc.Reading) []float64 {
	vs := make([]float64, len(readings))
	for i, r := range readings {
		vs[i] = r.VoltageMV
	}
	return vs
}
