package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"datetime", "CH1", "CH2"}

// CSVSink appends one row per sample pair. Row timestamps are not
// wall-clock-at-write: they are interpolated evenly across the interval
// since the previous batch, modeling uniform sample arrival between reads.
type CSVSink struct {
	dir      string
	interval time.Duration
	rot      rotation

	now func() time.Time
}

func NewCSV(dir string, interval time.Duration) *CSVSink {
	s := &CSVSink{dir: dir, interval: interval, now: time.Now}
	s.rot.lastTimestep = s.now()
	return s
}

// Write appends len(Ch0) rows. Both channels must carry the same number of
// samples; the precondition is checked before anything is opened so a
// mismatch never emits partial rows.
func (s *CSVSink) Write(rec *Record) error {
	if len(rec.Ch0) != len(rec.Ch1) {
		return fmt.Errorf("%w: ch0=%d ch1=%d", ErrChannelMismatch, len(rec.Ch0), len(rec.Ch1))
	}

	now := s.now()
	path := s.rot.activePath(s.dir, rec.Node, "csv", s.interval, now)

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if n := len(rec.Ch0); n > 0 {
		increment := now.Sub(s.rot.lastTimestep) / time.Duration(n)
		ts := s.rot.lastTimestep
		for i := 0; i < n; i++ {
			row := []string{
				formatCSVTime(ts),
				strconv.FormatUint(uint64(rec.Ch0[i].Measurement), 10),
				strconv.FormatUint(uint64(rec.Ch1[i].Measurement), 10),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			ts = ts.Add(increment)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	// The batch consumed the interval up to now; the next one
	// interpolates from here.
	s.rot.lastTimestep = now
	return nil
}

func (s *CSVSink) Close() error {
	return nil
}

// formatCSVTime renders YYYY-MM-DD HH:MM:SS:ffffff, colon before the
// microsecond field as in the historical files.
func formatCSVTime(t time.Time) string {
	return fmt.Sprintf("%s:%06d", t.Format("2006-01-02 15:04:05"), t.Nanosecond()/1000)
}
