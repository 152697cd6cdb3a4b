package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/daqforge/serialmail-logger/internal/adc"
)

// jsonStampLayout is the ISO-like element timestamp, microsecond precision.
const jsonStampLayout = "2006-01-02T15:04:05.000000"

// JSONSink appends each record as one object to a JSON array file. Every
// write reads the whole array back, appends, and rewrites the file with
// indentation; a missing or corrupt file counts as an empty array so a
// damaged output never stalls ingestion.
type JSONSink struct {
	dir      string
	interval time.Duration
	rot      rotation

	now func() time.Time
}

func NewJSON(dir string, interval time.Duration) *JSONSink {
	return &JSONSink{dir: dir, interval: interval, now: time.Now}
}

type rawTriple struct {
	Data0 uint8
	Data1 uint8
	Data2 uint8
}

// jsonRecord mirrors the historical element layout. MeasurementChN is a
// scalar for single-sample channels and a list otherwise (see
// measurementField).
type jsonRecord struct {
	Datetime         string
	RawInputBytesCh0 []rawTriple
	MeasurementCh0   any
	VoltagesCh0      []float64
	RawInputBytesCh1 []rawTriple
	MeasurementCh1   any
	VoltagesCh1      []float64
	Node             byte
}

func (s *JSONSink) Write(rec *Record) error {
	now := s.now()
	path := s.rot.activePath(s.dir, rec.Node, "json", s.interval, now)

	existing := readArray(path)

	element, err := json.Marshal(jsonRecord{
		Datetime:         now.Format(jsonStampLayout),
		RawInputBytesCh0: triples(rec.Ch0),
		MeasurementCh0:   measurementField(rec.Ch0),
		VoltagesCh0:      voltages(rec.Ch0),
		RawInputBytesCh1: triples(rec.Ch1),
		MeasurementCh1:   measurementField(rec.Ch1),
		VoltagesCh1:      voltages(rec.Ch1),
		Node:             rec.Node,
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	existing = append(existing, element)

	out, err := json.MarshalIndent(existing, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal array: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *JSONSink) Close() error {
	return nil
}

// readArray loads the existing array. Absent files and files that do not
// parse as a JSON array both yield an empty slate rather than an error.
func readArray(path string) []json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var existing []json.RawMessage
	if err := json.Unmarshal(data, &existing); err != nil {
		return nil
	}
	return existing
}

func triples(readings []adc.Reading) []rawTriple {
	out := make([]rawTriple, len(readings))
	for i, r := range readings {
		out[i] = rawTriple{Data0: r.Sample.Data0, Data1: r.Sample.Data1, Data2: r.Sample.Data2}
	}
	return out
}
