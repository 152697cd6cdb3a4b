package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daqforge/serialmail-logger/internal/adc"
)

func readArrayFile(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var elems []map[string]any
	if err := json.Unmarshal(data, &elems); err != nil {
		t.Fatalf("parse json array: %v", err)
	}
	return elems
}

func TestJSONAppendPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(dir, DefaultRotateInterval)

	for i := 0; i < 3; i++ {
		rec := record(5, 2)
		rec.Ch0[0].Measurement = uint32(1000 + i)
		if err := s.Write(rec); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	elems := readArrayFile(t, singleFile(t, dir))
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elems))
	}
	for i, e := range elems {
		ms, ok := e["MeasurementCh0"].([]any)
		if !ok {
			t.Fatalf("element %d: MeasurementCh0 should be a list for 2 samples", i)
		}
		if int(ms[0].(float64)) != 1000+i {
			t.Errorf("element %d out of insertion order: %v", i, ms[0])
		}
	}
}

func TestJSONElementShape(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(dir, DefaultRotateInterval)

	rec := &Record{
		Node: 4,
		Ch0:  []adc.Reading{adc.Convert(adc.Sample{Data0: 0x80})},
		Ch1:  []adc.Reading{adc.Convert(adc.Sample{}), adc.Convert(adc.Sample{Data0: 0xFF, Data1: 0xFF, Data2: 0xFF})},
	}
	if err := s.Write(rec); err != nil {
		t.Fatal(err)
	}

	e := readArrayFile(t, singleFile(t, dir))[0]

	// Single-sample channel: scalar measurement. Multi-sample: list.
	if _, ok := e["MeasurementCh0"].(float64); !ok {
		t.Errorf("MeasurementCh0 should be a scalar for one sample, got %T", e["MeasurementCh0"])
	}
	if _, ok := e["MeasurementCh1"].([]any); !ok {
		t.Errorf("MeasurementCh1 should be a list for two samples, got %T", e["MeasurementCh1"])
	}

	raw0 := e["RawInputBytesCh0"].([]any)
	if len(raw0) != 1 {
		t.Fatalf("expected 1 raw triple, got %d", len(raw0))
	}
	triple := raw0[0].(map[string]any)
	if triple["Data0"].(float64) != 0x80 {
		t.Errorf("Data0 = %v, want 128", triple["Data0"])
	}

	// Each channel carries its own voltages.
	v0 := e["VoltagesCh0"].([]any)
	v1 := e["VoltagesCh1"].([]any)
	if len(v0) != 1 || len(v1) != 2 {
		t.Fatalf("voltage list lengths = %d/%d, want 1/2", len(v0), len(v1))
	}
	if v0[0].(float64) != 0.0 {
		t.Errorf("VoltagesCh0[0] = %v, want 0", v0[0])
	}
	if v1[0].(float64) != -625.0 {
		t.Errorf("VoltagesCh1[0] = %v, want -625", v1[0])
	}

	if e["Node"].(float64) != 4 {
		t.Errorf("Node = %v, want 4", e["Node"])
	}
	if _, err := time.Parse(jsonStampLayout, e["Datetime"].(string)); err != nil {
		t.Errorf("Datetime %q does not match layout: %v", e["Datetime"], err)
	}
}

func TestJSONCorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	s := NewJSON(dir, DefaultRotateInterval)
	clock := &fakeClock{times: []time.Time{t0, t0.Add(time.Second)}}
	s.now = clock.now

	// First write pins the rotated filename; corrupt it in place.
	if err := s.Write(record(1, 1)); err != nil {
		t.Fatal(err)
	}
	path := singleFile(t, dir)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Write(record(1, 1)); err != nil {
		t.Fatalf("write over corrupt file should succeed: %v", err)
	}
	if got := len(readArrayFile(t, path)); got != 1 {
		t.Errorf("corrupt file should restart as empty array, got %d elements", got)
	}
}

func TestJSONMissingDirFails(t *testing.T) {
	s := NewJSON(filepath.Join(t.TempDir(), "absent"), DefaultRotateInterval)
	if err := s.Write(record(1, 1)); err == nil {
		t.Fatal("expected write into a missing directory to fail")
	}
}
