// Package ingest owns the capture loop: read a chunk from the serial
// transport, advance the frame synchronizer, and for every complete frame
// decode, convert, display, and persist before reading again. The pipeline
// is single-threaded by design; only the stats reporter runs beside it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/tarm/serial"

	"github.com/daqforge/serialmail-logger/internal/adc"
	"github.com/daqforge/serialmail-logger/internal/frame"
	"github.com/daqforge/serialmail-logger/internal/identity"
	"github.com/daqforge/serialmail-logger/internal/serialmail"
	"github.com/daqforge/serialmail-logger/internal/sink"
)

// readChunkSize bounds a single transport read.
const readChunkSize = 1024

// Ingestor wires the transport into the framing, decoding, conversion, and
// persistence stages.
type Ingestor struct {
	options *Options
	sink    sink.Sink
	sync    *frame.Synchronizer
	display io.Writer

	// openPort is swapped out in tests to feed scripted chunks.
	openPort func() (io.ReadCloser, error)

	frameCount    atomic.Uint64
	recordCount   atomic.Uint64
	dropCount     atomic.Uint64
	writeErrCount atomic.Uint64
}

// New validates options, resolves the instance identity, and builds the
// configured sink.
func New(options *Options) (*Ingestor, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	inst := identity.Resolve()
	slog.Info("resolved instance identity", "source", inst.Source, "id", inst.ID)

	snk, err := sink.New(sink.Config{
		Format:         sink.Format(options.Format),
		OutputDir:      options.OutputDir,
		RotateInterval: options.RotateInterval,
		InstanceID:     inst.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build output sink: %w", err)
	}

	return &Ingestor{
		options: options,
		sink:    snk,
		sync:    frame.New(),
		display: os.Stdout,
		openPort: func() (io.ReadCloser, error) {
			return serial.OpenPort(&serial.Config{
				Name:        options.SerialPath,
				Baud:        options.SerialBaud,
				ReadTimeout: options.ReadTimeout,
			})
		},
	}, nil
}

// Run drives the capture loop until the context is cancelled, a signal
// arrives, or the transport fails. The serial port and the sink are released
// on every exit path.
func (i *Ingestor) Run(ctx context.Context, sigCh <-chan os.Signal) error {
	port, err := i.openPort()
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", i.options.SerialPath, err)
	}
	defer port.Close()
	defer i.sink.Close()

	statsCtx, cancelStats := context.WithCancel(ctx)
	defer cancelStats()
	go i.runStats(statsCtx, i.options.StatsInterval)

	slog.Info("listening for frames",
		"port", i.options.SerialPath,
		"baud", i.options.SerialBaud,
		"format", i.options.Format,
		"output_dir", i.options.OutputDir,
	)

	chunk := make([]byte, readChunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-sigCh:
			slog.Info("signal received, shutting down", "signal", sig.String())
			return nil
		default:
		}

		n, err := port.Read(chunk)
		if err != nil {
			// The transport surfaces a read timeout as EOF; that is
			// "no data yet", not a disconnect.
			if errors.Is(err, io.EOF) {
				continue
			}
			return fmt.Errorf("transport read failed: %w", err)
		}
		if n == 0 {
			continue
		}

		i.sync.Feed(chunk[:n])
		for {
			payload, ok := i.sync.Next()
			if !ok {
				break
			}
			i.handleFrame(payload)
		}
	}
}

// handleFrame runs one payload through decode, convert, display, and
// persist. Every failure here is contained to this frame.
func (i *Ingestor) handleFrame(payload []byte) {
	i.frameCount.Add(1)

	mail, err := serialmail.Decode(payload)
	if err != nil {
		i.dropCount.Add(1)
		slog.Warn("dropping undecodable frame", "error", err, "payload_len", len(payload))
		return
	}

	rec := &sink.Record{
		Node: mail.Node,
		Ch0:  adc.ConvertBatch(mail.Ch0),
		Ch1:  adc.ConvertBatch(mail.Ch1),
	}

	if !i.options.Quiet {
		printRecord(i.display, rec)
	}

	if err := i.sink.Write(rec); err != nil {
		// The record is lost but the stream must keep draining.
		i.writeErrCount.Add(1)
		slog.Error("failed to persist record", "error", err, "node", rec.Node)
		return
	}
	i.recordCount.Add(1)
}
