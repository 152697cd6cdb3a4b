package ingest

import (
	"context"
	"log/slog"
	"time"
)

// runStats periodically logs ingest throughput and loss counters. Disabled
// when interval is zero or negative.
func (i *Ingestor) runStats(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastFrames := uint64(0)
	lastRecords := uint64(0)
	last := time.Now()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			elapsed := now.Sub(last).Seconds()
			if elapsed <= 0 {
				last = now
				continue
			}

			framesTotal := i.frameCount.Load()
			recordsTotal := i.recordCount.Load()

			frameRate := float64(framesTotal-lastFrames) / elapsed
			recordRate := float64(recordsTotal-lastRecords) / elapsed

			lastFrames = framesTotal
			lastRecords = recordsTotal
			last = now

			slog.LogAttrs(
				ctx, slog.LevelInfo,
				"ingest_stats",
				slog.Float64("frame_rate_per_s", frameRate),
				slog.Float64("record_rate_per_s", recordRate),
				slog.Uint64("frames_total", framesTotal),
				slog.Uint64("records_total", recordsTotal),
				slog.Uint64("dropped_total", i.dropCount.Load()),
				slog.Uint64("write_errors_total", i.writeErrCount.Load()),
				slog.Float64("interval_s", elapsed),
			)
		case <-ctx.Done():
			return
		}
	}
}
