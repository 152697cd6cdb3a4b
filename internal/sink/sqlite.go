package sink

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/daqforge/serialmail-logger/internal/adc"
)

// SQLiteSink stores converted samples in a local database, one row per
// sample per channel, plus a session row identifying the capture run. It is
// the durable alternative to the rotating file sinks; the database itself
// handles growth, so no path rotation applies.
type SQLiteSink struct {
	db        *sql.DB
	sessionID int64

	now func() time.Time
}

func NewSQLite(path, instanceID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sink db: %w", err)
	}

	if err := configureDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sink db: %w", err)
	}
	if err := initDB(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteSink{db: db, now: time.Now}
	res, err := db.Exec(
		`INSERT INTO sessions (started_at, instance_id) VALUES (?, ?)`,
		s.now().UnixNano(), instanceID,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("record session: %w", err)
	}
	s.sessionID, _ = res.LastInsertId()
	return s, nil
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA temp_store=MEMORY;",
		"PRAGMA busy_timeout=5000;",
	}

	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}
	return nil
}

func initDB(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at INTEGER NOT NULL,
			instance_id TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL,
			captured_at INTEGER NOT NULL,
			node INTEGER NOT NULL,
			channel INTEGER NOT NULL,
			sample_index INTEGER NOT NULL,
			measurement INTEGER NOT NULL,
			voltage_mv REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_samples_node_time
		ON samples (node, captured_at);`,
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Write inserts every sample of both channels in one transaction so a
// failed record leaves no partial rows behind.
func (s *SQLiteSink) Write(rec *Record) error {
	if s.db == nil {
		return ErrNoActiveDatabase
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// No-op once Commit succeeds.
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO samples (session_id, captured_at, node, channel, sample_index, measurement, voltage_mv)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	capturedAt := s.now().UnixNano()
	for channel, readings := range [][]adc.Reading{rec.Ch0, rec.Ch1} {
		for i, r := range readings {
			if _, err := stmt.Exec(s.sessionID, capturedAt, rec.Node, channel, i, r.Measurement, r.VoltageMV); err != nil {
				return fmt.Errorf("insert sample: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
