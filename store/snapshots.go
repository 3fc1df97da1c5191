package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/filipexcode/AssistenteFinanceiro/rates"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS rate_snapshots (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    base        TEXT NOT NULL,
    provider    TEXT NOT NULL,
    quotes_json TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rate_snapshots_base ON rate_snapshots(base, id);
`

// keepSnapshots bounds how many snapshots are kept per base currency.
const keepSnapshots = 100

// ErrNoSnapshot is returned when no snapshot was ever saved for a base.
var ErrNoSnapshot = errors.New("no rate snapshot")

// RateSnapshots stores exchange-rate snapshots in SQLite. Only market data
// lives here, never user data.
type RateSnapshots struct {
	db *sql.DB
}

// OpenRateSnapshots opens or creates the database at dbPath.
func OpenRateSnapshots(dbPath string) (*RateSnapshots, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating snapshot dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &RateSnapshots{db: db}, nil
}

// Close closes the database.
func (s *RateSnapshots) Close() error {
	return s.db.Close()
}

// SaveSnapshot appends snap and prunes old snapshots of the same base.
func (s *RateSnapshots) SaveSnapshot(ctx context.Context, snap *rates.Snapshot) error {
	quotesJSON, err := json.Marshal(snap.Quotes)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO rate_snapshots (base, provider, quotes_json, updated_at)
		VALUES (?, ?, ?, ?)`,
		snap.Base, snap.Provider, string(quotesJSON), snap.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM rate_snapshots WHERE base = ? AND id NOT IN
		(SELECT id FROM rate_snapshots WHERE base = ? ORDER BY id DESC LIMIT ?)`,
		snap.Base, snap.Base, keepSnapshots)
	if err != nil {
		return fmt.Errorf("pruning snapshots: %w", err)
	}

	return tx.Commit()
}

// LatestSnapshot returns the most recently saved snapshot for base.
func (s *RateSnapshots) LatestSnapshot(ctx context.Context, base string) (*rates.Snapshot, error) {
	var (
		snap       rates.Snapshot
		quotesJSON string
		updatedAt  string
	)
	err := s.db.QueryRowContext(ctx, `SELECT base, provider, quotes_json, updated_at
		FROM rate_snapshots WHERE base = ? ORDER BY id DESC LIMIT 1`, base).
		Scan(&snap.Base, &snap.Provider, &quotesJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(quotesJSON), &snap.Quotes); err != nil {
		return nil, fmt.Errorf("decoding quotes: %w", err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decoding snapshot time: %w", err)
	}
	snap.Source = rates.SourceStored
	return &snap, nil
}

// CountSnapshots returns how many snapshots are kept for base.
func (s *RateSnapshots) CountSnapshots(ctx context.Context, base string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rate_snapshots WHERE base = ?", base).Scan(&n)
	return n, err
}
