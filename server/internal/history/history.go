package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded alert level transition.
type Entry struct {
	MACAddress string    `json:"mac_address"`
	Level      string    `json:"alert_level"`
	Mode       string    `json:"device_mode"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Store is the SQLite-backed transition log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the transition log at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS level_transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mac_address TEXT NOT NULL,
			alert_level TEXT NOT NULL,
			device_mode TEXT NOT NULL,
			source TEXT NOT NULL,
			recorded_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_mac
			ON level_transitions(mac_address, recorded_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: creating level_transitions table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record logs a level for a device. It is a no-op when the level matches the
// most recent record for that device.
func (s *Store) Record(ctx context.Context, mac, level, mode, source string) error {
	var last string
	err := s.db.QueryRowContext(ctx, `
		SELECT alert_level FROM level_transitions
		WHERE mac_address = ?
		ORDER BY recorded_at DESC, id DESC LIMIT 1
	`, mac).Scan(&last)
	if err == nil && last == level {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("history: query last level for %s: %w", mac, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO level_transitions (mac_address, alert_level, device_mode, source, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, mac, level, mode, source, s.now().UTC())
	if err != nil {
		return fmt.Errorf("history: insert transition for %s: %w", mac, err)
	}
	return nil
}

// Recent returns up to limit transitions for a device, newest first.
func (s *Store) Recent(ctx context.Context, mac string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT mac_address, alert_level, device_mode, source, recorded_at
		FROM level_transitions
		WHERE mac_address = ?
		ORDER BY recorded_at DESC, id DESC LIMIT ?
	`, mac, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query transitions for %s: %w", mac, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.MACAddress, &e.Level, &e.Mode, &e.Source, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan transition: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes transitions older than retention. Returns rows removed.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM level_transitions WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}

// RunPruner prunes on the given interval until ctx is cancelled.
func (s *Store) RunPruner(ctx context.Context, retention, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Prune(ctx, retention)
			if err != nil {
				logger.Error("history prune failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("pruned old transitions", "removed", removed)
			}
		}
	}
}
