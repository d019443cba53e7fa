package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger kinds.
const (
	LedgerJoin   = "join"
	LedgerSwitch = "switch"
	LedgerEvict  = "evict"
)

// LedgerEvent is one row of the session history.
type LedgerEvent struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Kind       string    `json:"kind"`
	Instance   *uint32   `json:"instance,omitempty"`
	Character  *uint32   `json:"character,omitempty"`
	Tick       uint64    `json:"tick"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ledger records session events. Record is never called with a store lock held.
type Ledger interface {
	Record(ctx context.Context, ev LedgerEvent) error
	Events(ctx context.Context, playerName string) ([]LedgerEvent, error)
	Close() error
}

// NopLedger drops everything.
type NopLedger struct{}

func (NopLedger) Record(context.Context, LedgerEvent) error { return nil }
func (NopLedger) Events(context.Context, string) ([]LedgerEvent, error) {
	return nil, nil
}
func (NopLedger) Close() error { return nil }

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS session_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    player_id TEXT NOT NULL,
    player_name TEXT NOT NULL,
    kind TEXT NOT NULL,
    instance_id INTEGER,
    character_id INTEGER,
    tick INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL -- unix milliseconds
);
CREATE INDEX IF NOT EXISTS session_events_player ON session_events(player_name);`

// SQLiteLedger stores the session history in a sqlite file.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenLedger opens (and if needed creates) the ledger database at path.
func OpenLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	// sqlite has a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger %s: %w", path, err)
	}
	return &SQLiteLedger{db: db}, nil
}

func (l *SQLiteLedger) Record(ctx context.Context, ev LedgerEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO session_events (player_id, player_name, kind, instance_id, character_id, tick, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.PlayerID, ev.PlayerName, ev.Kind, nullable(ev.Instance), nullable(ev.Character),
		int64(ev.Tick), ev.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record %s for %q: %w", ev.Kind, ev.PlayerName, err)
	}
	return nil
}

// Events lists a player's history, oldest first. An empty name lists everyone.
func (l *SQLiteLedger) Events(ctx context.Context, playerName string) ([]LedgerEvent, error) {
	query := `SELECT player_id, player_name, kind, instance_id, character_id, tick, created_at
		FROM session_events`
	var args []any
	if playerName != "" {
		query += ` WHERE player_name = ?`
		args = append(args, playerName)
	}
	query += ` ORDER BY id`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []LedgerEvent
	for rows.Next() {
		var (
			ev        LedgerEvent
			instance  sql.NullInt64
			character sql.NullInt64
			tick      int64
			created   int64
		)
		if err := rows.Scan(&ev.PlayerID, &ev.PlayerName, &ev.Kind, &instance, &character, &tick, &created); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		ev.Tick = uint64(tick)
		ev.CreatedAt = time.UnixMilli(created).UTC()
		ev.Instance = fromNullable(instance)
		ev.Character = fromNullable(character)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func nullable(v *uint32) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullable(v sql.NullInt64) *uint32 {
	if !v.Valid {
		return nil
	}
	u := uint32(v.Int64)
	return &u
}

// record writes to the ledger and only logs failures; the session history
// never decides the outcome of a request.
func (s *Server) record(ev LedgerEvent) {
	if ev.Tick == 0 {
		ev.Tick = s.world.Tick()
	}
	if err := s.ledger.Record(context.Background(), ev); err != nil {
		Log.Warnf("ledger: %v", err)
	}
}
