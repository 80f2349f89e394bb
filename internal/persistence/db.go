// Package persistence provides SQLite-based turn history and a compressed turn journal.
// Neither is a save-game: a session cannot be resumed from them, only replayed by seed.
// See design doc Section 8.3.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/neolithic/internal/engine"
)

// DB wraps a SQLite connection for turn history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		rules_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		turn INTEGER NOT NULL,
		season TEXT NOT NULL,
		label TEXT NOT NULL,
		report_json TEXT NOT NULL,
		events_json TEXT NOT NULL,
		draws INTEGER NOT NULL,
		orders TEXT NOT NULL,
		advice TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Session is one stored play session.
type Session struct {
	ID        string `db:"id" json:"id"`
	Seed      int64  `db:"seed" json:"seed"`
	CreatedAt string `db:"created_at" json:"created_at"`
	RulesJSON string `db:"rules_json" json:"-"`
}

// BeginSession records a new session and returns its id. rules is stored as
// JSON so the turn history can be read against the rule set that produced it.
func (db *DB) BeginSession(seed int64, rules any) (string, error) {
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	id := uuid.NewString()
	_, err = db.conn.Exec(
		"INSERT INTO sessions (id, seed, created_at, rules_json) VALUES (?, ?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339), string(rulesJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	if err := db.SaveMeta("last_session", id); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}
	slog.Info("session started", "id", id, "seed", seed)
	return id, nil
}

// GetSession loads a session by id.
func (db *DB) GetSession(id string) (Session, error) {
	var s Session
	err := db.conn.Get(&s, "SELECT id, seed, created_at, rules_json FROM sessions WHERE id = ?", id)
	if err != nil {
		return s, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

// TurnRecord is everything stored about one resolved turn.
type TurnRecord struct {
	SessionID string         `json:"session_id"`
	Outcome   engine.Outcome `json:"outcome"`
	Orders    string         `json:"orders"`
	Advice    string         `json:"advice"`
}

// RecordTurn appends a resolved turn to the history.
func (db *DB) RecordTurn(rec TurnRecord) error {
	reportJSON, err := json.Marshal(rec.Outcome.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	events := rec.Outcome.Events
	if events == nil {
		events = []engine.FiredEvent{}
	}
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO turns
		(session_id, turn, season, label, report_json, events_json, draws, orders, advice, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Outcome.Turn, string(rec.Outcome.Report.Season), rec.Outcome.Label,
		string(reportJSON), string(eventsJSON), int64(rec.Outcome.Draws), rec.Orders, rec.Advice,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert turn %d: %w", rec.Outcome.Turn, err)
	}
	return nil
}

// TurnRow is a stored turn as read back from the database.
type TurnRow struct {
	Turn       int    `db:"turn" json:"turn"`
	Season     string `db:"season" json:"season"`
	Label      string `db:"label" json:"label"`
	ReportJSON string `db:"report_json" json:"-"`
	EventsJSON string `db:"events_json" json:"-"`
	Draws      int64  `db:"draws" json:"draws"`
	Orders     string `db:"orders" json:"orders"`
	Advice     string `db:"advice" json:"advice"`
	RecordedAt string `db:"recorded_at" json:"recorded_at"`
}

// Report decodes the stored report.
func (r TurnRow) Report() (engine.TurnReport, error) {
	var rep engine.TurnReport
	if err := json.Unmarshal([]byte(r.ReportJSON), &rep); err != nil {
		return rep, fmt.Errorf("decode report for turn %d: %w", r.Turn, err)
	}
	return rep, nil
}

// Events decodes the stored fired events.
func (r TurnRow) Events() ([]engine.FiredEvent, error) {
	var evs []engine.FiredEvent
	if err := json.Unmarshal([]byte(r.EventsJSON), &evs); err != nil {
		return nil, fmt.Errorf("decode events for turn %d: %w", r.Turn, err)
	}
	return evs, nil
}

// RecentTurns returns up to limit turns of a session, newest first.
func (db *DB) RecentTurns(sessionID string, limit int) ([]TurnRow, error) {
	var rows []TurnRow
	err := db.conn.Select(&rows,
		`SELECT turn, season, label, report_json, events_json, draws, orders, advice, recorded_at
		FROM turns WHERE session_id = ? ORDER BY turn DESC LIMIT ?`,
		sessionID, limit,
	)
	return rows, err
}

// SaveMeta stores a key-value pair in metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
