// Package cache provides a SQLite-backed cache of meeting metadata so
// list and search work without refetching every page from the API.
package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/muninn/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meetings (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL DEFAULT '',
	has_notes         INTEGER NOT NULL DEFAULT 0,
	participant_count INTEGER NOT NULL DEFAULT 0,
	cached_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_meetings_created_at ON meetings(created_at);
`

// DB wraps a sql.DB with meeting-cache operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Upsert inserts or refreshes one meeting row.
func (db *DB) Upsert(m models.MeetingListItem) error {
	_, err := db.conn.Exec(`
		INSERT INTO meetings (id, title, created_at, type, has_notes, participant_count, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title             = excluded.title,
			created_at        = excluded.created_at,
			type              = excluded.type,
			has_notes         = excluded.has_notes,
			participant_count = excluded.participant_count,
			cached_at         = excluded.cached_at`,
		m.ID, m.Title, m.CreatedAt, m.Type, m.HasNotes, m.ParticipantCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: upsert %s: %w", m.ID, err)
	}
	return nil
}

// UpsertAll refreshes a batch of meetings in one transaction.
func (db *DB) UpsertAll(meetings []models.MeetingListItem) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO meetings (id, title, created_at, type, has_notes, participant_count, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title             = excluded.title,
			created_at        = excluded.created_at,
			type              = excluded.type,
			has_notes         = excluded.has_notes,
			participant_count = excluded.participant_count,
			cached_at         = excluded.cached_at`)
	if err != nil {
		return fmt.Errorf("cache: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range meetings {
		if _, err := stmt.Exec(m.ID, m.Title, m.CreatedAt, m.Type, m.HasNotes, m.ParticipantCount, now); err != nil {
			return fmt.Errorf("cache: upsert %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// Get returns one cached meeting, or sql.ErrNoRows wrapped if absent.
func (db *DB) Get(id string) (*models.MeetingListItem, error) {
	row := db.conn.QueryRow(`
		SELECT id, title, created_at, type, has_notes, participant_count
		FROM meetings WHERE id = ?`, id)

	var m models.MeetingListItem
	if err := row.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.Type, &m.HasNotes, &m.ParticipantCount); err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", id, err)
	}
	return &m, nil
}

// List returns cached meetings newest first, with optional case-insensitive
// title search, plus the total count matching the filter.
func (db *DB) List(limit, offset int, search string) ([]models.MeetingListItem, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if search != "" {
		where = "WHERE lower(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	var total int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM meetings "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("cache: count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, created_at, type, has_notes, participant_count
		FROM meetings %s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("cache: list: %w", err)
	}
	defer rows.Close()

	var out []models.MeetingListItem
	for rows.Next() {
		var m models.MeetingListItem
		if err := rows.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.Type, &m.HasNotes, &m.ParticipantCount); err != nil {
			return nil, 0, fmt.Errorf("cache: scan: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}
