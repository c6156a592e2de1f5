// Package chatlog persists assistant interactions: the raw prompt, the
// parsed filter request and the rendered response.
package chatlog

import (
	"context"
	"database/sql"
	"time"

	"coursefinder-backend/lib/chatlog/db"
)

// Schema re-exported for sqliteutil.OpenDB callers.
var Schema = db.Schema

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type Entry struct {
	RequestID string
	Time      time.Time
	Prompt    string
	// Parsed is the filter request as JSON, kept verbatim so logged
	// queries can be replayed against the engine.
	Parsed   string
	Response string
}

func (s Store) Push(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO interactions (request_id, time, prompt, parsed, response)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.Time.Unix(),
		entry.Prompt,
		entry.Parsed,
		entry.Response,
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT request_id, time, prompt, parsed, response
		 FROM interactions ORDER BY time DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var unix int64
		err := rows.Scan(&e.RequestID, &unix, &e.Prompt, &e.Parsed, &e.Response)
		if err != nil {
			return nil, err
		}
		e.Time = time.Unix(unix, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
