// Package transcript records executed statements and their outcomes in a
// SQLite database, so a session can be reviewed or replayed later.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	source  TEXT NOT NULL,
	started INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	session   INTEGER NOT NULL REFERENCES sessions(id),
	seq       INTEGER NOT NULL,
	statement TEXT NOT NULL,
	result    TEXT NOT NULL DEFAULT '',
	error     TEXT NOT NULL DEFAULT '',
	depth     INTEGER NOT NULL,
	at        INTEGER NOT NULL,
	PRIMARY KEY (session, seq)
);`

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("transcript closed")

// Entry is one executed statement.
type Entry struct {
	Seq       int
	Statement string
	Result    string
	Err       string
	// Depth is the frame depth after the statement, 1 when balanced.
	Depth int
	At    time.Time
}

// Store appends entries to one session.
type Store struct {
	db      *sql.DB
	session int64
	seq     int
}

// Open opens or creates the database at path and starts a new session
// labelled source.
func Open(ctx context.Context, path, source string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating transcript schema: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO sessions (source, started) VALUES (?, ?)`, source, time.Now().UnixNano())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("starting transcript session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, session: id}, nil
}

// Session is the id of the session entries are appended to.
func (s *Store) Session() int64 { return s.session }

// Record appends e to the session, numbering it and stamping the time
// when e.At is zero.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if s.db == nil {
		return e, ErrClosed
	}
	s.seq++
	e.Seq = s.seq
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (session, seq, statement, result, error, depth, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.session, e.Seq, e.Statement, e.Result, e.Err, e.Depth, e.At.UnixNano())
	if err != nil {
		s.seq--
		return e, fmt.Errorf("recording statement %d: %w", e.Seq, err)
	}
	return e, nil
}

// Entries returns the entries of the current session in order.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	return s.entries(ctx, s.session)
}

// Sessions returns the ids of every recorded session, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]int64, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SessionEntries returns the entries of an earlier session.
func (s *Store) SessionEntries(ctx context.Context, session int64) ([]Entry, error) {
	return s.entries(ctx, session)
}

func (s *Store) entries(ctx context.Context, session int64) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, statement, result, error, depth, at FROM entries WHERE session = ? ORDER BY seq`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.Seq, &e.Statement, &e.Result, &e.Err, &e.Depth, &at); err != nil {
			return nil, err
		}
		e.At = time.Unix(0, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database. Closing a store twice fails with ErrClosed.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}
