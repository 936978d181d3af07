// Package journal keeps an append-only SQLite log of the collection mutations
// applied during one run. It is an activity log, not catalog storage: nothing
// is ever loaded back from it.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"cachemaker/internal/dragdrop"

	_ "modernc.org/sqlite"
)

const MemoryDSN = ":memory:"

// Entry is one recorded mutation.
type Entry struct {
	Seq        int64     `json:"seq"`
	At         time.Time `json:"at"`
	SessionID  string    `json:"sessionId,omitempty"`
	Kind       string    `json:"kind"`
	Op         string    `json:"op"`
	Collection string    `json:"collection"`
	Index      int       `json:"index"`
	To         *int      `json:"to,omitempty"`
	Name       string    `json:"name"`
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and migrates) the journal database. An empty dsn means an
// in-memory journal.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = MemoryDSN
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every pooled connection to :memory: would get its own empty database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	if dsn != MemoryDSN {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mutations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			at_unixms INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			op TEXT NOT NULL,
			collection TEXT NOT NULL,
			idx INTEGER NOT NULL,
			to_idx INTEGER,
			name TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mutations_session ON mutations(session_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record implements dragdrop.Recorder.
func (j *Journal) Record(m dragdrop.Mutation) error {
	if j == nil || j.db == nil {
		return errors.New("journal closed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var to sql.NullInt64
	if m.Op == dragdrop.OpMoveTo {
		to = sql.NullInt64{Int64: int64(m.To), Valid: true}
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO mutations(at_unixms, session_id, kind, op, collection, idx, to_idx, name) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		j.now().UTC().UnixMilli(),
		m.SessionID,
		m.Kind.String(),
		string(m.Op),
		string(m.Collection),
		m.Index,
		to,
		m.Name,
	)
	return err
}

// Entries returns the last limit entries, oldest first. limit <= 0 returns
// everything.
func (j *Journal) Entries(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT seq, at_unixms, session_id, kind, op, collection, idx, to_idx, name FROM mutations ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			atMS int64
			to   sql.NullInt64
		)
		if err := rows.Scan(&e.Seq, &atMS, &e.SessionID, &e.Kind, &e.Op, &e.Collection, &e.Index, &to, &e.Name); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(atMS).UTC()
		if to.Valid {
			v := int(to.Int64)
			e.To = &v
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// Last returns the most recent entry.
func (j *Journal) Last(ctx context.Context) (Entry, bool, error) {
	es, err := j.Entries(ctx, 1)
	if err != nil || len(es) == 0 {
		return Entry{}, false, err
	}
	return es[0], true, nil
}

// Count returns the number of recorded mutations.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mutations`).Scan(&n)
	return n, err
}

// Describe renders e as a short activity line.
func (e Entry) Describe() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" ")
	if e.Name == "" {
		b.WriteString("(unnamed)")
	} else {
		b.WriteString(e.Name)
	}
	switch e.Op {
	case string(dragdrop.OpMoveTo):
		b.WriteString(" in ")
		b.WriteString(e.Collection)
		if e.To != nil {
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteString("→")
			b.WriteString(strconv.Itoa(*e.To))
		}
	case string(dragdrop.OpRemove):
		b.WriteString(" from ")
		b.WriteString(e.Collection)
	default:
		b.WriteString(" into ")
		b.WriteString(e.Collection)
		b.WriteString(" @")
		b.WriteString(strconv.Itoa(e.Index))
	}
	return b.String()
}
