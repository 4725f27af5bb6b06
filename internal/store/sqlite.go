package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/claireharelson/ORF-finder/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    input TEXT,
    min_length INTEGER,
    overlapping INTEGER,
    created_at TEXT
);
CREATE TABLE IF NOT EXISTS sequences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER REFERENCES runs(id),
    ord INTEGER,
    seq_id TEXT,
    length INTEGER,
    error TEXT
);
CREATE TABLE IF NOT EXISTS orfs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sequence_id INTEGER REFERENCES sequences(id),
    ord INTEGER,
    strand TEXT,
    frame INTEGER,
    pos INTEGER,
    end_pos INTEGER,
    length INTEGER,
    sequence TEXT,
    coding TEXT,
    protein TEXT
);`

// SQLite stores runs in a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) SaveRun(ctx context.Context, rdb *report.Database) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	created := rdb.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO runs (input, min_length, overlapping, created_at) VALUES (?, ?, ?, ?)`,
		rdb.Input, rdb.MinLength, rdb.Overlapping, created.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, sq := range rdb.Sequences {
		res, err := tx.ExecContext(ctx, `INSERT INTO sequences (run_id, ord, seq_id, length, error) VALUES (?, ?, ?, ?, ?)`,
			runID, i, sq.ID, sq.Length, sq.Error)
		if err != nil {
			return 0, err
		}
		seqRow, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for j, e := range sq.ORFs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO orfs (sequence_id, ord, strand, frame, pos, end_pos, length, sequence, coding, protein)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				seqRow, j, e.Strand, e.Frame, e.Pos, e.End, e.Length, e.Sequence, e.Coding, e.Protein); err != nil {
				return 0, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

func (s *SQLite) Run(ctx context.Context, id int64) (*report.Database, error) {
	var (
		rdb     report.Database
		created string
	)
	err := s.db.QueryRowContext(ctx, `SELECT input, min_length, overlapping, created_at FROM runs WHERE id = ?`, id).
		Scan(&rdb.Input, &rdb.MinLength, &rdb.Overlapping, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rdb.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)

	rows, err := s.db.QueryContext(ctx, `SELECT id, seq_id, length, error FROM sequences WHERE run_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, err
	}
	var rowIDs []int64
	for rows.Next() {
		var (
			rowID int64
			sq    report.Sequence
		)
		if err := rows.Scan(&rowID, &sq.ID, &sq.Length, &sq.Error); err != nil {
			rows.Close()
			return nil, err
		}
		sq.ORFs = []report.Entry{}
		rowIDs = append(rowIDs, rowID)
		rdb.Sequences = append(rdb.Sequences, sq)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i, rowID := range rowIDs {
		orfs, err := s.orfs(ctx, rowID)
		if err != nil {
			return nil, err
		}
		rdb.Sequences[i].ORFs = orfs
	}
	return &rdb, nil
}

func (s *SQLite) orfs(ctx context.Context, sequenceID int64) ([]report.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT strand, frame, pos, end_pos, length, sequence, coding, protein
        FROM orfs WHERE sequence_id = ? ORDER BY ord`, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []report.Entry{}
	for rows.Next() {
		var e report.Entry
		if err := rows.Scan(&e.Strand, &e.Frame, &e.Pos, &e.End, &e.Length, &e.Sequence, &e.Coding, &e.Protein); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Runs(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT r.id, r.input, r.min_length, r.created_at,
               (SELECT COUNT(*) FROM sequences q WHERE q.run_id = r.id),
               (SELECT COUNT(*) FROM orfs o JOIN sequences q ON o.sequence_id = q.id WHERE q.run_id = r.id)
        FROM runs r ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var (
			sm      Summary
			created string
		)
		if err := rows.Scan(&sm.ID, &sm.Input, &sm.MinLength, &created, &sm.Sequences, &sm.ORFs); err != nil {
			return nil, err
		}
		sm.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, sm)
	}
	return out, rows.Err()
}
