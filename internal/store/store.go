package store

// Package store persists scan runs so the web UI can serve them. Runs can be
// kept in a SQLite database or in a single JSON file.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claireharelson/ORF-finder/internal/report"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Summary is the listing view of a stored run.
type Summary struct {
	ID        int64     `json:"id"`
	Input     string    `json:"input"`
	MinLength int       `json:"min_length"`
	CreatedAt time.Time `json:"created_at"`
	Sequences int       `json:"sequences"`
	ORFs      int       `json:"orfs"`
}

// Store saves and loads runs.
type Store interface {
	SaveRun(ctx context.Context, db *report.Database) (int64, error)
	Run(ctx context.Context, id int64) (*report.Database, error)
	Runs(ctx context.Context) ([]Summary, error)
	Close() error
}

// Open returns the store of the given kind ("sqlite" or "json") at path.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "sqlite", "":
		return OpenSQLite(path)
	case "json":
		return OpenJSON(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q (want sqlite or json)", kind)
	}
}

func summarize(id int64, db *report.Database) Summary {
	s := Summary{ID: id, Input: db.Input, MinLength: db.MinLength, CreatedAt: db.CreatedAt, Sequences: len(db.Sequences)}
	for _, sq := range db.Sequences {
		s.ORFs += len(sq.ORFs)
	}
	return s
}
