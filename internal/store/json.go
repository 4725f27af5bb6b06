package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/claireharelson/ORF-finder/internal/report"
)

type storedRun struct {
	ID int64 `json:"id"`
	*report.Database
}

// JSONFile stores all runs in one JSON document, rewritten on every save.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// OpenJSON returns a store backed by the JSON file at path. The file is
// created on the first save.
func OpenJSON(path string) (*JSONFile, error) {
	s := &JSONFile{path: path}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFile) load() ([]storedRun, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var runs []storedRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *JSONFile) SaveRun(_ context.Context, db *report.Database) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs, err := s.load()
	if err != nil {
		return 0, err
	}
	var id int64 = 1
	if n := len(runs); n > 0 {
		id = runs[n-1].ID + 1
	}
	if db.CreatedAt.IsZero() {
		cp := *db
		cp.CreatedAt = time.Now().UTC()
		db = &cp
	}
	runs = append(runs, storedRun{ID: id, Database: db})
	out, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *JSONFile) Run(_ context.Context, id int64) (*report.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r.Database, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFile) Runs(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(runs))
	for _, r := range runs {
		out = append(out, summarize(r.ID, r.Database))
	}
	return out, nil
}

func (s *JSONFile) Close() error { return nil }
