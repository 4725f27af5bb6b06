package report

// Package report turns scan results into the formats the tools emit: the
// triplet text report, a JSON database, FASTA and a length histogram.

import (
	"encoding/json"
	"io"
	"time"

	"github.com/claireharelson/ORF-finder/internal/pipeline"
	"github.com/claireharelson/ORF-finder/internal/translator"
)

// RunInfo describes the parameters of a scan.
type RunInfo struct {
	Input       string    `json:"input"`
	MinLength   int       `json:"min_length"`
	Overlapping bool      `json:"overlapping,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Entry is one ORF as stored in the database.
type Entry struct {
	Strand   string `json:"strand"`
	Frame    int    `json:"frame"`
	Pos      int    `json:"pos"`
	End      int    `json:"end"`
	Length   int    `json:"length"`
	Sequence string `json:"sequence"`
	Coding   string `json:"coding"`
	Protein  string `json:"protein,omitempty"`
}

// Sequence groups the ORFs found on one input sequence.
type Sequence struct {
	ID     string  `json:"id"`
	Length int     `json:"length"`
	Error  string  `json:"error,omitempty"`
	ORFs   []Entry `json:"orfs"`
}

// Database is the complete result of one run.
type Database struct {
	RunInfo
	Sequences []Sequence `json:"sequences"`
}

// Build converts pipeline results into a Database. Frames are signed by
// strand (+1..+3, -1..-3); Pos is the 1-based forward-strand start.
func Build(info RunInfo, results []pipeline.Result) *Database {
	db := &Database{RunInfo: info, Sequences: make([]Sequence, 0, len(results))}
	for _, r := range results {
		s := Sequence{ID: r.ID, Length: r.Length, ORFs: make([]Entry, 0, len(r.ORFs))}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		prots := translator.TranslateORFs(r.ORFs)
		for i, o := range r.ORFs {
			s.ORFs = append(s.ORFs, Entry{
				Strand:   o.Strand.String(),
				Frame:    o.SignedFrame(),
				Pos:      o.Pos(),
				End:      o.End,
				Length:   o.Len(),
				Sequence: o.Sequence,
				Coding:   o.Coding,
				Protein:  prots[i],
			})
		}
		db.Sequences = append(db.Sequences, s)
	}
	return db
}

// Lengths returns the length of every ORF in db.
func (db *Database) Lengths() []int {
	var out []int
	for _, s := range db.Sequences {
		for _, e := range s.ORFs {
			out = append(out, e.Length)
		}
	}
	return out
}

// ReadJSON decodes a database written by WriteJSON.
func ReadJSON(r io.Reader) (*Database, error) {
	var db Database
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, err
	}
	return &db, nil
}
