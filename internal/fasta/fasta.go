package fasta

// Package fasta contains minimal helpers to parse FASTA formatted data used
// by the project. Every line is upper-cased and stripped of whitespace, so
// headers become compact identifiers and sequence lines plain bases.

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Record represents a single FASTA record (identifier and sequence).
type Record struct {
	Header   string
	Sequence string
}

// ParseFasta reads FASTA records from r.
// Lines beginning with '>' denote headers; sequence lines are concatenated
// until the next header. Lines before the first header are ignored.
func ParseFasta(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var records []Record
	var current *Record
	var seq strings.Builder
	flush := func() {
		if current != nil {
			current.Sequence = seq.String()
			records = append(records, *current)
		}
		seq.Reset()
	}
	for scanner.Scan() {
		line := normalize(scanner.Text())
		if strings.HasPrefix(line, ">") {
			flush()
			current = &Record{Header: line[1:]}
			continue
		}
		if current != nil {
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return records, nil
}

// Open parses the FASTA file at path. Files ending in ".gz" are decompressed.
// A missing file returns an error wrapping fs.ErrNotExist.
func Open(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	recs, err := ParseFasta(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// Unique collapses records sharing a header: the last sequence wins but the
// record keeps the position of the first occurrence.
func Unique(records []Record) []Record {
	pos := make(map[string]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if i, ok := pos[r.Header]; ok {
			out[i].Sequence = r.Sequence
			continue
		}
		pos[r.Header] = len(out)
		out = append(out, r)
	}
	return out
}

func normalize(line string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line))
}
