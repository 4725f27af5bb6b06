package fasta

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFastaSimple(t *testing.T) {
	input := ">seq1\nATGC\n>seq2 desc\nGGTT\n"
	recs, err := ParseFasta(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Header != "SEQ1" || recs[0].Sequence != "ATGC" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Header != "SEQ2DESC" || recs[1].Sequence != "GGTT" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestParseFastaNormalizes(t *testing.T) {
	input := "ACGT\n>chr1\r\natg caa\r\n\ttag \n>empty\n"
	recs, err := ParseFasta(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %+v", recs)
	}
	if recs[0].Header != "CHR1" || recs[0].Sequence != "ATGCAATAG" {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
	if recs[1].Header != "EMPTY" || recs[1].Sequence != "" {
		t.Fatalf("unexpected empty record: %+v", recs[1])
	}
}

func TestUnique(t *testing.T) {
	recs := Unique([]Record{{"A", "1"}, {"B", "2"}, {"A", "3"}})
	if len(recs) != 2 || recs[0].Header != "A" || recs[0].Sequence != "3" || recs[1].Header != "B" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestOpenGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(">chr1\nacgT\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "in.fa.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	recs, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Sequence != "ACGT" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.fasta"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
