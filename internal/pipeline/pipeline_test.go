package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/claireharelson/ORF-finder/internal/fasta"
	"github.com/claireharelson/ORF-finder/internal/orf"
)

func TestRunKeepsInputOrder(t *testing.T) {
	var recs []fasta.Record
	for i := 0; i < 40; i++ {
		recs = append(recs, fasta.Record{
			Header:   fmt.Sprintf("SEQ%d", i),
			Sequence: strings.Repeat("GG", i) + "ATGAAATAG",
		})
	}
	res, err := Run(context.Background(), recs, Options{Workers: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != len(recs) {
		t.Fatalf("expected %d results, got %d", len(recs), len(res))
	}
	for i, r := range res {
		if r.ID != recs[i].Header || r.Length != len(recs[i].Sequence) {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
		if len(r.ORFs) != 1 || r.ORFs[0].Coding != "ATGAAATAG" {
			t.Fatalf("unexpected ORFs for %s: %+v", r.ID, r.ORFs)
		}
	}
	if Count(res) != len(recs) {
		t.Fatalf("expected %d ORFs in total, got %d", len(recs), Count(res))
	}
}

func TestRunInvalidBaseIsPerRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	recs := []fasta.Record{
		{Header: "BAD", Sequence: "ATGNNNTAG"},
		{Header: "GOOD", Sequence: "ATGTAA"},
	}
	res, err := Run(context.Background(), recs, Options{Workers: 1, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(res[0].Err, orf.ErrInvalidBase) {
		t.Fatalf("expected invalid base error, got %v", res[0].Err)
	}
	if res[1].Err != nil || len(res[1].ORFs) != 1 {
		t.Fatalf("unexpected good result: %+v", res[1])
	}
	if !strings.Contains(buf.String(), "invalid base") {
		t.Fatalf("expected warning in log, got %q", buf.String())
	}
}

func TestRunMinLength(t *testing.T) {
	recs := []fasta.Record{{Header: "S", Sequence: "ATGAAATAG"}}
	res, err := Run(context.Background(), recs, Options{Scan: orf.Options{MinLength: 50}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res[0].ORFs) != 0 {
		t.Fatalf("expected no ORFs above 50bp, got %+v", res[0].ORFs)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recs := []fasta.Record{{Header: "S", Sequence: "ATGTAA"}}
	if _, err := Run(ctx, recs, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
