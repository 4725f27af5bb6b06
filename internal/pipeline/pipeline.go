package pipeline

// Package pipeline scans FASTA records for ORFs with a bounded pool of
// workers. Results are returned in input order.

import (
	"context"
	"errors"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/claireharelson/ORF-finder/internal/fasta"
	"github.com/claireharelson/ORF-finder/internal/orf"
)

// Options configures Run. A nil Logger discards output; Workers <= 0 uses
// one worker per CPU.
type Options struct {
	Scan    orf.Options
	Workers int
	Logger  *log.Logger
}

// Result holds the ORFs found on one record. Err is set when the record
// could not be scanned (for example it contains an invalid base); the rest
// of the run is unaffected.
type Result struct {
	ID     string
	Length int
	ORFs   []orf.ORF
	Err    error
}

// Run scans every record and returns one Result per record, in input order.
// Only context cancellation aborts the run.
func Run(ctx context.Context, records []fasta.Record, opts Options) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			orfs, err := orf.Scan(rec.Sequence, opts.Scan)
			results[i] = Result{ID: rec.Header, Length: len(rec.Sequence), ORFs: orfs, Err: err}
			var ibe *orf.InvalidBaseError
			switch {
			case errors.As(err, &ibe):
				logger.Warn("skipping sequence with invalid base", "id", rec.Header, "base", string(ibe.Base), "pos", ibe.Pos)
			case err != nil:
				logger.Error("scan failed", "id", rec.Header, "err", err)
			default:
				logger.Debug("scanned sequence", "id", rec.Header, "length", len(rec.Sequence), "orfs", len(orfs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Count returns the total number of ORFs across results.
func Count(results []Result) int {
	n := 0
	for _, r := range results {
		n += len(r.ORFs)
	}
	return n
}
