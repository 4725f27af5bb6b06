package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/claireharelson/ORF-finder/internal/config"
	"github.com/claireharelson/ORF-finder/internal/fasta"
	"github.com/claireharelson/ORF-finder/internal/ncbi"
	"github.com/claireharelson/ORF-finder/internal/orf"
	"github.com/claireharelson/ORF-finder/internal/pipeline"
	"github.com/claireharelson/ORF-finder/internal/report"
	"github.com/claireharelson/ORF-finder/internal/store"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// minAllowedLength is the smallest minimum ORF length the tool accepts.
const minAllowedLength = 50

var errFileNotFound = errors.New("input file not found")

type runOptions struct {
	Input          string
	Accessions     []string
	MinLength      int
	Format         string
	Output         string
	Histogram      string
	StorePath      string
	StoreKind      string
	Overlapping    bool
	Strand         string
	Workers        int
	ParallelStrand bool
	DryRun         bool
}

func main() {
	// CLI flags
	inputFlag := flag.String("in", "", "input FASTA file path (.gz accepted)")
	accFlag := flag.String("accession", "", "comma-separated NCBI nucleotide accessions to fetch instead of -in")
	minFlag := flag.Int("min", orf.DefaultMinLength, "minimum ORF length in bp (at least 50)")
	formatFlag := flag.String("format", "text", "output format: "+strings.Join(report.Formats(), ", "))
	outputFlag := flag.String("out", "output_file.txt", "output file path ('-' for stdout)")
	histFlag := flag.String("hist", "", "write a PNG histogram of ORF lengths to this path")
	storeFlag := flag.String("store", "", "save the run into this result store")
	storeKindFlag := flag.String("store-kind", "sqlite", "result store kind: sqlite or json")
	overlapFlag := flag.Bool("overlapping", false, "report every start codon, including starts inside an ORF already found")
	strandFlag := flag.String("strand", "both", "strands to scan: both, forward or reverse")
	workersFlag := flag.Int("workers", 0, "number of sequences scanned concurrently (0 = one per CPU)")
	parallelFlag := flag.Bool("parallel-strands", false, "scan forward and reverse strands concurrently")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	interactive := flag.Bool("interactive", false, "prompt for minimum length and input file")
	dryRun := flag.Bool("dry-run", false, "scan and log a summary without writing outputs")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("orffinder", version)
		return
	}

	// load config (optional file)
	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(2)
	}

	// merge CLI flags into config (flags override config when provided)
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["in"] {
		cfg.InputFasta = *inputFlag
	}
	if set["min"] {
		cfg.MinLength = *minFlag
	}
	if set["format"] {
		cfg.Format = *formatFlag
	}
	if set["out"] {
		cfg.Output = *outputFlag
	}
	if set["hist"] {
		cfg.HistogramPNG = *histFlag
	}
	if set["store"] {
		cfg.StorePath = *storeFlag
	}
	if set["store-kind"] || cfg.StoreKind == "" {
		cfg.StoreKind = *storeKindFlag
	}
	if set["overlapping"] {
		cfg.Overlapping = *overlapFlag
	}
	if set["strand"] {
		cfg.Strand = *strandFlag
	}
	if set["workers"] {
		cfg.Workers = *workersFlag
	}

	logger, closeLog, err := newLogger(cfg.LogFile, cfg.LogLevel, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logger.Debug("loaded config", "input_fasta", cfg.InputFasta, "output", cfg.Output, "format", cfg.Format, "min_length", cfg.MinLength, "log_level", cfg.LogLevel)

	// apply ncbi config
	if cfg.NcbiCachePath != "" {
		if absPath, aerr := filepath.Abs(cfg.NcbiCachePath); aerr == nil {
			ncbi.SetCacheFilePath(absPath)
		} else {
			ncbi.SetCacheFilePath(cfg.NcbiCachePath)
		}
	}
	if cfg.NcbiApiKey != "" {
		os.Setenv("NCBI_API_KEY", cfg.NcbiApiKey)
		logger.Debug("ncbi api key provided in config (not logged)")
	}
	if cfg.NcbiCacheTTLSecs > 0 {
		ncbi.SetCacheTTLSeconds(cfg.NcbiCacheTTLSecs)
	}

	if *interactive {
		in := bufio.NewReader(os.Stdin)
		if cfg.MinLength, err = promptMinLength(in, os.Stdout, minAllowedLength); err != nil {
			logger.Fatal("interactive input failed", "err", err)
		}
		if cfg.InputFasta, err = promptFileName(in, os.Stdout); err != nil {
			logger.Fatal("interactive input failed", "err", err)
		}
	}

	opts := runOptions{
		Input:          cfg.InputFasta,
		MinLength:      cfg.MinLength,
		Format:         cfg.Format,
		Output:         cfg.Output,
		Histogram:      cfg.HistogramPNG,
		StorePath:      cfg.StorePath,
		StoreKind:      cfg.StoreKind,
		Overlapping:    cfg.Overlapping,
		Strand:         cfg.Strand,
		Workers:        cfg.Workers,
		ParallelStrand: *parallelFlag,
		DryRun:         *dryRun,
	}
	if *accFlag != "" {
		for _, a := range strings.Split(*accFlag, ",") {
			if a = strings.TrimSpace(a); a != "" {
				opts.Accessions = append(opts.Accessions, a)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		if errors.Is(err, errFileNotFound) {
			fmt.Fprintln(os.Stderr, "FILE NOT FOUND. CHECK INPUT FILE NAME OR PATH.")
			os.Exit(1)
		}
		logger.Fatal("orffinder failed", "err", err)
	}
}

func parseStrand(s string) (orf.StrandSet, error) {
	switch strings.ToLower(s) {
	case "", "both":
		return orf.BothStrands, nil
	case "forward", "+":
		return orf.ForwardOnly, nil
	case "reverse", "-":
		return orf.ReverseOnly, nil
	}
	return 0, fmt.Errorf("invalid strand %q (want both, forward or reverse)", s)
}

func loadRecords(ctx context.Context, o runOptions) ([]fasta.Record, string, error) {
	if len(o.Accessions) > 0 {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		recs, err := ncbi.FetchFasta(ctx, o.Accessions)
		return recs, "ncbi:" + strings.Join(o.Accessions, ","), err
	}
	if o.Input == "" {
		return nil, "", errors.New("no input: pass -in, -accession or -interactive")
	}
	recs, err := fasta.Open(o.Input)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, o.Input, fmt.Errorf("%w (%s)", errFileNotFound, o.Input)
	}
	return recs, o.Input, err
}

func run(ctx context.Context, o runOptions, logger *log.Logger) error {
	if o.MinLength < minAllowedLength {
		return fmt.Errorf("minimum ORF length must be at least %d, got %d", minAllowedLength, o.MinLength)
	}
	strands, err := parseStrand(o.Strand)
	if err != nil {
		return err
	}
	write, err := report.Lookup(o.Format)
	if err != nil {
		return err
	}

	records, source, err := loadRecords(ctx, o)
	if err != nil {
		return err
	}
	records = fasta.Unique(records)
	if len(records) == 0 {
		logger.Warn("input has no FASTA records (no '>' header line)", "source", source)
	}
	logger.Info("loaded sequences", "source", source, "records", len(records))

	start := time.Now()
	results, err := pipeline.Run(ctx, records, pipeline.Options{
		Scan: orf.Options{
			MinLength:   o.MinLength,
			Overlapping: o.Overlapping,
			Strands:     strands,
			Concurrent:  o.ParallelStrand,
		},
		Workers: o.Workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("scan finished", "sequences", len(results), "orfs", pipeline.Count(results), "failed", failed, "duration_ms", time.Since(start).Milliseconds())

	db := report.Build(report.RunInfo{
		Input:       source,
		MinLength:   o.MinLength,
		Overlapping: o.Overlapping,
		CreatedAt:   time.Now().UTC(),
	}, results)

	if o.DryRun {
		logger.Info("dry-run: skipping outputs", "output", o.Output, "format", o.Format)
		return nil
	}

	if err := writeOutput(o.Output, db, write); err != nil {
		if report.IsBrokenPipe(err) {
			return nil
		}
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote results", "path", o.Output, "format", o.Format)

	if o.Histogram != "" {
		if err := report.SaveHistogram(o.Histogram, db); err != nil {
			return fmt.Errorf("write histogram: %w", err)
		}
		logger.Info("wrote histogram", "path", o.Histogram)
	}

	if o.StorePath != "" {
		st, err := store.Open(o.StoreKind, o.StorePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		id, err := st.SaveRun(ctx, db)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		logger.Info("saved run", "store", o.StorePath, "kind", o.StoreKind, "run_id", id)
	}
	return nil
}

func writeOutput(path string, db *report.Database, write report.WriterFunc) error {
	if path == "-" {
		return write(os.Stdout, db)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, db); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
