package main

import (
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/claireharelson/ORF-finder/internal/fasta"
	"github.com/claireharelson/ORF-finder/internal/orf"
	"github.com/claireharelson/ORF-finder/internal/pipeline"
	"github.com/claireharelson/ORF-finder/internal/report"
	"github.com/claireharelson/ORF-finder/internal/store"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// maxUpload bounds the FASTA text accepted by the scan form.
const maxUpload = 8 << 20

// RunsPage is used to render the base page and to carry query state
type RunsPage struct {
	Runs      []store.Summary
	Query     string
	Sort      string
	MinLength int
}

// RunPage carries a stored run to the detail templates.
type RunPage struct {
	ID int64
	DB *report.Database
}

var templates *template.Template

func loadTemplates(fsys fs.FS) error {
	t, err := template.ParseFS(fsys, "*.html")
	if err != nil {
		return err
	}
	templates = t
	return nil
}

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request", "remote", r.RemoteAddr, "method", r.Method, "uri", r.URL.RequestURI(),
			"status", srw.status, "bytes", srw.written, "duration", time.Since(start), "ua", r.UserAgent())
	})
}

// filterRuns keeps the runs whose input contains q and orders them by sortMode.
func filterRuns(runs []store.Summary, q, sortMode string) []store.Summary {
	q = strings.ToLower(strings.TrimSpace(q))
	filtered := make([]store.Summary, 0, len(runs))
	for _, s := range runs {
		if q == "" || strings.Contains(strings.ToLower(s.Input), q) {
			filtered = append(filtered, s)
		}
	}
	switch sortMode {
	case "orfs":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ORFs > filtered[j].ORFs })
	case "input":
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Input) < strings.ToLower(filtered[j].Input)
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })
	}
	return filtered
}

func indexHandler(st store.Store, logger *log.Logger, minLength int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := st.Runs(r.Context())
		if err != nil {
			logger.Warn("failed to list runs for index", "err", err)
			runs = []store.Summary{}
		}
		q, sortMode := r.URL.Query().Get("q"), r.URL.Query().Get("sort")
		page := RunsPage{Runs: filterRuns(runs, q, sortMode), Query: q, Sort: sortMode, MinLength: minLength}
		if err := templates.ExecuteTemplate(w, "base.html", page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// loadRun resolves the {id} path value to a stored run, writing the HTTP
// error itself when that fails.
func loadRun(st store.Store, w http.ResponseWriter, r *http.Request) (int64, *report.Database, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return 0, nil, false
	}
	db, err := st.Run(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return 0, nil, false
	}
	if err != nil {
		http.Error(w, "failed to read run", http.StatusInternalServerError)
		return 0, nil, false
	}
	return id, db, true
}

func runHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, db, ok := loadRun(st, w, r)
		if !ok {
			return
		}
		page := RunPage{ID: id, DB: db}
		// fragment requests only get the detail block
		name := "run_page.html"
		if r.Header.Get("HX-Request") == "true" || r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
			name = "detail.html"
		}
		if err := templates.ExecuteTemplate(w, name, page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func runFastaHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, db, ok := loadRun(st, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/x-fasta; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=run-%d.fasta", id))
		_ = report.WriteFasta(w, db)
	}
}

func histogramHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, db, ok := loadRun(st, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := report.WriteHistogram(w, db); err != nil {
			http.Error(w, fmt.Sprintf("render histogram: %v", err), http.StatusInternalServerError)
		}
	}
}

// scanHandler scans the FASTA text posted by the index form, stores the run
// and redirects to it.
func scanHandler(st store.Store, logger *log.Logger, minLength, workers int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		minLen := minLength
		if v := strings.TrimSpace(r.FormValue("min")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < minLength {
				http.Error(w, fmt.Sprintf("minimum length must be an integer of at least %d", minLength), http.StatusBadRequest)
				return
			}
			minLen = n
		}
		records, err := fasta.ParseFasta(strings.NewReader(r.FormValue("fasta")))
		if err != nil || len(records) == 0 {
			http.Error(w, "no FASTA records in request", http.StatusBadRequest)
			return
		}
		records = fasta.Unique(records)
		overlapping := r.FormValue("overlapping") != ""

		results, err := pipeline.Run(r.Context(), records, pipeline.Options{
			Scan:    orf.Options{MinLength: minLen, Overlapping: overlapping},
			Workers: workers,
			Logger:  logger,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("scan failed: %v", err), http.StatusInternalServerError)
			return
		}
		db := report.Build(report.RunInfo{
			Input:       "web upload",
			MinLength:   minLen,
			Overlapping: overlapping,
			CreatedAt:   time.Now().UTC(),
		}, results)
		id, err := st.SaveRun(r.Context(), db)
		if err != nil {
			http.Error(w, "failed to save run", http.StatusInternalServerError)
			return
		}
		logger.Info("stored web scan", "run_id", id, "sequences", len(records), "orfs", pipeline.Count(results))
		http.Redirect(w, r, fmt.Sprintf("/run/%d", id), http.StatusSeeOther)
	}
}

// apiRunsHandler returns the JSON list of stored runs
func apiRunsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := st.Runs(r.Context())
		if err != nil {
			http.Error(w, "failed to list runs", http.StatusInternalServerError)
			return
		}
		runs = filterRuns(runs, r.URL.Query().Get("q"), r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(runs)
	}
}

// apiRunHandler returns JSON for a single run
func apiRunHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, db, ok := loadRun(st, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(db)
	}
}

func newMux(st store.Store, logger *log.Logger, minLength, workers int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", indexHandler(st, logger, minLength))
	mux.HandleFunc("POST /scan", scanHandler(st, logger, minLength, workers))
	mux.HandleFunc("GET /run/{id}", runHandler(st))
	mux.HandleFunc("GET /run/{id}/fasta", runFastaHandler(st))
	mux.HandleFunc("GET /run/{id}/histogram.png", histogramHandler(st))
	// API endpoints for SPA-like interactions
	mux.HandleFunc("GET /api/runs", apiRunsHandler(st))
	mux.HandleFunc("GET /api/runs/{id}", apiRunHandler(st))
	return mux
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("store", "runs.db", "result store written by orffinder -store")
	storeKind := flag.String("store-kind", "sqlite", "result store kind: sqlite or json")
	templatesDir := flag.String("templates", "", "directory of HTML templates overriding the embedded ones")
	minLength := flag.Int("min", orf.DefaultMinLength, "smallest minimum ORF length accepted by the scan form")
	workers := flag.Int("workers", 0, "sequences scanned concurrently per upload (0 = one per CPU)")
	logFile := flag.String("log", "", "path to write access logs (optional). If empty, logs go to stdout only")
	flag.Parse()

	// configure logger
	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal("failed to open log file", "err", err)
		}
		defer f.Close()
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := log.NewWithOptions(out, log.Options{ReportTimestamp: true, Prefix: "orfweb"})

	var tfs fs.FS
	if *templatesDir != "" {
		tfs = os.DirFS(*templatesDir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			logger.Fatal("embedded templates", "err", err)
		}
		tfs = sub
	}
	if err := loadTemplates(tfs); err != nil {
		logger.Fatal("failed to load templates", "err", err)
	}

	st, err := store.Open(*storeKind, *dbPath)
	if err != nil {
		logger.Fatal("failed to open store", "path", *dbPath, "err", err)
	}
	defer st.Close()

	// wrap mux with logging middleware
	handler := loggingMiddleware(logger, newMux(st, logger, *minLength, *workers))

	srv := &http.Server{Addr: *addr, Handler: handler, ReadTimeout: 30 * time.Second, WriteTimeout: 2 * time.Minute}
	logger.Info("serving ORF runs", "url", "http://"+*addr+"/", "store", *dbPath, "kind", *storeKind)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}
