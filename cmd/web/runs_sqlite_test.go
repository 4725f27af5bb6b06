package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/claireharelson/ORF-finder/internal/report"
	"github.com/claireharelson/ORF-finder/internal/store"
)

func TestRunsAPI_SQLite(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer st.Close()

	coding := "ATG" + strings.Repeat("GCC", 18) + "TAA"
	now := time.Now().UTC().Truncate(time.Second)
	id, err := st.SaveRun(context.Background(), &report.Database{
		RunInfo: report.RunInfo{Input: "in.fasta", MinLength: 50, CreatedAt: now},
		Sequences: []report.Sequence{{ID: "SEQ1", Length: 60, ORFs: []report.Entry{
			{Strand: "+", Frame: 1, Pos: 1, End: 60, Length: 60, Sequence: coding, Coding: coding, Protein: "M" + strings.Repeat("A", 18) + "*"},
		}}},
	})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	srv := newTestServer(t, st)

	resp, err := http.Get(srv.URL + "/api/runs/" + strconv.FormatInt(id, 10))
	if err != nil {
		t.Fatal(err)
	}
	var db report.Database
	err = json.NewDecoder(resp.Body).Decode(&db)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if db.Input != "in.fasta" || len(db.Sequences) != 1 || db.Sequences[0].ORFs[0].Coding != coding {
		t.Fatalf("unexpected run: %+v", db)
	}

	resp, err = http.Get(srv.URL + "/run/" + strconv.FormatInt(id, 10) + "/histogram.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	png, _ := io.ReadAll(resp.Body)
	if resp.Header.Get("Content-Type") != "image/png" || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("expected png histogram, got %q", resp.Header.Get("Content-Type"))
	}
}
