package ncbi

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claireharelson/ORF-finder/internal/fasta"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func resetCache(t *testing.T) {
	t.Helper()
	SetCacheFilePath(filepath.Join(t.TempDir(), "ncbi_cache.json"))
	SetCacheTTLSeconds(-1)
	cache = nil
	cacheDirty = false
}

func okResponse(body string) *http.Response {
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header)}
}

func TestFetchFasta_BatchAndCache(t *testing.T) {
	resetCache(t)
	body := ">ACC1.1 first record\nATGAAA\nTAG\n>ACC2.3 second\nGGGATGCCCTAAGGG\n"
	var gotQuery string
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		gotQuery = r.URL.RawQuery
		return okResponse(body), nil
	})}

	recs, err := FetchFasta(context.Background(), []string{"ACC2", "ACC1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "rettype=fasta") || !strings.Contains(gotQuery, "id=ACC2%2CACC1") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if len(recs) != 2 || recs[0].Sequence != "GGGATGCCCTAAGGG" || recs[1].Sequence != "ATGAAATAG" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if recs[1].Header != "ACC1.1FIRSTRECORD" {
		t.Fatalf("unexpected header: %q", recs[1].Header)
	}

	// second call should hit cache and not invoke HTTP transport
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("HTTP should not be called on cached fetch")
		return nil, nil
	})}
	// force a reload from disk to check the cache was flushed
	SetCacheFilePath(cacheFilePath)
	again, err := FetchFasta(context.Background(), []string{"ACC1"})
	if err != nil {
		t.Fatalf("unexpected error on cached fetch: %v", err)
	}
	if len(again) != 1 || again[0].Sequence != "ATGAAATAG" {
		t.Fatalf("unexpected cached records: %+v", again)
	}
}

func TestFetchFasta_RetryAfter(t *testing.T) {
	resetCache(t)
	calls := 0
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			h := make(http.Header)
			h.Set("Retry-After", "1")
			return &http.Response{StatusCode: 429, Body: io.NopCloser(strings.NewReader("")), Header: h}, nil
		}
		return okResponse(">RACC.1\nATGTAA\n"), nil
	})}

	start := time.Now()
	recs, err := FetchFasta(context.Background(), []string{"RACC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Sequence != "ATGTAA" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if time.Since(start) < time.Second {
		t.Fatalf("expected at least 1s wait due to Retry-After, elapsed %v", time.Since(start))
	}
}

func TestFetchFasta_MissingAccession(t *testing.T) {
	resetCache(t)
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return okResponse(">OTHER.1\nATG\n"), nil
	})}
	if _, err := FetchFasta(context.Background(), []string{"NOPE"}); err == nil {
		t.Fatalf("expected error for accession missing from response")
	}
}

func TestFetchFasta_HTTPError(t *testing.T) {
	resetCache(t)
	httpClient = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 400, Body: io.NopCloser(strings.NewReader("bad id")), Header: make(http.Header)}, nil
	})}
	_, err := FetchFasta(context.Background(), []string{"X"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

// Test cache TTL logic: expired entries should not be returned.
func TestCacheTTL_Expiry(t *testing.T) {
	resetCache(t)
	cacheMu.Lock()
	loadCache()
	cache["OLDACC"] = cachedEntry{Header: "OLDACC", Sequence: "ATG", RetrievedAt: time.Now().Unix() - 100000}
	cacheMu.Unlock()
	SetCacheTTLSeconds(1) // 1 second TTL
	defer SetCacheTTLSeconds(-1)

	if _, ok := getCached("OLDACC"); ok {
		t.Fatalf("expected OLDACC to be expired and not returned")
	}
}

func TestMatchAccessionStopsAtToken(t *testing.T) {
	recs := []fasta.Record{{Header: "NM_000797.4HOMOSAPIENSDOPAMINERECEPTORD4", Sequence: "ATG"}}
	for acc, want := range map[string]bool{
		"NM_000797.4": true,
		"nm_000797":   true,
		"NM_0007":     false,
		"NM_000797.":  false,
		"NM_00079":    false,
	} {
		if _, ok := matchAccession(recs, acc); ok != want {
			t.Fatalf("matchAccession(%q) = %v, want %v", acc, ok, want)
		}
	}
	if _, ok := matchAccession([]fasta.Record{{Header: "NM_000797.41X"}}, "NM_000797.4"); ok {
		t.Fatalf("version NM_000797.4 must not match NM_000797.41")
	}
}
