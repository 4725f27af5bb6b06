package ncbi

// Package ncbi fetches nucleotide sequences from NCBI E-utilities by
// accession. Responses are cached on disk as JSON with a TTL.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claireharelson/ORF-finder/internal/fasta"
)

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// efetchURL is the E-utilities efetch endpoint; tests may point it elsewhere.
var efetchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

const maxAttempts = 3

// Cache structures
type cachedEntry struct {
	Header      string `json:"header"`
	Sequence    string `json:"sequence"`
	RetrievedAt int64  `json:"retrieved_at"`
}

var (
	cacheMu       sync.RWMutex
	cache         map[string]cachedEntry
	cacheLoaded   bool
	cacheDirty    bool
	cacheFilePath string
	ttlOverride   int64 = -1
)

// SetCacheFilePath sets the cache file location used by later fetches.
func SetCacheFilePath(p string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheFilePath = p
	cacheLoaded = false
}

// SetCacheTTLSeconds overrides the cache TTL. Zero disables expiry.
func SetCacheTTLSeconds(secs int64) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	ttlOverride = secs
}

// cache TTL in seconds (default 7 days)
func cacheTTL() int64 {
	if ttlOverride >= 0 {
		return ttlOverride
	}
	if s := os.Getenv("NCBI_CACHE_TTL_SECONDS"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return int64(7 * 24 * 3600)
}

func defaultCachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "orffinder")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "ncbi_cache.json")
	}
	return filepath.Join(os.TempDir(), "orffinder_ncbi_cache.json")
}

// loadCache must be called with cacheMu held for writing.
func loadCache() {
	if cacheLoaded {
		return
	}
	cache = make(map[string]cachedEntry)
	if data, err := os.ReadFile(defaultCachePath()); err == nil {
		_ = json.Unmarshal(data, &cache)
	}
	cacheLoaded = true
}

// FlushCache writes pending cache entries to disk.
func FlushCache() error {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if !cacheDirty {
		return nil
	}
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(defaultCachePath(), b, 0o644); err != nil {
		return err
	}
	cacheDirty = false
	return nil
}

func getCached(acc string) (cachedEntry, bool) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	loadCache()
	e, ok := cache[acc]
	if !ok {
		return cachedEntry{}, false
	}
	ttl := cacheTTL()
	if ttl > 0 && time.Now().Unix()-e.RetrievedAt > ttl {
		return cachedEntry{}, false
	}
	return e, true
}

func setCached(acc string, rec fasta.Record) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	loadCache()
	cache[acc] = cachedEntry{Header: rec.Header, Sequence: rec.Sequence, RetrievedAt: time.Now().Unix()}
	cacheDirty = true
}

// FetchFasta returns one record per accession, in the order given. Cached
// entries are served without a request; the rest are fetched in a single
// efetch call. Accessions missing from the response are reported as an error.
func FetchFasta(ctx context.Context, accessions []string) ([]fasta.Record, error) {
	var missing []string
	for _, acc := range accessions {
		if _, ok := getCached(acc); !ok {
			missing = append(missing, acc)
		}
	}

	if len(missing) > 0 {
		recs, err := efetch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, acc := range missing {
			if rec, ok := matchAccession(recs, acc); ok {
				setCached(acc, rec)
			}
		}
		if err := FlushCache(); err != nil {
			return nil, fmt.Errorf("write ncbi cache: %w", err)
		}
	}

	out := make([]fasta.Record, 0, len(accessions))
	for _, acc := range accessions {
		e, ok := getCached(acc)
		if !ok {
			return nil, fmt.Errorf("ncbi: accession %s not found in response", acc)
		}
		out = append(out, fasta.Record{Header: e.Header, Sequence: e.Sequence})
	}
	return out, nil
}

// matchAccession finds the record whose (normalised) header begins with the
// accession acc. Headers have their spaces removed, so the accession must end
// where the header's accession token ends: an unversioned acc must be
// followed by its version dot, a versioned one by a non-digit.
func matchAccession(recs []fasta.Record, acc string) (fasta.Record, bool) {
	want := strings.ToUpper(acc)
	versioned := strings.Contains(want, ".")
	for _, r := range recs {
		if !strings.HasPrefix(r.Header, want) {
			continue
		}
		if len(r.Header) == len(want) {
			return r, true
		}
		next := r.Header[len(want)]
		if versioned && (next < '0' || next > '9') {
			return r, true
		}
		if !versioned && next == '.' {
			return r, true
		}
	}
	return fasta.Record{}, false
}

func efetch(ctx context.Context, accessions []string) ([]fasta.Record, error) {
	q := url.Values{}
	q.Set("db", "nuccore")
	q.Set("id", strings.Join(accessions, ","))
	q.Set("rettype", "fasta")
	q.Set("retmode", "text")
	if apiKey := os.Getenv("NCBI_API_KEY"); apiKey != "" {
		q.Set("api_key", apiKey)
	}
	reqURL := efetchURL + "?" + q.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "orffinder/1.0")
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			if werr := wait(ctx, time.Duration(attempt*300)*time.Millisecond); werr != nil {
				return nil, werr
			}
			continue
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			recs, err := fasta.ParseFasta(resp.Body)
			resp.Body.Close()
			return recs, err
		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter(resp.Header.Get("Retry-After"), time.Duration(attempt*500)*time.Millisecond)
			resp.Body.Close()
			lastErr = fmt.Errorf("ncbi efetch returned 429")
			if werr := wait(ctx, delay); werr != nil {
				return nil, werr
			}
		default:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("ncbi efetch returned status %d: %s", resp.StatusCode, string(body))
		}
	}
	return nil, lastErr
}

func retryAfter(h string, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
