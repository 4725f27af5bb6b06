package config

import (
	"encoding/json"
	"os"

	"github.com/claireharelson/ORF-finder/internal/orf"
)

type Config struct {
	InputFasta       string `json:"input_fasta"`
	Output           string `json:"output"`
	Format           string `json:"format"`
	MinLength        int    `json:"min_length"`
	Overlapping      bool   `json:"overlapping"`
	Strand           string `json:"strand"`
	Workers          int    `json:"workers"`
	HistogramPNG     string `json:"histogram_png"`
	StorePath        string `json:"store_path"`
	StoreKind        string `json:"store_kind"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
	NcbiCachePath    string `json:"ncbi_cache_path"`
	NcbiApiKey       string `json:"ncbi_api_key"`
	NcbiCacheTTLSecs int64  `json:"ncbi_cache_ttl_seconds"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	return &Config{
		Output:    "output_file.txt",
		Format:    "text",
		MinLength: orf.DefaultMinLength,
		Strand:    "both",
	}
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
// A missing file is not an error: defaults are returned. Fields absent from
// the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		// not fatal: return defaults
		return c, nil
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}
