package config

import (
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// Config holds runtime settings for the rentkeeper upload CLI.
//
// Fields:
//   - ServerURL: base URL of the metadata service.
//   - AccessToken: bearer token; when empty the CLI prompts for it.
//   - RequestTimeout: per-call timeout for metadata service requests.
//   - TransferTimeout: timeout for one PUT to the blob store.
//   - MaxImageWidth, ImageQuality, Compress: client-side image compression.
//   - JournalDSN: SQLite DSN of the attempt journal; empty uses the default
//     file in the local state directory.
type Config struct {
	ServerURL       string
	AccessToken     string
	RequestTimeout  time.Duration
	TransferTimeout time.Duration
	MaxImageWidth   int
	ImageQuality    int
	Compress        bool
	JournalDSN      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.TransferTimeout = 5 * time.Minute
	c.MaxImageWidth = common.DefaultMaxImageWidth
	c.ImageQuality = common.DefaultImageQuality
	c.Compress = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
