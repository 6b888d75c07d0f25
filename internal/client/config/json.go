package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rentkeeper/internal/flagx"
	"github.com/dmitrijs2005/rentkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be strings like "30s" or integer nanoseconds.
// Absent fields leave the current value alone.
type JsonConfig struct {
	ServerURL       string         `json:"server_url"`
	AccessToken     string         `json:"access_token"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	TransferTimeout timex.Duration `json:"transfer_timeout"`
	MaxImageWidth   int            `json:"max_image_width"`
	ImageQuality    int            `json:"image_quality"`
	Compress        *bool          `json:"compress"`
	JournalDSN      string         `json:"journal_dsn"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TransferTimeout.Duration != 0 {
		cfg.TransferTimeout = jc.TransferTimeout.Duration
	}
	if jc.MaxImageWidth != 0 {
		cfg.MaxImageWidth = jc.MaxImageWidth
	}
	if jc.ImageQuality != 0 {
		cfg.ImageQuality = jc.ImageQuality
	}
	if jc.Compress != nil {
		cfg.Compress = *jc.Compress
	}
	if jc.JournalDSN != "" {
		cfg.JournalDSN = jc.JournalDSN
	}
}
