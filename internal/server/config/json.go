package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rentkeeper/internal/flagx"
	"github.com/dmitrijs2005/rentkeeper/internal/timex"
)

// JsonConfig is the JSON file form of Config. Durations accept strings such
// as "15m" or integer nanoseconds. Absent fields leave Config unchanged.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	UploadURLTTL   timex.Duration `json:"upload_url_ttl"`
	StorageBackend string         `json:"storage_backend"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	PublicBaseURL  string         `json:"public_base_url"`
	SweepInterval  timex.Duration `json:"sweep_interval"`
}

// parseJson loads the JSON file named by -c or -config into cfg.
// It panics when the file cannot be read or parsed.
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

	overlay(&cfg.ListenAddr, jc.ListenAddr)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.SecretKey, jc.SecretKey)
	overlay(&cfg.StorageBackend, jc.StorageBackend)
	overlay(&cfg.S3RootUser, jc.S3RootUser)
	overlay(&cfg.S3RootPassword, jc.S3RootPassword)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(&cfg.PublicBaseURL, jc.PublicBaseURL)

	if jc.UploadURLTTL.Duration != 0 {
		cfg.UploadURLTTL = jc.UploadURLTTL.Duration
	}
	if jc.SweepInterval.Duration != 0 {
		cfg.SweepInterval = jc.SweepInterval.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
