package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvListenAddr     = "RENTKEEPER_LISTEN_ADDR"
	EnvDatabaseDSN    = "RENTKEEPER_DATABASE_DSN"
	EnvSecretKey      = "RENTKEEPER_JWT_SECRET"
	EnvUploadURLTTL   = "RENTKEEPER_UPLOAD_URL_TTL"
	EnvStorageBackend = "RENTKEEPER_STORAGE_BACKEND"
	EnvS3RootUser     = "RENTKEEPER_S3_ACCESS_KEY"
	EnvS3RootPassword = "RENTKEEPER_S3_SECRET_KEY"
	EnvS3Bucket       = "RENTKEEPER_S3_BUCKET"
	EnvS3Region       = "RENTKEEPER_S3_REGION"
	EnvS3BaseEndpoint = "RENTKEEPER_S3_ENDPOINT"
	EnvPublicBaseURL  = "RENTKEEPER_PUBLIC_BASE_URL"
	EnvSweepInterval  = "RENTKEEPER_SWEEP_INTERVAL"
)

// parseEnv overlays Config with environment variables. A dotenv file named
// by -env-file is loaded first (a missing one panics); without the flag a
// ./.env is loaded when present. Variables already set in the process
// environment win over the file. Malformed durations panic.
func parseEnv(cfg *Config) {
	if envFile := flagx.EnvFileFlag(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&cfg.ListenAddr, EnvListenAddr)
	setString(&cfg.DatabaseDSN, EnvDatabaseDSN)
	setString(&cfg.SecretKey, EnvSecretKey)
	setDuration(&cfg.UploadURLTTL, EnvUploadURLTTL)
	setString(&cfg.StorageBackend, EnvStorageBackend)
	setString(&cfg.S3RootUser, EnvS3RootUser)
	setString(&cfg.S3RootPassword, EnvS3RootPassword)
	setString(&cfg.S3Bucket, EnvS3Bucket)
	setString(&cfg.S3Region, EnvS3Region)
	setString(&cfg.S3BaseEndpoint, EnvS3BaseEndpoint)
	setString(&cfg.PublicBaseURL, EnvPublicBaseURL)
	setDuration(&cfg.SweepInterval, EnvSweepInterval)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
