package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      upload URL validity, minutes
//	-k string   storage backend: s3 or minio
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   public (CDN) base URL
//	-i int      sweep interval, seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-k", "-u", "-p", "-b", "-g", "-e", "-l", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	uploadURLTTL := fs.Int("t", int(cfg.UploadURLTTL.Minutes()), "upload URL validity (in minutes)")
	fs.StringVar(&cfg.StorageBackend, "k", cfg.StorageBackend, "storage backend (s3|minio)")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.PublicBaseURL, "l", cfg.PublicBaseURL, "public base URL")
	sweepInterval := fs.Int("i", int(cfg.SweepInterval.Seconds()), "sweep interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Whole-unit flags only replace durations when passed explicitly, so a
	// sub-minute TTL from env or JSON survives.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.UploadURLTTL = time.Duration(*uploadURLTTL) * time.Minute
		case "i":
			cfg.SweepInterval = time.Duration(*sweepInterval) * time.Second
		}
	})
}
