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
//	-a string   metadata service base URL
//	-t string   access token
//	-r int      request timeout in seconds
//	-u int      transfer timeout in seconds
//	-w int      max image width in pixels
//	-q int      image quality (1-100)
//	-compress   enable image compression (use -compress=false to disable)
//	-j string   attempt journal DSN
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-u", "-w", "-q", "-compress", "-j"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "metadata service base URL")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	requestTimeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	transferTimeout := fs.Int("u", int(cfg.TransferTimeout.Seconds()), "transfer timeout (in seconds)")
	fs.IntVar(&cfg.MaxImageWidth, "w", cfg.MaxImageWidth, "max image width in pixels")
	fs.IntVar(&cfg.ImageQuality, "q", cfg.ImageQuality, "image quality (1-100)")
	fs.BoolVar(&cfg.Compress, "compress", cfg.Compress, "compress images before upload")
	fs.StringVar(&cfg.JournalDSN, "j", cfg.JournalDSN, "attempt journal DSN")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		case "u":
			cfg.TransferTimeout = time.Duration(*transferTimeout) * time.Second
		}
	})
}
