package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/config"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/repositories/attempts"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/filex"
	"github.com/dmitrijs2005/rentkeeper/internal/imagex"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/netx"
)

const stateDir = ".rentkeeper"

type App struct {
	config   *config.Config
	uploads  services.UploadService
	replace  services.ReplaceService
	files    services.FileService
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	loadFile func(path string) (models.File, error)

	api *client.HTTPClient
	db  *sql.DB
}

// NewApp wires the services for cfg. When no access token is configured the
// user is prompted for one.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	token := cfg.AccessToken
	if token == "" {
		t, err := GetToken(os.Stderr)
		if err != nil {
			return nil, err
		}
		token = t
	}

	apiClient, err := client.NewHTTPClient(cfg.ServerURL, token, client.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}

	opts := []services.UploadOption{
		services.WithLogger(log),
		services.WithCodec(imagex.New()),
		services.WithImageLimits(cfg.MaxImageWidth, cfg.ImageQuality),
	}
	if !cfg.Compress {
		opts = append(opts, services.WithoutCompression())
	}

	db, err := openJournal(ctx, cfg.JournalDSN)
	if err != nil {
		log.Warn(ctx, "attempt journal disabled", "error", err)
	} else {
		opts = append(opts, services.WithJournal(attempts.NewSQLiteRepository(db)))
	}

	uploader := netx.NewUploader(&http.Client{Timeout: cfg.TransferTimeout})
	uploads := services.NewUploadService(apiClient, uploader, opts...)

	return &App{
		config:   cfg,
		uploads:  uploads,
		replace:  services.NewReplaceService(uploads, apiClient, log),
		files:    services.NewFileService(apiClient),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		loadFile: filex.Load,
		api:      apiClient,
		db:       db,
	}, nil
}

func openJournal(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dir, err := filex.EnsureSubdDir(stateDir)
		if err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "journal.db")
	}
	return client.InitDatabase(ctx, dsn)
}

// Run releases credentials left over by an earlier run and then serves the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if n, err := a.uploads.SweepAbandoned(ctx); err != nil {
		a.log.Warn(ctx, "sweep of abandoned uploads failed", "error", err)
	} else if n > 0 {
		a.log.Info(ctx, "released abandoned uploads", "count", n)
	}

	fmt.Fprintln(a.out, "rentkeeper upload client (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) status() string {
	if a.config == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.config.ServerURL)
}

func (a *App) Close() {
	if a.api != nil {
		_ = a.api.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
