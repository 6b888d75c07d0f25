// Package server assembles the metadata service: database, blob store,
// metrics and HTTP API, and runs them until the context ends.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/server/config"
	"github.com/dmitrijs2005/rentkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/rentkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentkeeper/internal/server/services"
	"github.com/dmitrijs2005/rentkeeper/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

var (
	openDB          = repomanager.OpenDB
	newRepoManager  = repomanager.NewPostgresRepositoryManager
	newStoreBackend = newBlobStore
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	files  *services.FileService
	router http.Handler
}

// NewApp connects to the database, applies migrations and builds the
// configured blob store.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := newRepoManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newStoreBackend(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	fs := services.NewFileService(db, repos, store, c.UploadURLTTL, l, m)
	h := httpapi.NewHandler(fs, db, []byte(c.SecretKey), m, l)

	return &App{
		config: c,
		logger: l,
		db:     db,
		files:  fs,
		router: httpapi.NewRouter(h, reg),
	}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (storage.BlobStore, error) {
	switch c.StorageBackend {
	case config.BackendS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Region:        c.S3Region,
			AccessKey:     c.S3RootUser,
			SecretKey:     c.S3RootPassword,
			Endpoint:      c.S3BaseEndpoint,
			Bucket:        c.S3Bucket,
			PublicBaseURL: c.PublicBaseURL,
		})
	case config.BackendMinio:
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:      c.S3BaseEndpoint,
			AccessKey:     c.S3RootUser,
			SecretKey:     c.S3RootPassword,
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			PublicBaseURL: c.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

// Run serves HTTP and sweeps expired uploads until ctx is cancelled or
// either of them fails.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	srv := httpapi.NewHTTPServer(app.config.ListenAddr, app.router, app.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return app.files.RunSweeper(gctx, app.config.SweepInterval)
	})

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
