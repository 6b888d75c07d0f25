package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/rentkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/rentkeeper/internal/client/cli"
	"github.com/dmitrijs2005/rentkeeper/internal/client/config"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildinfo.PrintBuildData(os.Stderr)

	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, slog.LevelInfo)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
