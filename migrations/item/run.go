package main

import (
	"context"
	"embed"
	"os"
	"time"

	"github.com/ghuser/stockhub/pkg/config"
	"github.com/ghuser/stockhub/pkg/logger"
	"github.com/ghuser/stockhub/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrator.RunMigrations(ctx, cfg.DatabaseURL, MigrationsFS, log); err != nil {
		log.Error("item migrations failed", "error", err)
		os.Exit(1)
	}
}
