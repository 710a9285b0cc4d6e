package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/devapi"
	"backoffice/internal/infra/db"
	"backoffice/internal/server"
	"backoffice/pkg/logger"
)

// ローカル開発用の上流EC API
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.MustNew(cfg.GoEnv)
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug(".env not loaded", zap.Error(envErr))
	}
	if err := cfg.RequireDevAPI(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.MigrateUpstream(gormDB); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	svc := devapi.NewServiceFromDB(gormDB, log)
	if _, err := svc.Seed(context.Background()); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	e := server.NewEcho(cfg, log)
	devapi.NewHandler(svc, log).RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, cfg.Addr(), log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
