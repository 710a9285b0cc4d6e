package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/infra/adminapi"
	"backoffice/internal/infra/db"
	infraRepo "backoffice/internal/infra/repository"
	"backoffice/internal/infra/session"
	"backoffice/internal/server"
	"backoffice/pkg/logger"
)

func main() {
	//.envは無くてもよい（環境変数で渡す）
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
	if err := cfg.RequireAPI(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//ウィザードの保存先
	rdb, err := session.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connect failed", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	//監査ログ
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.MigrateAudit(gormDB); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//上流EC API
	upstream := adminapi.NewClient(cfg.UpstreamBaseURL,
		adminapi.WithTimeout(cfg.UpstreamTimeout),
		adminapi.WithRateLimit(cfg.UpstreamRPS),
		adminapi.WithLogger(log.Named("upstream")),
	)

	e := server.NewAPI(cfg, log, server.APIDeps{
		Upstream: upstream,
		Sessions: session.NewWizardRedisRepository(rdb, cfg.WizardTTL),
		Audit:    infraRepo.NewAuditLogGormRepository(gormDB),
	})

	if err := server.Start(ctx, e, cfg.Addr(), log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
