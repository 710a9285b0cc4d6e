package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backoffice/internal/config"
	"backoffice/internal/domain/model"
)

const sqlitePrefix = "sqlite:"

// Connect はDBに接続して *gorm.DB を返す。
// DATABASE_URL が "sqlite:" で始まればSQLite（ローカル・テスト用）。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if strings.HasPrefix(cfg.DatabaseURL, sqlitePrefix) {
		return OpenSQLite(strings.TrimPrefix(cfg.DatabaseURL, sqlitePrefix))
	}
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
	return gorm.Open(postgres.Open(dsn), gcfg)
}

// 空なら接続ごとのインメモリDB（テスト用）
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	//SQLiteは同時書き込みできない。インメモリは接続が切れると消える。
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// devapi（上流のEC API）が使うテーブル
func MigrateUpstream(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	)
}

// ウィザードサービスの監査ログ
func MigrateAudit(db *gorm.DB) error {
	return db.AutoMigrate(&model.AuditLog{})
}
