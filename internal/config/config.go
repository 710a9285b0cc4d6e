package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	JWTSecret string // JWT署名シークレット（上流の認証と共有）

	UpstreamBaseURL string        // 上流EC APIのURL
	UpstreamTimeout time.Duration // 上流へのリクエストのタイムアウト
	UpstreamRPS     float64       // 上流への秒間リクエスト数（0で無制限）
	UpstreamToken   string        // CLI用のBearerトークン

	RedisURL  string        // ウィザード保存先
	WizardTTL time.Duration // ウィザードの有効期限

	DatabaseURL      string // あれば最優先（sqlite:... も可）
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disable/require

	RollbackOnItemFailure bool // 明細作成失敗時に注文を削除する
	ClearCartAfterSubmit  bool // 注文成功後にカートを空にする

	FEURL string // フロントURL（CORS）
}

// Loadは環境変数から読む。必須チェックは Require* で用途ごとに行う。
func Load() (Config, error) {
	timeout, err := durationOr("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	rps, err := floatOr("UPSTREAM_RPS", 20)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationOr("WIZARD_TTL", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	pgPort, err := intOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	rollback, err := boolOr("ORDER_ROLLBACK_ON_ITEM_FAILURE", true)
	if err != nil {
		return Config{}, err
	}
	clearCart, err := boolOr("CLEAR_CART_AFTER_SUBMIT", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  os.Getenv("PORT"),
		GoEnv: getenv("GO_ENV", "dev"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),
		UpstreamTimeout: timeout,
		UpstreamRPS:     rps,
		UpstreamToken:   os.Getenv("UPSTREAM_TOKEN"),

		RedisURL:  getenv("REDIS_URL", "redis://localhost:6379/0"),
		WizardTTL: ttl,

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RollbackOnItemFailure: rollback,
		ClearCartAfterSubmit:  clearCart,

		FEURL: os.Getenv("FE_URL"),
	}

	if cfg.UpstreamRPS < 0 {
		return Config{}, fmt.Errorf("UPSTREAM_RPS must be >= 0")
	}
	if cfg.WizardTTL <= 0 {
		return Config{}, fmt.Errorf("WIZARD_TTL must be > 0")
	}

	return cfg, nil
}

// ウィザードサービス（cmd/api）の必須チェック
func (c Config) RequireAPI() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.UpstreamBaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	return nil
}

// devapiの必須チェック
func (c Config) RequireDevAPI() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

// CLIの必須チェック
func (c Config) RequireCLI() error {
	if c.UpstreamBaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// ":8080" 形式にする
func (c Config) Addr() string {
	if c.Port == "" {
		return ":8080"
	}
	if c.Port[0] != ':' {
		return ":" + c.Port
	}
	return c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func floatOr(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
