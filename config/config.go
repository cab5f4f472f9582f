// Package config 命令行参数与环境变量配置
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexflint/go-arg"

	"co2-predictor/algo"
	"co2-predictor/db"
)

// ServeCmd 启动 HTTP 服务 (默认)
type ServeCmd struct{}

// InitCmd 迁移表结构, 写入初始数据和后台账号
type InitCmd struct{}

// EvaluateCmd 用带标注的 CSV 评估模型并保存指标
type EvaluateCmd struct {
	Data  string `arg:"--data,required" help:"CSV file with latitude,longitude,actual rows"`
	Folds int    `arg:"--folds" default:"5" help:"number of contiguous folds for the R² spread"`
	Dry   bool   `arg:"--dry-run" help:"print the report without saving it"`
}

// Config 全部配置, 命令行参数优先于环境变量
type Config struct {
	Serve    *ServeCmd    `arg:"subcommand:serve" help:"run the HTTP API (default)"`
	Init     *InitCmd     `arg:"subcommand:init" help:"migrate the database and load default data"`
	Evaluate *EvaluateCmd `arg:"subcommand:evaluate" help:"score the loaded model against labelled data"`

	Addr         string   `arg:"--addr,env:HTTP_ADDR" help:"listen address"`
	ModelPath    string   `arg:"--model-path,env:MODEL_PATH" help:"fitted model artifact (JSON)"`
	ScalerPath   string   `arg:"--scaler-path,env:SCALER_PATH" help:"fitted scaler artifact (JSON)"`
	ScaledModels []string `arg:"--scaled-models,env:SCALED_MODELS" help:"model types that need the scaler"`
	StaticDir    string   `arg:"--static-dir,env:STATIC_DIR" help:"front-end assets, empty to disable"`

	TrustedProxies []string `arg:"--trusted-proxies,env:TRUSTED_PROXIES" help:"proxy IPs/CIDRs allowed to set X-Forwarded-For, empty trusts none"`

	DBHost        string        `arg:"--db-host,env:DB_HOST" help:"postgres host, empty to run without persistence"`
	DBPort        string        `arg:"--db-port,env:DB_PORT"`
	DBUser        string        `arg:"--db-user,env:DB_USER"`
	DBPassword    string        `arg:"--db-password,env:DB_PASSWORD"`
	DBName        string        `arg:"--db-name,env:DB_NAME"`
	DBTimeZone    string        `arg:"--db-timezone,env:DB_TIMEZONE"`
	DBMaxRetries  int           `arg:"--db-max-retries,env:DB_MAX_RETRIES"`
	DBRetryPeriod time.Duration `arg:"--db-retry-period,env:DB_RETRY_PERIOD"`

	RedisAddr string        `arg:"--redis-addr,env:REDIS_ADDR" help:"use redis for the prediction cache"`
	CacheTTL  time.Duration `arg:"--cache-ttl,env:CACHE_TTL" help:"redis entry lifetime, 0 keeps entries"`
	CacheSize int           `arg:"--cache-size,env:CACHE_SIZE" help:"in-process cache entries, 0 disables"`

	JWTSecret     string `arg:"--jwt-secret,env:JWT_SECRET"`
	AdminUser     string `arg:"--admin-user,env:ADMIN_USER"`
	AdminPassword string `arg:"--admin-password,env:ADMIN_PASSWORD"`

	RateLimit  int           `arg:"--rate-limit,env:RATE_LIMIT" help:"predict requests per window per client, 0 disables"`
	RateWindow time.Duration `arg:"--rate-window,env:RATE_WINDOW"`

	LogLevel  string `arg:"--log-level,env:LOG_LEVEL"`
	LogFormat string `arg:"--log-format,env:LOG_FORMAT" help:"console or json"`
}

// Version go-arg 输出的版本信息
func (Config) Version() string {
	return "co2-predictor 1.0"
}

// Description go-arg 输出的说明
func (Config) Description() string {
	return "CO2 emission intensity prediction API"
}

// Default 默认配置
func Default() Config {
	return Config{
		Addr:          ":8080",
		ModelPath:     "artifacts/co2_model.json",
		ScalerPath:    "artifacts/scaler.json",
		ScaledModels:  append([]string(nil), algo.DefaultScaledModels...),
		StaticDir:     "./static",
		DBPort:        "5432",
		DBUser:        "co2user",
		DBPassword:    "co2password",
		DBName:        "co2predictor",
		DBTimeZone:    "Asia/Kolkata",
		DBMaxRetries:  30,
		DBRetryPeriod: 2 * time.Second,
		CacheTTL:      24 * time.Hour,
		CacheSize:     4096,
		JWTSecret:     "change-me-in-production",
		AdminUser:     "admin",
		RateLimit:     60,
		RateWindow:    time.Minute,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// Load 解析命令行参数和环境变量, -h / --version 时返回 arg.ErrHelp / arg.ErrVersion
func Load(args []string) (Config, *arg.Parser, error) {
	cfg := Default()
	p, err := arg.NewParser(arg.Config{Program: "co2-predictor"}, &cfg)
	if err != nil {
		return cfg, nil, err
	}
	if err := p.Parse(args); err != nil {
		return cfg, p, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, p, err
	}
	return cfg, p, nil
}

func (c Config) validate() error {
	if c.ModelPath == "" {
		return errors.New("model path is required")
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive, got %s", c.RateWindow)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.CacheSize)
	}
	if c.Evaluate != nil && c.Evaluate.Folds < 2 {
		return fmt.Errorf("folds must be at least 2, got %d", c.Evaluate.Folds)
	}
	return nil
}

// PersistenceEnabled 是否配置了数据库
func (c Config) PersistenceEnabled() bool {
	return c.DBHost != ""
}

// Database 数据库连接配置
func (c Config) Database() db.Config {
	return db.Config{
		Host:          c.DBHost,
		Port:          c.DBPort,
		User:          c.DBUser,
		Password:      c.DBPassword,
		Name:          c.DBName,
		TimeZone:      c.DBTimeZone,
		MaxRetries:    c.DBMaxRetries,
		RetryInterval: c.DBRetryPeriod,
	}
}
