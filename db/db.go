package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"co2-predictor/model"
)

// Config 数据库连接配置
type Config struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	TimeZone      string
	MaxRetries    int
	RetryInterval time.Duration
}

// DSN 生成 postgres 连接串
func (c Config) DSN() string {
	tz := c.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, tz,
	)
}

// Open 连接 PostgreSQL 并自动迁移表结构
// 容器启动时数据库可能还没准备好, 所以带重试
func Open(cfg Config) (*gorm.DB, error) {
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < retries; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Warn().Err(err).Msgf("等待数据库就绪... (%d/%d)", i+1, retries)
		time.Sleep(cfg.RetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 自动迁移模式 (自动创建表结构)
	err = conn.AutoMigrate(
		&model.User{},
		&model.PredictionRecord{},
		&model.ModelMetrics{},
		&model.LocationLookup{},
	)
	if err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("数据库连接并初始化成功")
	return conn, nil
}
