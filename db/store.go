package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"co2-predictor/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Store 预测历史 / 模型指标 / 参考城市 / 用户 的持久化
type Store struct {
	db  *gorm.DB
	sql *sqlx.DB
}

// NewStore 基于已连接的 gorm.DB 创建 Store, 报表查询共用同一个连接池
func NewStore(conn *gorm.DB) (*Store, error) {
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	return &Store{db: conn, sql: sqlx.NewDb(sqlDB, "postgres")}, nil
}

// Close 关闭连接池
func (s *Store) Close() error {
	return s.sql.Close()
}

// SavePrediction 保存一条预测记录
func (s *Store) SavePrediction(ctx context.Context, rec *model.PredictionRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("保存预测记录失败: %w", err)
	}
	return nil
}

// ListPredictions 按时间倒序分页查询预测记录
func (s *Store) ListPredictions(ctx context.Context, limit, offset int) ([]model.PredictionRecord, error) {
	var records []model.PredictionRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询预测记录失败: %w", err)
	}
	return records, nil
}

// CountPredictions 预测记录总数
func (s *Store) CountPredictions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.PredictionRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计预测记录失败: %w", err)
	}
	return count, nil
}

// ListMetrics 按 R² 倒序返回所有模型指标
func (s *Store) ListMetrics(ctx context.Context) ([]model.ModelMetrics, error) {
	var metrics []model.ModelMetrics
	if err := s.db.WithContext(ctx).Order("r2_score DESC").Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("查询模型指标失败: %w", err)
	}
	return metrics, nil
}

// UpsertMetrics 按 model_name 新增或更新评估指标, 不覆盖 total_predictions
func (s *Store) UpsertMetrics(ctx context.Context, m *model.ModelMetrics) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"r2_score", "rmse", "mae", "cv_r2_mean", "cv_r2_std", "features", "last_updated",
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("保存模型指标失败: %w", err)
	}
	return nil
}

// IncrementPredictionCount 模型的预测次数 +1, 没有指标行时自动创建
func (s *Store) IncrementPredictionCount(ctx context.Context, modelName string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_predictions": gorm.Expr("model_metrics.total_predictions + 1"),
		}),
	}).Create(&model.ModelMetrics{ModelName: modelName, TotalPredictions: 1}).Error
	if err != nil {
		return fmt.Errorf("更新预测次数失败: %w", err)
	}
	return nil
}

// ListLocations 按城市名排序返回参考城市
func (s *Store) ListLocations(ctx context.Context) ([]model.LocationLookup, error) {
	var locations []model.LocationLookup
	if err := s.db.WithContext(ctx).Order("city_name").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("查询参考城市失败: %w", err)
	}
	return locations, nil
}

// GetLocation 按城市名查询
func (s *Store) GetLocation(ctx context.Context, name string) (*model.LocationLookup, error) {
	var loc model.LocationLookup
	err := s.db.WithContext(ctx).Where("city_name = ?", name).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询参考城市失败: %w", err)
	}
	return &loc, nil
}

// UpsertLocation 按城市名新增或更新参考城市
func (s *Store) UpsertLocation(ctx context.Context, loc *model.LocationLookup) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "city_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"latitude", "longitude", "country", "description", "avg_co2_emission",
		}),
	}).Create(loc).Error
	if err != nil {
		return fmt.Errorf("保存参考城市失败: %w", err)
	}
	return nil
}

// FindUser 按用户名查询
func (s *Store) FindUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// EnsureUser 用户不存在时创建, 已存在时更新密码
func (s *Store) EnsureUser(ctx context.Context, username, passwordHash string) (created bool, err error) {
	user, err := s.FindUser(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		user = &model.User{Username: username, Password: passwordHash}
		if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
			return false, fmt.Errorf("创建用户失败: %w", err)
		}
		return true, nil
	case err != nil:
		return false, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password", passwordHash).Error; err != nil {
		return false, fmt.Errorf("更新用户密码失败: %w", err)
	}
	return false, nil
}
