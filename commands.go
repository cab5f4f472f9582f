package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"co2-predictor/config"
	"co2-predictor/evaluate"
	"co2-predictor/utils"
)

// runInit 迁移表结构, 写入默认数据和后台账号
// 模型可用时顺便计算各参考城市的预测排放
func runInit(cfg config.Config) error {
	if !cfg.PersistenceEnabled() {
		return errors.New("init needs a database, set DB_HOST")
	}
	ctx := context.Background()

	fmt.Println("Initializing CO2 Predictor App...")
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Seed(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		status := "Already exists"
		if r.Created {
			status = "Created"
		}
		fmt.Printf("✓ %s: %s\n", status, r.Name)
	}

	if cfg.AdminPassword != "" {
		hash, err := utils.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("密码加密失败: %w", err)
		}
		created, err := store.EnsureUser(ctx, cfg.AdminUser, hash)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("✓ Created: admin user %s\n", cfg.AdminUser)
		} else {
			fmt.Printf("✓ Updated: admin user %s\n", cfg.AdminUser)
		}
	}

	svc, err := loadService(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("跳过参考城市排放计算")
	} else {
		locations, err := store.ListLocations(ctx)
		if err != nil {
			return err
		}
		for i := range locations {
			loc := &locations[i]
			result, err := svc.PredictPoint(loc.Latitude, loc.Longitude)
			if err != nil {
				log.Warn().Err(err).Str("city", loc.CityName).Msg("参考城市预测失败")
				continue
			}
			value := result.PredictedCO2
			loc.AvgCO2Emission = &value
			if err := store.UpsertLocation(ctx, loc); err != nil {
				return err
			}
		}
		fmt.Printf("✓ Updated: emission estimates for %d locations\n", len(locations))
	}

	fmt.Println("✓ Initialization complete!")
	return nil
}

// runEvaluate 评估模型并保存指标
func runEvaluate(cfg config.Config) error {
	svc, err := loadService(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.Evaluate.Data)
	if err != nil {
		return fmt.Errorf("打开数据集失败: %w", err)
	}
	defer f.Close()

	samples, err := evaluate.ReadSamples(f)
	if err != nil {
		return err
	}

	report, err := evaluate.Run(svc, samples, cfg.Evaluate.Folds)
	if err != nil {
		return err
	}

	fmt.Printf("model:    %s\n", report.ModelName)
	fmt.Printf("samples:  %d (skipped %d)\n", report.Samples, report.Skipped)
	fmt.Printf("R²:       %.4f\n", report.R2)
	fmt.Printf("RMSE:     %.4f\n", report.RMSE)
	fmt.Printf("MAE:      %.4f\n", report.MAE)
	fmt.Printf("fold R²:  %.4f ± %.4f (%d folds)\n", report.CVR2Mean, report.CVR2Std, cfg.Evaluate.Folds)

	if cfg.Evaluate.Dry {
		return nil
	}
	if !cfg.PersistenceEnabled() {
		log.Warn().Msg("未配置数据库, 评估结果未保存")
		return nil
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpsertMetrics(context.Background(), report.Metrics()); err != nil {
		return err
	}
	fmt.Println("✓ Saved model metrics")
	return nil
}
