// Package evaluate 用带标注的数据集评估当前加载的模型
package evaluate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"co2-predictor/algo"
	"co2-predictor/model"
)

// Sample 一条带真实值的样本
type Sample struct {
	Latitude  float64
	Longitude float64
	Actual    float64
}

// Predictor 评估所需的推理能力
type Predictor interface {
	PredictPoint(lat, lon float64) (model.PredictionResult, error)
	ModelName() string
}

// Report 评估结果
type Report struct {
	ModelName string
	Samples   int
	Skipped   int
	R2        float64
	RMSE      float64
	MAE       float64
	CVR2Mean  float64
	CVR2Std   float64
}

// Metrics 转换为可持久化的模型指标
func (r Report) Metrics() *model.ModelMetrics {
	return &model.ModelMetrics{
		ModelName: r.ModelName,
		R2Score:   r.R2,
		RMSE:      r.RMSE,
		MAE:       r.MAE,
		CVR2Mean:  r.CVR2Mean,
		CVR2Std:   r.CVR2Std,
		Features:  algo.FeatureNames[:],
	}
}

// ReadSamples 读取 CSV: latitude,longitude,actual, 首行为表头时自动跳过
func ReadSamples(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var samples []Sample
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 CSV 失败: %w", err)
		}

		var vals [3]float64
		for i, field := range rec {
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				break
			}
		}
		if err != nil {
			if line == 1 {
				continue // 表头
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, Sample{Latitude: vals[0], Longitude: vals[1], Actual: vals[2]})
	}

	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}
	return samples, nil
}

// Run 对所有样本做预测并计算指标, 预测失败的样本跳过并计数
// folds 个连续分组分别计算 R², 给出均值和标准差
func Run(p Predictor, samples []Sample, folds int) (*Report, error) {
	estimates := make([]float64, 0, len(samples))
	actuals := make([]float64, 0, len(samples))
	skipped := 0

	for _, s := range samples {
		result, err := p.PredictPoint(s.Latitude, s.Longitude)
		if err != nil {
			skipped++
			continue
		}
		estimates = append(estimates, result.PredictedCO2)
		actuals = append(actuals, s.Actual)
	}

	if len(estimates) < 2 {
		return nil, fmt.Errorf("need at least 2 scored samples, got %d", len(estimates))
	}

	absErr := make([]float64, len(estimates))
	sqErr := make([]float64, len(estimates))
	for i := range estimates {
		d := estimates[i] - actuals[i]
		absErr[i] = math.Abs(d)
		sqErr[i] = d * d
	}

	report := &Report{
		ModelName: p.ModelName(),
		Samples:   len(estimates),
		Skipped:   skipped,
		R2:        stat.RSquaredFrom(estimates, actuals, nil),
		RMSE:      math.Sqrt(stat.Mean(sqErr, nil)),
		MAE:       stat.Mean(absErr, nil),
	}
	report.CVR2Mean, report.CVR2Std = foldR2(estimates, actuals, folds)
	return report, nil
}

// foldR2 连续分组的 R² 均值和标准差, 少于 2 个样本的分组忽略
func foldR2(estimates, actuals []float64, folds int) (mean, std float64) {
	if folds < 2 {
		folds = 2
	}
	n := len(estimates)
	if folds > n/2 {
		folds = n / 2
	}

	var scores []float64
	for k := 0; k < folds; k++ {
		lo, hi := k*n/folds, (k+1)*n/folds
		if hi-lo < 2 {
			continue
		}
		r2 := stat.RSquaredFrom(estimates[lo:hi], actuals[lo:hi], nil)
		if math.IsNaN(r2) || math.IsInf(r2, 0) {
			continue
		}
		scores = append(scores, r2)
	}

	switch len(scores) {
	case 0:
		return 0, 0
	case 1:
		return scores[0], 0
	}
	return stat.MeanStdDev(scores, nil)
}
