package algo

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Linear 线性模型 (LinearRegression / Ridge / Lasso / ElasticNet)
// y = coef · x + intercept
type Linear struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (l *Linear) validate() error {
	if len(l.Coef) != FeatureCount {
		return fmt.Errorf("coef has %d entries, want %d", len(l.Coef), FeatureCount)
	}
	return nil
}

// Predict 计算线性组合
func (l *Linear) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, len(l.Coef)); err != nil {
		return 0, err
	}
	return floats.Dot(l.Coef, x) + l.Intercept, nil
}
