package algo

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SVR 核函数
const (
	KernelRBF     = "rbf"
	KernelLinear  = "linear"
	KernelPoly    = "poly"
	KernelSigmoid = "sigmoid"
)

// SVR 支持向量回归
// y = Σ dual_coef[i] * K(sv[i], x) + intercept
type SVR struct {
	Kernel         string      `json:"kernel"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0"`
	Degree         int         `json:"degree"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
}

func (s *SVR) validate() error {
	if s.Kernel == "" {
		s.Kernel = KernelRBF
	}
	if s.Degree == 0 {
		s.Degree = 3
	}
	switch s.Kernel {
	case KernelLinear:
	case KernelRBF, KernelPoly, KernelSigmoid:
		if s.Gamma <= 0 {
			return fmt.Errorf("kernel %s needs a positive gamma", s.Kernel)
		}
	default:
		return fmt.Errorf("unknown kernel %q", s.Kernel)
	}
	if len(s.SupportVectors) == 0 {
		return errors.New("no support vectors")
	}
	if len(s.SupportVectors) != len(s.DualCoef) {
		return fmt.Errorf("%d support vectors but %d dual coefficients", len(s.SupportVectors), len(s.DualCoef))
	}
	return checkRows(s.SupportVectors)
}

func (s *SVR) kernel(a, b []float64) float64 {
	switch s.Kernel {
	case KernelLinear:
		return floats.Dot(a, b)
	case KernelPoly:
		return math.Pow(s.Gamma*floats.Dot(a, b)+s.Coef0, float64(s.Degree))
	case KernelSigmoid:
		return math.Tanh(s.Gamma*floats.Dot(a, b) + s.Coef0)
	default:
		d := floats.Distance(a, b, 2)
		return math.Exp(-s.Gamma * d * d)
	}
}

// Predict 计算决策函数
func (s *SVR) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, FeatureCount); err != nil {
		return 0, err
	}
	y := s.Intercept
	for i, sv := range s.SupportVectors {
		y += s.DualCoef[i] * s.kernel(sv, x)
	}
	return y, nil
}
