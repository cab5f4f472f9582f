package algo

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// StandardScaler (x - mean) / scale
type StandardScaler struct {
	artifactVersion
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) != FeatureCount || len(s.Scale) != FeatureCount {
		return fmt.Errorf("mean/scale must have %d entries, got %d/%d", FeatureCount, len(s.Mean), len(s.Scale))
	}
	for i, v := range s.Scale {
		if v == 0 {
			return fmt.Errorf("scale[%d] is zero", i)
		}
	}
	return nil
}

// Transform 标准化, 返回新切片
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if err := checkWidth(x, len(s.Mean)); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	floats.SubTo(out, x, s.Mean)
	floats.Div(out, s.Scale)
	return out, nil
}

// MinMaxScaler x * scale + min
type MinMaxScaler struct {
	artifactVersion
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func (s *MinMaxScaler) validate() error {
	if len(s.Min) != FeatureCount || len(s.Scale) != FeatureCount {
		return fmt.Errorf("min/scale must have %d entries, got %d/%d", FeatureCount, len(s.Min), len(s.Scale))
	}
	return nil
}

// Transform 归一化, 返回新切片
func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if err := checkWidth(x, len(s.Min)); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	floats.MulTo(out, x, s.Scale)
	floats.Add(out, s.Min)
	return out, nil
}
