package algo

import (
	"math"
	"testing"
)

func row(v float64) []float64 {
	r := make([]float64, FeatureCount)
	r[0] = v
	return r
}

func TestKNeighbors_Uniform(t *testing.T) {
	k := &KNeighbors{
		NNeighbors: 2,
		FitX:       [][]float64{row(0), row(1), row(10)},
		FitY:       []float64{1, 3, 100},
	}
	if err := k.validate(); err != nil {
		t.Fatal(err)
	}

	y, err := k.Predict(row(0.4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y != 2 {
		t.Errorf("expected mean of two nearest (2), got %v", y)
	}
}

func TestKNeighbors_Distance(t *testing.T) {
	k := &KNeighbors{
		NNeighbors: 2,
		Weights:    WeightsDistance,
		FitX:       [][]float64{row(0), row(3), row(10)},
		FitY:       []float64{0, 3, 100},
	}
	if err := k.validate(); err != nil {
		t.Fatal(err)
	}

	// 到 0 距离 1, 到 3 距离 2: (1*0 + 0.5*3) / 1.5 = 1
	y, _ := k.Predict(row(1))
	if math.Abs(y-1) > 1e-12 {
		t.Errorf("expected 1, got %v", y)
	}

	// 命中训练样本时直接返回样本值
	y, _ = k.Predict(row(3))
	if y != 3 {
		t.Errorf("expected exact match 3, got %v", y)
	}
}

func TestSVR_Kernels(t *testing.T) {
	sv := [][]float64{row(1)}

	linear := &SVR{Kernel: KernelLinear, SupportVectors: sv, DualCoef: []float64{2}, Intercept: 1}
	if err := linear.validate(); err != nil {
		t.Fatal(err)
	}
	if y, _ := linear.Predict(row(3)); y != 7 {
		t.Errorf("linear: expected 7, got %v", y)
	}

	rbf := &SVR{Gamma: 0.5, SupportVectors: sv, DualCoef: []float64{1}}
	if err := rbf.validate(); err != nil {
		t.Fatal(err)
	}
	if rbf.Kernel != KernelRBF {
		t.Errorf("expected rbf default, got %s", rbf.Kernel)
	}
	// ||x - sv||² = 4, exp(-0.5 * 4)
	if y, _ := rbf.Predict(row(3)); math.Abs(y-math.Exp(-2)) > 1e-12 {
		t.Errorf("rbf: expected %v, got %v", math.Exp(-2), y)
	}

	poly := &SVR{Kernel: KernelPoly, Gamma: 1, Coef0: 1, Degree: 2, SupportVectors: sv, DualCoef: []float64{1}}
	if err := poly.validate(); err != nil {
		t.Fatal(err)
	}
	if y, _ := poly.Predict(row(3)); y != 16 {
		t.Errorf("poly: expected 16, got %v", y)
	}
}

func TestTreeEnsemble_Mean(t *testing.T) {
	stump := func(left, right float64) Tree {
		return Tree{Nodes: []TreeNode{
			{Feature: 1, Threshold: 75, Left: 1, Right: 2},
			{Left: -1, Value: left},
			{Left: -1, Value: right},
		}}
	}
	e := &TreeEnsemble{Aggregate: AggregateMean, Trees: []Tree{stump(1, 2), stump(3, 4)}}
	if err := e.validate(); err != nil {
		t.Fatal(err)
	}

	x := make([]float64, FeatureCount)
	x[1] = 70
	if y, _ := e.Predict(x); y != 2 {
		t.Errorf("expected 2, got %v", y)
	}
	x[1] = 80
	if y, _ := e.Predict(x); y != 3 {
		t.Errorf("expected 3, got %v", y)
	}
}

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{Mean: ones(FeatureCount), Scale: ones(FeatureCount)}
	s.Scale[0] = 2
	if err := s.validate(); err != nil {
		t.Fatal(err)
	}

	x := row(5)
	out, err := s.Transform(x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 2 || out[1] != -1 {
		t.Errorf("expected [2, -1, ...], got %v", out[:2])
	}
	if x[0] != 5 {
		t.Errorf("input must not be modified")
	}

	if _, err := s.Transform([]float64{1}); err == nil {
		t.Errorf("expected width error")
	}
}

func TestParseScaler(t *testing.T) {
	data := `{"scaler_type": "MinMaxScaler", "min": [0,0,0,0,0,0,0,0,0,0,-1], "scale": [1,1,1,1,1,1,1,1,1,1,0.5]}`
	s, err := ParseScaler([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x := ones(FeatureCount)
	out, _ := s.Transform(x)
	if out[10] != -0.5 {
		t.Errorf("expected -0.5, got %v", out[10])
	}

	if _, err := ParseScaler([]byte(`{"scaler_type": "RobustScaler"}`)); err == nil {
		t.Errorf("expected unsupported scaler error")
	}
	if _, err := ParseScaler([]byte(`{"mean": [1], "scale": [1]}`)); err == nil {
		t.Errorf("expected width validation error")
	}
}
