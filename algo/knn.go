package algo

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNN 邻居权重方式
const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

// KNeighbors K 近邻回归, 保存完整训练集
type KNeighbors struct {
	NNeighbors int         `json:"n_neighbors"`
	Weights    string      `json:"weights"`
	FitX       [][]float64 `json:"fit_x"`
	FitY       []float64   `json:"fit_y"`
}

func (k *KNeighbors) validate() error {
	if k.NNeighbors == 0 {
		k.NNeighbors = 5
	}
	if k.Weights == "" {
		k.Weights = WeightsUniform
	}
	if k.Weights != WeightsUniform && k.Weights != WeightsDistance {
		return fmt.Errorf("unknown weights %q", k.Weights)
	}
	if len(k.FitX) == 0 {
		return errors.New("empty training set")
	}
	if len(k.FitX) != len(k.FitY) {
		return fmt.Errorf("fit_x has %d rows but fit_y has %d", len(k.FitX), len(k.FitY))
	}
	if k.NNeighbors < 1 || k.NNeighbors > len(k.FitX) {
		return fmt.Errorf("n_neighbors %d out of range [1, %d]", k.NNeighbors, len(k.FitX))
	}
	return checkRows(k.FitX)
}

type neighbour struct {
	dist float64
	y    float64
}

// Predict 取欧氏距离最近的 k 个样本做 (加权) 平均
func (k *KNeighbors) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, FeatureCount); err != nil {
		return 0, err
	}

	all := make([]neighbour, len(k.FitX))
	for i, row := range k.FitX {
		all[i] = neighbour{dist: floats.Distance(row, x, 2), y: k.FitY[i]}
	}
	// 稳定排序: 距离相同时按训练集顺序
	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	nearest := all[:k.NNeighbors]

	if k.Weights == WeightsUniform {
		sum := 0.0
		for _, n := range nearest {
			sum += n.y
		}
		return sum / float64(len(nearest)), nil
	}

	// 距离加权: 命中训练样本时只平均距离为 0 的样本
	var exact []float64
	for _, n := range nearest {
		if n.dist == 0 {
			exact = append(exact, n.y)
		}
	}
	if len(exact) > 0 {
		return floats.Sum(exact) / float64(len(exact)), nil
	}

	num, den := 0.0, 0.0
	for _, n := range nearest {
		w := 1 / n.dist
		num += w * n.y
		den += w
	}
	return num / den, nil
}
