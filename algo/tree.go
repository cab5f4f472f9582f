package algo

import (
	"errors"
	"fmt"
)

// 树集成的聚合方式
const (
	AggregateMean = "mean" // 随机森林: 各树取平均
	AggregateSum  = "sum"  // 梯度提升: 各树累加
)

// TreeNode 扁平数组表示的树节点, Left < 0 表示叶子
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree 一棵回归树, Nodes[0] 为根节点
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Left < 0 {
			continue
		}
		if n.Feature < 0 || n.Feature >= FeatureCount {
			return fmt.Errorf("node %d splits on feature %d", i, n.Feature)
		}
		// 子节点下标必须大于父节点, 保证遍历一定终止
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has children out of range (%d, %d)", i, n.Left, n.Right)
		}
	}
	return nil
}

// eval 从根走到叶子, x[feature] <= threshold 走左子树
func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// TreeEnsemble 决策树 / 随机森林 / 梯度提升树
// y = base_score + learning_rate * aggregate(trees)
type TreeEnsemble struct {
	Trees        []Tree  `json:"trees"`
	Aggregate    string  `json:"aggregate"`
	LearningRate float64 `json:"learning_rate"`
	BaseScore    float64 `json:"base_score"`
}

func (e *TreeEnsemble) validate() error {
	if e.Aggregate != AggregateMean && e.Aggregate != AggregateSum {
		return fmt.Errorf("unknown aggregate %q", e.Aggregate)
	}
	if e.LearningRate == 0 {
		e.LearningRate = 1
	}
	if len(e.Trees) == 0 {
		return errors.New("no trees")
	}
	for i, t := range e.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// Predict 汇总所有树的输出
func (e *TreeEnsemble) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, FeatureCount); err != nil {
		return 0, err
	}
	sum := 0.0
	for _, t := range e.Trees {
		sum += t.eval(x)
	}
	if e.Aggregate == AggregateMean {
		sum /= float64(len(e.Trees))
	}
	return e.BaseScore + e.LearningRate*sum, nil
}
