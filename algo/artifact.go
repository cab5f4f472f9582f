package algo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
)

// DefaultScaledModels 需要先做特征缩放的模型类型 (唯一的配置来源)
var DefaultScaledModels = []string{"KNeighborsRegressor", "Ridge", "SVR", "Lasso"}

// ErrWidthMismatch 输入维数与模型不一致
var ErrWidthMismatch = errors.New("feature width mismatch")

// Regressor 已训练好的回归模型
type Regressor interface {
	Predict(x []float64) (float64, error)
}

// Scaler 已拟合的特征缩放器
type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Model 加载完成的模型制品
// RequiresScaling 在加载时根据配置确定, 之后只读
type Model struct {
	TypeName        string
	Version         string // 制品内容摘要, 同类型模型重新训练后会变化
	RequiresScaling bool
	Regressor       Regressor
}

// Digest 制品内容摘要 (sha256 前 8 字节)
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// artifactVersion 缩放器的内容摘要
type artifactVersion struct {
	version string
}

// Version 制品内容摘要
func (a *artifactVersion) Version() string {
	return a.version
}

func (a *artifactVersion) setVersion(v string) {
	a.version = v
}

// Predict 调用底层模型, 并拒绝非有限的输出
func (m *Model) Predict(x []float64) (float64, error) {
	y, err := m.Regressor.Predict(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%s produced a non-finite prediction", m.TypeName)
	}
	return y, nil
}

// parsedRegressor 可从 JSON 解析并自检的模型
type parsedRegressor interface {
	Regressor
	validate() error
}

// regressorKinds model_type -> 模型实现
var regressorKinds = map[string]func() parsedRegressor{
	"LinearRegression":          func() parsedRegressor { return &Linear{} },
	"Ridge":                     func() parsedRegressor { return &Linear{} },
	"Lasso":                     func() parsedRegressor { return &Linear{} },
	"ElasticNet":                func() parsedRegressor { return &Linear{} },
	"KNeighborsRegressor":       func() parsedRegressor { return &KNeighbors{} },
	"SVR":                       func() parsedRegressor { return &SVR{} },
	"DecisionTreeRegressor":     func() parsedRegressor { return &TreeEnsemble{Aggregate: AggregateMean} },
	"RandomForestRegressor":     func() parsedRegressor { return &TreeEnsemble{Aggregate: AggregateMean} },
	"ExtraTreesRegressor":       func() parsedRegressor { return &TreeEnsemble{Aggregate: AggregateMean} },
	"GradientBoostingRegressor": func() parsedRegressor { return &TreeEnsemble{Aggregate: AggregateSum} },
	"XGBRegressor":              func() parsedRegressor { return &TreeEnsemble{Aggregate: AggregateSum} },
}

// SupportedModelTypes 返回支持的 model_type 列表
func SupportedModelTypes() []string {
	types := make([]string, 0, len(regressorKinds))
	for name := range regressorKinds {
		types = append(types, name)
	}
	slices.Sort(types)
	return types
}

// LoadModel 从 JSON 文件加载模型制品
func LoadModel(path string, scaledModels []string) (*Model, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取模型文件失败: %w", err)
	}
	return ParseModel(file, scaledModels)
}

// ParseModel 解析 JSON 格式的模型制品
func ParseModel(data []byte, scaledModels []string) (*Model, error) {
	var header struct {
		ModelType string `json:"model_type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("解析模型 JSON 失败: %w", err)
	}

	newKind, ok := regressorKinds[header.ModelType]
	if !ok {
		return nil, fmt.Errorf("unsupported model_type %q", header.ModelType)
	}

	reg := newKind()
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("解析 %s 参数失败: %w", header.ModelType, err)
	}
	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s artifact: %w", header.ModelType, err)
	}

	return &Model{
		TypeName:        header.ModelType,
		Version:         Digest(data),
		RequiresScaling: slices.Contains(scaledModels, header.ModelType),
		Regressor:       reg,
	}, nil
}

// LoadScaler 从 JSON 文件加载缩放器
func LoadScaler(path string) (Scaler, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 scaler 文件失败: %w", err)
	}
	return ParseScaler(file)
}

// ParseScaler 解析 JSON 格式的缩放器, scaler_type 缺省为 StandardScaler
func ParseScaler(data []byte) (Scaler, error) {
	var header struct {
		ScalerType string `json:"scaler_type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("解析 scaler JSON 失败: %w", err)
	}

	var s interface {
		Scaler
		validate() error
		setVersion(string)
	}
	switch header.ScalerType {
	case "", "StandardScaler":
		s = &StandardScaler{}
	case "MinMaxScaler":
		s = &MinMaxScaler{}
	default:
		return nil, fmt.Errorf("unsupported scaler_type %q", header.ScalerType)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("解析 scaler 参数失败: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scaler artifact: %w", err)
	}
	s.setVersion(Digest(data))
	return s, nil
}

func checkWidth(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrWidthMismatch, len(x), n)
	}
	return nil
}

func checkRows(rows [][]float64) error {
	for i, row := range rows {
		if len(row) != FeatureCount {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), FeatureCount)
		}
	}
	return nil
}
