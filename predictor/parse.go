package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseCoordinate 将 JSON 中的数值或数字字符串转换为 float64
// 不做范围和有限性检查, 溢出的字符串 (如 "1e400") 按 ±Inf 返回
func parseCoordinate(name string, raw any) (float64, *Error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return parseString(name, v.String())
	case string:
		return parseString(name, v)
	default:
		return 0, newError(InvalidFormat, fmt.Sprintf("%s must be a valid number", name))
	}
}

func parseString(name, s string) (float64, *Error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
		return 0, &Error{
			Kind: InvalidFormat,
			Msg:  fmt.Sprintf("%s must be a valid number", name),
			Err:  err,
		}
	}
	return f, nil
}
