package predictor

import (
	"errors"
	"net/http"
)

// ErrorKind 预测失败的分类
type ErrorKind int

const (
	MissingInput ErrorKind = iota + 1
	InvalidFormat
	NonFiniteInput
	OutOfRange
	FeatureComputationFailed
	ScalerUnavailable
	ModelUnavailable
	InferenceFailed
	TooManyLocations
	EmptyBatch
)

var kindNames = map[ErrorKind]string{
	MissingInput:             "MissingInput",
	InvalidFormat:            "InvalidFormat",
	NonFiniteInput:           "NonFiniteInput",
	OutOfRange:               "OutOfRange",
	FeatureComputationFailed: "FeatureComputationFailed",
	ScalerUnavailable:        "ScalerUnavailable",
	ModelUnavailable:         "ModelUnavailable",
	InferenceFailed:          "InferenceFailed",
	TooManyLocations:         "TooManyLocations",
	EmptyBatch:               "EmptyBatch",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Status 对应的 HTTP 状态码: 客户端输入问题 400, 服务端状态问题 500
func (k ErrorKind) Status() int {
	switch k {
	case ScalerUnavailable, ModelUnavailable, InferenceFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error 带分类的预测错误
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf 取出错误分类, 非 *Error 一律视为 InferenceFailed
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return InferenceFailed
}
