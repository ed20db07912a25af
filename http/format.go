package http

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundingPolicy 预测值的输出格式策略
type RoundingPolicy struct {
	Enabled  bool
	Decimals int
}

// Apply 按策略四舍五入（远离零方向），非有限值原样返回
func (p RoundingPolicy) Apply(value float64) float64 {
	if !p.Enabled || math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	rounded, _ := decimal.NewFromFloat(value).Round(int32(p.Decimals)).Float64()
	return rounded
}

// PredictionResponse 预测响应
type PredictionResponse struct {
	Prediction float64 `json:"prediction"`
}
