package ml

import (
	"errors"
	"math"
)

var errScalerShape = errors.New("scaler columns/params length mismatch")

// StandardScaler centres and scales numeric columns in place.
type StandardScaler struct {
	Columns []string
	Mean    []float64
	Scale   []float64
}

func (s *StandardScaler) Transform(frame Frame) (Frame, error) {
	if len(s.Columns) != len(s.Mean) || len(s.Columns) != len(s.Scale) {
		return Frame{}, errScalerShape
	}
	out := frame.Clone()
	for i, col := range s.Columns {
		v, err := frame.Float(col)
		if err != nil {
			return Frame{}, err
		}
		out.Set(col, Standardize(v, s.Mean[i], s.Scale[i]))
	}
	return out, nil
}

// MinMaxScaler maps numeric columns onto [0,1] using training bounds.
type MinMaxScaler struct {
	Columns []string
	Min     []float64
	Max     []float64
}

func (s *MinMaxScaler) Transform(frame Frame) (Frame, error) {
	if len(s.Columns) != len(s.Min) || len(s.Columns) != len(s.Max) {
		return Frame{}, errScalerShape
	}
	out := frame.Clone()
	for i, col := range s.Columns {
		v, err := frame.Float(col)
		if err != nil {
			return Frame{}, err
		}
		out.Set(col, NormalizeFeature(v, s.Min[i], s.Max[i]))
	}
	return out, nil
}

func Standardize(value, mean, scale float64) float64 {
	if scale == 0 || math.IsNaN(scale) {
		return 0
	}
	return (value - mean) / scale
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}
