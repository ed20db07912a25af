package ml

import (
	"errors"
	"fmt"
)

const DefaultOutputLabel = "prediction_label"

// Pipeline is a fitted preprocessing chain followed by a regression
// estimator. It is immutable once built.
type Pipeline struct {
	Inputs      []string
	Steps       []Transformer
	Estimator   Estimator
	OutputLabel string
}

func (p *Pipeline) Features() []string {
	return append([]string(nil), p.Inputs...)
}

func (p *Pipeline) Label() string {
	if p.OutputLabel == "" {
		return DefaultOutputLabel
	}
	return p.OutputLabel
}

func (p *Pipeline) PredictFrame(frame Frame) (Frame, error) {
	if p.Estimator == nil {
		return Frame{}, errors.New("pipeline has no estimator")
	}
	for _, name := range p.Inputs {
		if !frame.Has(name) {
			return Frame{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	x := frame
	for i, step := range p.Steps {
		var err error
		x, err = step.Transform(x)
		if err != nil {
			return Frame{}, fmt.Errorf("step %d (%T): %w", i, step, err)
		}
	}

	names := p.Estimator.FeatureNames()
	vector := make([]float64, len(names))
	for i, name := range names {
		v, err := x.Float(name)
		if err != nil {
			return Frame{}, fmt.Errorf("estimator input: %w", err)
		}
		vector[i] = v
	}

	y, err := p.Estimator.Predict(vector)
	if err != nil {
		return Frame{}, fmt.Errorf("estimator: %w", err)
	}

	out := frame.Clone()
	out.Set(p.Label(), y)
	return out, nil
}
