package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoPredictionColumn  = errors.New("no prediction column in model output")
	ErrNonFinitePrediction = errors.New("prediction is not a finite number")
)

// DefaultCandidateColumns lists output column names in the order they are
// tried when none is configured.
var DefaultCandidateColumns = []string{"prediction_label", "prediction", "Label"}

type ModelProvider interface {
	Predict(ctx context.Context, applicant Applicant) (float64, error)
}

// ResolvePredictionColumn runs the model once on ReferenceApplicant and picks
// the output column holding the prediction. A non-empty preferred column
// must be present in the output.
func ResolvePredictionColumn(model Model, preferred string, candidates []string) (string, error) {
	out, err := model.PredictFrame(ReferenceApplicant.Frame())
	if err != nil {
		return "", fmt.Errorf("probe model output: %w", err)
	}
	outputs := OutputColumns(model, out)

	present := make(map[string]bool, len(outputs))
	for _, c := range outputs {
		present[c] = true
	}

	if preferred != "" {
		if !present[preferred] {
			return "", fmt.Errorf("%w: configured %q, model emits %v", ErrNoPredictionColumn, preferred, outputs)
		}
		return preferred, nil
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidateColumns
	}
	for _, c := range candidates {
		if present[c] {
			return c, nil
		}
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return "", fmt.Errorf("%w: model emits %v", ErrNoPredictionColumn, outputs)
}

// OutputColumns lists numeric columns of out that the model did not take as input.
func OutputColumns(model Model, out Frame) []string {
	inputs := make(map[string]bool)
	for _, f := range model.Features() {
		inputs[f] = true
	}
	var cols []string
	for _, c := range out.Columns() {
		if inputs[c] {
			continue
		}
		if _, err := out.Float(c); err == nil {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	return cols
}

// Predictor is the immutable inference object shared by all requests.
type Predictor struct {
	model  Model
	column string
}

func NewPredictor(model Model, column string) *Predictor {
	return &Predictor{model: model, column: column}
}

func (p *Predictor) Column() string {
	return p.column
}

func (p *Predictor) Predict(ctx context.Context, applicant Applicant) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out, err := p.model.PredictFrame(applicant.Frame())
	if err != nil {
		return 0, err
	}
	value, err := out.Float(p.column)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNonFinitePrediction, value)
	}
	return value, nil
}
