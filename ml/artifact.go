package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const ArtifactFormat = "insurance-pipeline/v1"

var ErrInvalidArtifact = errors.New("invalid model artifact")

const artifactSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["format", "features", "estimator"],
  "properties": {
    "format": {"const": "insurance-pipeline/v1"},
    "features": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "params"],
        "properties": {
          "type": {"enum": ["one_hot", "standard_scaler", "min_max_scaler"]},
          "params": {"type": "object"}
        }
      }
    },
    "estimator": {
      "type": "object",
      "required": ["type", "params"],
      "properties": {
        "type": {"enum": ["linear", "tree_ensemble"]},
        "params": {"type": "object"}
      }
    },
    "output": {
      "type": "object",
      "properties": {"label": {"type": "string", "minLength": 1}}
    }
  }
}`

var artifactSchemaLoader = gojsonschema.NewStringLoader(artifactSchema)

type artifactDoc struct {
	Format    string        `json:"format"`
	Features  []string      `json:"features"`
	Steps     []artifactRef `json:"steps"`
	Estimator artifactRef   `json:"estimator"`
	Output    struct {
		Label string `json:"label"`
	} `json:"output"`
}

type artifactRef struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

type oneHotParams struct {
	Column        string   `json:"column"`
	Categories    []string `json:"categories"`
	DropFirst     bool     `json:"drop_first"`
	HandleUnknown string   `json:"handle_unknown"`
}

type scalerParams struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
	Min     []float64 `json:"min"`
	Max     []float64 `json:"max"`
}

type linearParams struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

type ensembleParams struct {
	Features     []string         `json:"features"`
	Init         float64          `json:"init"`
	LearningRate float64          `json:"learning_rate"`
	Trees        []RegressionTree `json:"trees"`
}

// ValidateArtifact checks payload against the pipeline artifact schema.
func ValidateArtifact(payload []byte) error {
	result, err := gojsonschema.Validate(artifactSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, strings.Join(msgs, "; "))
}

// DecodePipeline validates and decodes a JSON pipeline artifact.
func DecodePipeline(payload []byte) (*Pipeline, error) {
	if err := ValidateArtifact(payload); err != nil {
		return nil, err
	}
	var doc artifactDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	pipeline := &Pipeline{
		Inputs:      doc.Features,
		OutputLabel: doc.Output.Label,
	}
	for i, ref := range doc.Steps {
		step, err := decodeStep(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidArtifact, i, err)
		}
		pipeline.Steps = append(pipeline.Steps, step)
	}
	estimator, err := decodeEstimator(doc.Estimator)
	if err != nil {
		return nil, fmt.Errorf("%w: estimator: %v", ErrInvalidArtifact, err)
	}
	pipeline.Estimator = estimator
	return pipeline, nil
}

func decodeStep(ref artifactRef) (Transformer, error) {
	switch ref.Type {
	case "one_hot":
		var p oneHotParams
		if err := json.Unmarshal(ref.Params, &p); err != nil {
			return nil, err
		}
		if p.Column == "" || len(p.Categories) == 0 {
			return nil, errors.New("one_hot needs column and categories")
		}
		switch p.HandleUnknown {
		case "":
			p.HandleUnknown = HandleUnknownError
		case HandleUnknownError, HandleUnknownIgnore:
		default:
			return nil, fmt.Errorf("unsupported handle_unknown %q", p.HandleUnknown)
		}
		return &OneHotEncoder{
			Column:        p.Column,
			Categories:    p.Categories,
			DropFirst:     p.DropFirst,
			HandleUnknown: p.HandleUnknown,
		}, nil
	case "standard_scaler":
		var p scalerParams
		if err := json.Unmarshal(ref.Params, &p); err != nil {
			return nil, err
		}
		if len(p.Columns) != len(p.Mean) || len(p.Columns) != len(p.Scale) {
			return nil, errScalerShape
		}
		return &StandardScaler{Columns: p.Columns, Mean: p.Mean, Scale: p.Scale}, nil
	case "min_max_scaler":
		var p scalerParams
		if err := json.Unmarshal(ref.Params, &p); err != nil {
			return nil, err
		}
		if len(p.Columns) != len(p.Min) || len(p.Columns) != len(p.Max) {
			return nil, errScalerShape
		}
		return &MinMaxScaler{Columns: p.Columns, Min: p.Min, Max: p.Max}, nil
	default:
		return nil, fmt.Errorf("unsupported step type %q", ref.Type)
	}
}

func decodeEstimator(ref artifactRef) (Estimator, error) {
	switch ref.Type {
	case "linear":
		var p linearParams
		if err := json.Unmarshal(ref.Params, &p); err != nil {
			return nil, err
		}
		if len(p.Features) == 0 || len(p.Features) != len(p.Coefficients) {
			return nil, errFeatureLength
		}
		return &LinearRegressor{Features: p.Features, Coefficients: p.Coefficients, Intercept: p.Intercept}, nil
	case "tree_ensemble":
		var p ensembleParams
		if err := json.Unmarshal(ref.Params, &p); err != nil {
			return nil, err
		}
		if len(p.Features) == 0 || len(p.Trees) == 0 {
			return nil, errors.New("tree_ensemble needs features and trees")
		}
		return &TreeEnsemble{Features: p.Features, Init: p.Init, LearningRate: p.LearningRate, Trees: p.Trees}, nil
	default:
		return nil, fmt.Errorf("unsupported estimator type %q", ref.Type)
	}
}
