package ml

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrModelNotFound = errors.New("model artifact not found")

func init() {
	gob.Register(&OneHotEncoder{})
	gob.Register(&StandardScaler{})
	gob.Register(&MinMaxScaler{})
	gob.Register(&LinearRegressor{})
	gob.Register(&TreeEnsemble{})
}

// Strategy deserializes a model artifact in one specific format.
type Strategy interface {
	Name() string
	Load(path string) (Model, error)
}

type PipelineStrategy struct{}

func (PipelineStrategy) Name() string { return "pipeline" }

func (PipelineStrategy) Load(path string) (Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodePipeline(payload)
}

// GobStrategy reads a Pipeline value written with WriteGob.
type GobStrategy struct{}

func (GobStrategy) Name() string { return "gob" }

func (GobStrategy) Load(path string) (Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var pipeline Pipeline
	if err := gob.NewDecoder(file).Decode(&pipeline); err != nil {
		return nil, err
	}
	if pipeline.Estimator == nil || len(pipeline.Inputs) == 0 {
		return nil, fmt.Errorf("%w: gob pipeline is incomplete", ErrInvalidArtifact)
	}
	return &pipeline, nil
}

func WriteGob(w io.Writer, pipeline *Pipeline) error {
	return gob.NewEncoder(w).Encode(pipeline)
}

// StrategiesByName maps configured names onto strategies, keeping order.
func StrategiesByName(names []string) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case "pipeline":
			strategies = append(strategies, PipelineStrategy{})
		case "gob":
			strategies = append(strategies, GobStrategy{})
		default:
			return nil, fmt.Errorf("unsupported load strategy %q", name)
		}
	}
	return strategies, nil
}

type Attempt struct {
	Strategy string
	Err      error
}

type LoadError struct {
	Path     string
	Attempts []Attempt
	errs     error
}

func (e *LoadError) add(strategy string, err error) {
	e.Attempts = append(e.Attempts, Attempt{Strategy: strategy, Err: err})
	e.errs = multierr.Append(e.errs, err)
}

func (e *LoadError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Strategy, a.Err)
	}
	return fmt.Sprintf("load model %s: all strategies failed (%s)", e.Path, strings.Join(parts, "; "))
}

func (e *LoadError) Unwrap() []error {
	return multierr.Errors(e.errs)
}

// Artifact is a successfully loaded model and where it came from.
type Artifact struct {
	Model    Model
	Strategy string
	Path     string
	Size     int64
}

type Loader struct {
	strategies []Strategy
	logger     *zap.Logger
}

func NewLoader(logger *zap.Logger, strategies ...Strategy) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strategies) == 0 {
		strategies = []Strategy{PipelineStrategy{}, GobStrategy{}}
	}
	return &Loader{strategies: strategies, logger: logger}
}

// Load tries each strategy in order and returns the first model that
// deserializes. It never retries a strategy.
func (l *Loader) Load(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrModelNotFound, path)
	}

	loadErr := &LoadError{Path: path}
	for _, strategy := range l.strategies {
		model, err := strategy.Load(path)
		if err != nil {
			l.logger.Warn("model load strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.String("path", path),
				zap.Error(err))
			loadErr.add(strategy.Name(), err)
			continue
		}
		l.logger.Info("model loaded",
			zap.String("strategy", strategy.Name()),
			zap.String("path", path),
			zap.String("size", humanize.Bytes(uint64(info.Size()))),
			zap.Strings("features", model.Features()))
		return &Artifact{Model: model, Strategy: strategy.Name(), Path: path, Size: info.Size()}, nil
	}
	return nil, loadErr
}
